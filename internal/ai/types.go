// Package ai wraps the chat-completion backends used to generate replies.
package ai

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider turns a conversation into a single assistant reply.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

var ErrEmptyReply = errors.New("ai: empty reply")

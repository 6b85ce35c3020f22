package chat

import "time"

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsArchived   bool      `json:"is_archived"`
	MessageCount int64     `json:"message_count"`
	LastMessage  *string   `json:"last_message"`
}

type SearchResult struct {
	ID                uint64    `json:"id"`
	ConversationID    uint64    `json:"conversation_id"`
	Role              string    `json:"role"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"created_at"`
	ConversationTitle string    `json:"conversation_title"`
}

// Reply is the outcome of one /predict turn.
type Reply struct {
	Intent         string `json:"intent"`
	Response       string `json:"response"`
	ConversationID uint64 `json:"conversation_id"`
}

package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/suPer8Hu/serene-backend/internal/ai"
	"github.com/suPer8Hu/serene-backend/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultTitle   = "New Conversation"
	PredictTitle   = "New Chat"
	ApologyReply   = "I'm having trouble connecting right now. Please try again."
	autoTitleRunes = 50
	maxTitleRunes  = 255
	minQueryRunes  = 2
)

var (
	ErrEmptyText     = errors.New("text is required")
	ErrEmptyTitle    = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title is too long")
	ErrQueryTooShort = errors.New("search query must be at least 2 characters")
)

type IntentClassifier interface {
	Classify(text string) string
	Respond(tag string) string
}

type SafetyObserver interface {
	Observe(ctx context.Context, userID string, conversationID uint64, intent, text string)
}

type Options struct {
	Classifier IntentClassifier
	// Provider generates replies; nil answers from the classifier's canned responses.
	Provider          ai.Provider
	Safety            SafetyObserver
	ContextWindowSize int
	Logger            *zap.Logger
}

type Service struct {
	repo       *Repo
	classifier IntentClassifier
	provider   ai.Provider
	safety     SafetyObserver
	window     int
	log        *zap.Logger
}

func NewService(repo *Repo, opts Options) *Service {
	if opts.ContextWindowSize <= 0 || opts.ContextWindowSize > 100 {
		opts.ContextWindowSize = 5
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		classifier: opts.Classifier,
		provider:   opts.Provider,
		safety:     opts.Safety,
		window:     opts.ContextWindowSize,
		log:        opts.Logger,
	}
}

func (s *Service) CreateConversation(ctx context.Context, userID, title string) (*ConversationSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return nil, ErrTitleTooLong
	}
	c, err := s.repo.CreateConversation(ctx, userID, title)
	if err != nil {
		return nil, err
	}
	return &ConversationSummary{
		ID:         c.ID,
		Title:      c.Title,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		IsArchived: c.IsArchived,
	}, nil
}

func (s *Service) ListConversations(ctx context.Context, userID string, includeArchived bool) ([]ConversationSummary, error) {
	return s.repo.ListConversations(ctx, userID, includeArchived)
}

// Messages lists an owned conversation's messages oldest first.
func (s *Service) Messages(ctx context.Context, userID string, convID uint64, limit int) ([]models.Message, error) {
	if _, err := s.repo.GetConversation(ctx, userID, convID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, convID, limit)
}

func (s *Service) Rename(ctx context.Context, userID string, convID uint64, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return ErrTitleTooLong
	}
	return s.repo.UpdateTitle(ctx, userID, convID, title)
}

func (s *Service) Archive(ctx context.Context, userID string, convID uint64, archive bool) error {
	return s.repo.SetArchived(ctx, userID, convID, archive)
}

func (s *Service) Delete(ctx context.Context, userID string, convID uint64) error {
	return s.repo.DeleteConversation(ctx, userID, convID)
}

func (s *Service) DeleteMessage(ctx context.Context, userID string, convID, msgID uint64) error {
	return s.repo.DeleteMessage(ctx, userID, convID, msgID)
}

func (s *Service) Search(ctx context.Context, userID, q string) ([]SearchResult, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minQueryRunes {
		return nil, ErrQueryTooShort
	}
	return s.repo.SearchMessages(ctx, userID, q)
}

// Reply runs one chat turn: persist the user message, classify it, generate
// and persist the assistant reply, then title the conversation on its first
// exchange. A conversation is auto-titled at most once. A convID of 0 starts
// a new conversation.
func (s *Service) Reply(ctx context.Context, userID string, convID uint64, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var conv *models.Conversation
	var err error
	if convID == 0 {
		conv, err = s.repo.CreateConversation(ctx, userID, PredictTitle)
	} else {
		conv, err = s.repo.GetConversation(ctx, userID, convID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.AppendMessage(ctx, &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        text,
	}); err != nil {
		return nil, err
	}

	intent := s.classifier.Classify(text)
	reply := s.generate(ctx, conv.ID, intent, text)

	if err := s.repo.AppendMessage(ctx, &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Content:        reply,
		Intent:         &intent,
	}); err != nil {
		return nil, err
	}

	n, err := s.repo.CountMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if n == 2 && !conv.AutoTitled {
		if _, err := s.repo.ApplyAutoTitle(ctx, userID, conv.ID, AutoTitle(text)); err != nil {
			s.log.Warn("auto title failed", zap.Uint64("conversation_id", conv.ID), zap.Error(err))
		}
	}

	if s.safety != nil {
		s.safety.Observe(ctx, userID, conv.ID, intent, text)
	}

	return &Reply{Intent: intent, Response: reply, ConversationID: conv.ID}, nil
}

// generate never fails: generator errors degrade to a fixed apology.
func (s *Service) generate(ctx context.Context, convID uint64, intent, text string) string {
	if s.provider == nil {
		return s.classifier.Respond(intent)
	}

	// the newest row is the message being answered
	recent, err := s.repo.RecentMessages(ctx, convID, s.window+1)
	if err != nil {
		s.log.Warn("load context failed", zap.Uint64("conversation_id", convID), zap.Error(err))
		return ApologyReply
	}
	if len(recent) > 0 {
		recent = recent[:len(recent)-1]
	}
	history := make([]ai.Message, 0, len(recent))
	for _, m := range recent {
		history = append(history, ai.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := s.provider.Chat(ctx, ai.BuildWellnessPrompt(history, text))
	if err != nil {
		s.log.Warn("reply generation failed", zap.Uint64("conversation_id", convID), zap.Error(err))
		return ApologyReply
	}
	return reply
}

// AutoTitle is the first 50 characters of text, with "..." when cut.
func AutoTitle(text string) string {
	text = strings.TrimSpace(text)
	r := []rune(text)
	if len(r) <= autoTitleRunes {
		return text
	}
	return string(r[:autoTitleRunes]) + "..."
}

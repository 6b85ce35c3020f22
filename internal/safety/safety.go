// Package safety raises alerts when a chat turn is classified as a crisis intent.
package safety

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/suPer8Hu/serene-backend/internal/common"
	"go.uber.org/zap"
)

const excerptRunes = 200

type Alert struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ConversationID uint64    `json:"conversation_id"`
	Intent         string    `json:"intent"`
	Excerpt        string    `json:"excerpt"`
	CreatedAt      time.Time `json:"created_at"`
}

type Publisher interface {
	PublishAlert(ctx context.Context, a Alert) error
}

type Monitor struct {
	intents map[string]struct{}
	pub     Publisher
	log     *zap.Logger
	now     func() time.Time
}

// NewMonitor watches for the given intent tags. A nil publisher only logs.
func NewMonitor(intents []string, pub Publisher, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	set := make(map[string]struct{}, len(intents))
	for _, in := range intents {
		if in = strings.ToLower(strings.TrimSpace(in)); in != "" {
			set[in] = struct{}{}
		}
	}
	return &Monitor{
		intents: set,
		pub:     pub,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *Monitor) Watches(intent string) bool {
	_, ok := m.intents[strings.ToLower(intent)]
	return ok
}

// Observe publishes an alert for watched intents. Failures are logged and
// never returned, so a broker outage cannot break a chat turn.
func (m *Monitor) Observe(ctx context.Context, userID string, conversationID uint64, intent, text string) {
	if !m.Watches(intent) {
		return
	}

	id, err := common.NewULID()
	if err != nil {
		m.log.Error("alert id", zap.Error(err))
		return
	}
	a := Alert{
		ID:             id,
		UserID:         userID,
		ConversationID: conversationID,
		Intent:         intent,
		Excerpt:        excerpt(text),
		CreatedAt:      m.now(),
	}

	fields := []zap.Field{
		zap.String("alert_id", a.ID),
		zap.String("user_id", userID),
		zap.Uint64("conversation_id", conversationID),
		zap.String("intent", intent),
	}
	if m.pub == nil {
		m.log.Warn("safety alert raised without a publisher", fields...)
		return
	}
	if err := m.pub.PublishAlert(ctx, a); err != nil {
		m.log.Error("safety alert publish failed", append(fields, zap.Error(err))...)
		return
	}
	m.log.Info("safety alert published", fields...)
}

// FormatEmail renders the notification sent to the on-call address.
func FormatEmail(a Alert) (subject, body string) {
	subject = fmt.Sprintf("[Serene] %s alert for user %s", a.Intent, a.UserID)
	body = fmt.Sprintf(
		"Alert:        %s\nUser:         %s\nConversation: %d\nIntent:       %s\nRaised at:    %s\n\nMessage excerpt:\n%s\n",
		a.ID, a.UserID, a.ConversationID, a.Intent, a.CreatedAt.Format(time.RFC3339), a.Excerpt,
	)
	return subject, body
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes]) + "..."
}

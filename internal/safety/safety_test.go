package safety

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type capturePublisher struct {
	alerts []Alert
	err    error
}

func (p *capturePublisher) PublishAlert(_ context.Context, a Alert) error {
	p.alerts = append(p.alerts, a)
	return p.err
}

func TestMonitor_PublishesWatchedIntents(t *testing.T) {
	pub := &capturePublisher{}
	m := NewMonitor([]string{"Suicide", " self-harm "}, pub, nil)
	fixed := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	m.Observe(context.Background(), "u1", 7, "greeting", "hi")
	assert.Empty(t, pub.alerts)

	m.Observe(context.Background(), "u1", 7, "self-harm", "  I want to hurt myself  ")
	require.Len(t, pub.alerts, 1)
	a := pub.alerts[0]
	assert.Len(t, a.ID, 26)
	assert.Equal(t, "u1", a.UserID)
	assert.Equal(t, uint64(7), a.ConversationID)
	assert.Equal(t, "self-harm", a.Intent)
	assert.Equal(t, "I want to hurt myself", a.Excerpt)
	assert.Equal(t, fixed, a.CreatedAt)
}

func TestMonitor_PublishErrorIsSwallowed(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	pub := &capturePublisher{err: errors.New("broker down")}
	m := NewMonitor([]string{"suicide"}, pub, zap.New(core))

	m.Observe(context.Background(), "u1", 1, "suicide", "text")
	assert.Len(t, pub.alerts, 1)
	assert.Equal(t, 1, logs.FilterMessage("safety alert publish failed").Len())
}

func TestMonitor_NilPublisher(t *testing.T) {
	m := NewMonitor([]string{"suicide"}, nil, nil)
	assert.NotPanics(t, func() {
		m.Observe(context.Background(), "u1", 1, "suicide", "text")
	})
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("é", excerptRunes+10)
	got := excerpt(long)
	assert.Equal(t, excerptRunes+3, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestFormatEmail(t *testing.T) {
	subject, body := FormatEmail(Alert{
		ID: "01ABC", UserID: "a@example.com", ConversationID: 3, Intent: "suicide",
		Excerpt: "help", CreatedAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "[Serene] suicide alert for user a@example.com", subject)
	assert.Contains(t, body, "Conversation: 3")
	assert.Contains(t, body, "2030-01-01T00:00:00Z")
	assert.Contains(t, body, "help")
}

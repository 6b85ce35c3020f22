package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/serene-backend/internal/ai"
	"github.com/suPer8Hu/serene-backend/internal/db/dbtest"
	"github.com/suPer8Hu/serene-backend/internal/models"
	"gorm.io/gorm"
)

type recordingProvider struct {
	last  []ai.Message
	reply string
	err   error
}

func (p *recordingProvider) Chat(_ context.Context, messages []ai.Message) (string, error) {
	p.last = append([]ai.Message(nil), messages...)
	return p.reply, p.err
}

type stubClassifier struct{ tag string }

func (c stubClassifier) Classify(string) string    { return c.tag }
func (c stubClassifier) Respond(tag string) string { return "canned:" + tag }

type observation struct {
	userID string
	convID uint64
	intent string
}

type recordingObserver struct{ seen []observation }

func (o *recordingObserver) Observe(_ context.Context, userID string, convID uint64, intent, _ string) {
	o.seen = append(o.seen, observation{userID, convID, intent})
}

// tickingClock advances one second per call so ordering by time is deterministic.
func tickingClock() func() time.Time {
	t := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	db   *gorm.DB
	repo *Repo
	svc  *Service
	prov *recordingProvider
	obs  *recordingObserver
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	dbtest.SeedUser(t, gdb, "alice")
	dbtest.SeedUser(t, gdb, "bob")

	repo := NewRepo(gdb)
	repo.now = tickingClock()

	f := &fixture{db: gdb, repo: repo, obs: &recordingObserver{}}
	if opts.Classifier == nil {
		opts.Classifier = stubClassifier{tag: "greeting"}
	}
	if opts.Provider == nil {
		f.prov = &recordingProvider{reply: "ok"}
		opts.Provider = f.prov
	}
	opts.Safety = f.obs
	f.svc = NewService(repo, opts)
	return f
}

func TestReply_NewConversationPersistsBothTurns(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	r, err := f.svc.Reply(ctx, "alice", 0, "Hello there")
	require.NoError(t, err)
	assert.Equal(t, "greeting", r.Intent)
	assert.Equal(t, "ok", r.Response)
	require.NotZero(t, r.ConversationID)

	msgs, err := f.svc.Messages(ctx, "alice", r.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello there", msgs[0].Content)
	assert.Nil(t, msgs[0].Intent)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "ok", msgs[1].Content)
	require.NotNil(t, msgs[1].Intent)
	assert.Equal(t, "greeting", *msgs[1].Intent)

	conv, err := f.repo.GetConversation(ctx, "alice", r.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Hello there", conv.Title)

	assert.Equal(t, []observation{{"alice", r.ConversationID, "greeting"}}, f.obs.seen)
}

func TestReply_AutoTitleOnlyOnFirstExchange(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	long := strings.Repeat("a", 60)
	r, err := f.svc.Reply(ctx, "alice", 0, long)
	require.NoError(t, err)

	conv, err := f.repo.GetConversation(ctx, "alice", r.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 50)+"...", conv.Title)

	_, err = f.svc.Reply(ctx, "alice", r.ConversationID, "second message")
	require.NoError(t, err)
	conv, err = f.repo.GetConversation(ctx, "alice", r.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 50)+"...", conv.Title)
}

func TestReply_ExistingConversationWithHistoryKeepsTitle(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	c, err := f.svc.CreateConversation(ctx, "alice", "Mine")
	require.NoError(t, err)
	require.NoError(t, f.repo.AppendMessage(ctx, &models.Message{ConversationID: c.ID, Role: models.RoleUser, Content: "earlier"}))

	_, err = f.svc.Reply(ctx, "alice", c.ID, "now")
	require.NoError(t, err)

	conv, err := f.repo.GetConversation(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", conv.Title)
}

func clearMessages(t *testing.T, f *fixture, userID string, convID uint64) {
	t.Helper()
	ctx := context.Background()
	msgs, err := f.svc.Messages(ctx, userID, convID, 0)
	require.NoError(t, err)
	for _, m := range msgs {
		require.NoError(t, f.svc.DeleteMessage(ctx, userID, convID, m.ID))
	}
}

func TestReply_AutoTitleNotRepeatedAfterMessagesDeleted(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	r, err := f.svc.Reply(ctx, "alice", 0, "first message")
	require.NoError(t, err)
	clearMessages(t, f, "alice", r.ConversationID)

	_, err = f.svc.Reply(ctx, "alice", r.ConversationID, "a fresh start")
	require.NoError(t, err)

	conv, err := f.repo.GetConversation(ctx, "alice", r.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "first message", conv.Title)
	assert.True(t, conv.AutoTitled)
}

func TestReply_RenamedTitleSurvivesLaterExchange(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	r, err := f.svc.Reply(ctx, "alice", 0, "first message")
	require.NoError(t, err)
	require.NoError(t, f.svc.Rename(ctx, "alice", r.ConversationID, "My chosen title"))
	clearMessages(t, f, "alice", r.ConversationID)

	_, err = f.svc.Reply(ctx, "alice", r.ConversationID, "later turn")
	require.NoError(t, err)

	conv, err := f.repo.GetConversation(ctx, "alice", r.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "My chosen title", conv.Title)
}

func TestApplyAutoTitle_OnlyOnce(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	c, err := f.repo.CreateConversation(ctx, "alice", PredictTitle)
	require.NoError(t, err)

	changed, err := f.repo.ApplyAutoTitle(ctx, "alice", c.ID, "one")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.repo.ApplyAutoTitle(ctx, "alice", c.ID, "two")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = f.repo.ApplyAutoTitle(ctx, "bob", c.ID, "three")
	require.NoError(t, err)
	assert.False(t, changed)

	conv, err := f.repo.GetConversation(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", conv.Title)
}

func TestReply_ForeignConversationIsNotFound(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	c, err := f.svc.CreateConversation(ctx, "alice", "")
	require.NoError(t, err)

	_, err = f.svc.Reply(ctx, "bob", c.ID, "hi")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	n, err := f.repo.CountMessages(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReply_RejectsBlankText(t *testing.T) {
	f := newFixture(t, Options{})
	_, err := f.svc.Reply(context.Background(), "alice", 0, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestReply_ProviderFailureDegradesToApology(t *testing.T) {
	prov := &recordingProvider{err: errors.New("connection refused")}
	f := newFixture(t, Options{Provider: prov})

	r, err := f.svc.Reply(context.Background(), "alice", 0, "hi")
	require.NoError(t, err)
	assert.Equal(t, ApologyReply, r.Response)

	msgs, err := f.repo.ListMessages(context.Background(), r.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, ApologyReply, msgs[1].Content)
}

func TestReply_NoProviderUsesCannedResponse(t *testing.T) {
	gdb := dbtest.Open(t)
	dbtest.SeedUser(t, gdb, "alice")
	svc := NewService(NewRepo(gdb), Options{Classifier: stubClassifier{tag: "sad"}})

	r, err := svc.Reply(context.Background(), "alice", 0, "i feel sad")
	require.NoError(t, err)
	assert.Equal(t, "sad", r.Intent)
	assert.Equal(t, "canned:sad", r.Response)
}

func TestReply_UsesContextWindow(t *testing.T) {
	f := newFixture(t, Options{ContextWindowSize: 3})
	ctx := context.Background()

	c, err := f.svc.CreateConversation(ctx, "alice", "")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		require.NoError(t, f.repo.AppendMessage(ctx, &models.Message{
			ConversationID: c.ID, Role: role, Content: "seed" + string(rune('0'+i)),
		}))
	}

	_, err = f.svc.Reply(ctx, "alice", c.ID, "new")
	require.NoError(t, err)

	require.Len(t, f.prov.last, 2)
	prompt := f.prov.last[1].Content
	assert.NotContains(t, prompt, "seed1")
	assert.Contains(t, prompt, "seed2")
	assert.Contains(t, prompt, "seed3")
	assert.Contains(t, prompt, "seed4")
	assert.Contains(t, prompt, "Current user message:\n\"new\"")
}

func TestAppendMessage_TouchesUpdatedAt(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	c, err := f.svc.CreateConversation(ctx, "alice", "")
	require.NoError(t, err)
	require.NoError(t, f.repo.AppendMessage(ctx, &models.Message{ConversationID: c.ID, Role: models.RoleUser, Content: "x"}))

	conv, err := f.repo.GetConversation(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.True(t, conv.UpdatedAt.After(c.UpdatedAt))
}

func TestListConversations(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	empty, err := f.svc.CreateConversation(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, empty.Title)

	busy, err := f.svc.Reply(ctx, "alice", 0, "hello")
	require.NoError(t, err)

	archived, err := f.svc.CreateConversation(ctx, "alice", "old")
	require.NoError(t, err)
	require.NoError(t, f.svc.Archive(ctx, "alice", archived.ID, true))

	_, err = f.svc.CreateConversation(ctx, "bob", "not yours")
	require.NoError(t, err)

	list, err := f.svc.ListConversations(ctx, "alice", false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, busy.ConversationID, list[0].ID)
	assert.Equal(t, int64(2), list[0].MessageCount)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "ok", *list[0].LastMessage)
	assert.Equal(t, empty.ID, list[1].ID)
	assert.Zero(t, list[1].MessageCount)
	assert.Nil(t, list[1].LastMessage)

	all, err := f.svc.ListConversations(ctx, "alice", true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, archived.ID, all[0].ID)
	assert.True(t, all[0].IsArchived)

	require.NoError(t, f.svc.Archive(ctx, "alice", archived.ID, false))
	list, err = f.svc.ListConversations(ctx, "alice", false)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestConversationOwnership(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	c, err := f.svc.CreateConversation(ctx, "alice", "private")
	require.NoError(t, err)

	_, err = f.svc.Messages(ctx, "bob", c.ID, 0)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.svc.Rename(ctx, "bob", c.ID, "stolen"), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.svc.Archive(ctx, "bob", c.ID, true), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "bob", c.ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "alice", 9999), gorm.ErrRecordNotFound)

	conv, err := f.repo.GetConversation(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", conv.Title)
	assert.False(t, conv.IsArchived)
}

func TestRename(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	c, err := f.svc.CreateConversation(ctx, "alice", "")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Rename(ctx, "alice", c.ID, "  "), ErrEmptyTitle)
	assert.ErrorIs(t, f.svc.Rename(ctx, "alice", c.ID, strings.Repeat("x", 256)), ErrTitleTooLong)
	require.NoError(t, f.svc.Rename(ctx, "alice", c.ID, " Evening thoughts "))

	conv, err := f.repo.GetConversation(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evening thoughts", conv.Title)
}

func TestDeleteConversation_RemovesMessages(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	r, err := f.svc.Reply(ctx, "alice", 0, "hi")
	require.NoError(t, err)
	keep, err := f.svc.Reply(ctx, "alice", 0, "other")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "alice", r.ConversationID))

	_, err = f.repo.GetConversation(ctx, "alice", r.ConversationID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var n int64
	require.NoError(t, f.db.Model(&models.Message{}).Where("conversation_id = ?", r.ConversationID).Count(&n).Error)
	assert.Zero(t, n)

	n, err = f.repo.CountMessages(ctx, keep.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteMessage(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	r, err := f.svc.Reply(ctx, "alice", 0, "hi")
	require.NoError(t, err)
	other, err := f.svc.Reply(ctx, "alice", 0, "elsewhere")
	require.NoError(t, err)

	msgs, err := f.repo.ListMessages(ctx, r.ConversationID, 0)
	require.NoError(t, err)
	target := msgs[0].ID

	assert.ErrorIs(t, f.svc.DeleteMessage(ctx, "bob", r.ConversationID, target), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.svc.DeleteMessage(ctx, "alice", other.ConversationID, target), gorm.ErrRecordNotFound)
	require.NoError(t, f.svc.DeleteMessage(ctx, "alice", r.ConversationID, target))
	assert.ErrorIs(t, f.svc.DeleteMessage(ctx, "alice", r.ConversationID, target), gorm.ErrRecordNotFound)

	msgs, err = f.repo.ListMessages(ctx, r.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleAssistant, msgs[0].Role)
}

func TestMessages_Limit(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	r, err := f.svc.Reply(ctx, "alice", 0, "first")
	require.NoError(t, err)
	_, err = f.svc.Reply(ctx, "alice", r.ConversationID, "second")
	require.NoError(t, err)

	msgs, err := f.svc.Messages(ctx, "alice", r.ConversationID, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[2].Content)
}

func TestSearch(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.Reply(ctx, "alice", 0, "I slept BADLY again")
	require.NoError(t, err)
	r2, err := f.svc.Reply(ctx, "alice", 0, "badly worded 100% sure")
	require.NoError(t, err)
	_, err = f.svc.Reply(ctx, "bob", 0, "badly for bob")
	require.NoError(t, err)

	_, err = f.svc.Search(ctx, "alice", " b ")
	assert.ErrorIs(t, err, ErrQueryTooShort)

	res, err := f.svc.Search(ctx, "alice", "badly")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "badly worded 100% sure", res[0].Content)
	assert.Equal(t, r2.ConversationID, res[0].ConversationID)
	assert.Equal(t, "badly worded 100% sure", res[0].ConversationTitle)
	assert.Equal(t, "I slept BADLY again", res[1].Content)

	res, err = f.svc.Search(ctx, "alice", "0%")
	require.NoError(t, err)
	require.Len(t, res, 1)

	res, err = f.svc.Search(ctx, "alice", "b_dly")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearch_FoldsNonASCII(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	r, err := f.svc.Reply(ctx, "alice", 0, "CET ÉTÉ était difficile")
	require.NoError(t, err)

	res, err := f.svc.Search(ctx, "alice", "été")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, r.ConversationID, res[0].ConversationID)

	res, err = f.svc.Search(ctx, "alice", "ÉTAIT")
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestSearch_CapsResults(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	c, err := f.svc.CreateConversation(ctx, "alice", "")
	require.NoError(t, err)
	for i := 0; i < searchLimit+5; i++ {
		require.NoError(t, f.repo.AppendMessage(ctx, &models.Message{ConversationID: c.ID, Role: models.RoleUser, Content: "needle"}))
	}

	res, err := f.svc.Search(ctx, "alice", "needle")
	require.NoError(t, err)
	assert.Len(t, res, searchLimit)
	assert.True(t, !res[0].CreatedAt.Before(res[len(res)-1].CreatedAt))
}

func TestAutoTitle(t *testing.T) {
	assert.Equal(t, "short", AutoTitle("short"))
	assert.Equal(t, strings.Repeat("x", 50), AutoTitle(strings.Repeat("x", 50)))
	assert.Equal(t, strings.Repeat("ü", 50)+"...", AutoTitle(strings.Repeat("ü", 51)))
}

package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/serene-backend/internal/db/dbtest"
	"gorm.io/gorm"
)

func intp(v int) *int { return &v }

func newService(t *testing.T) *Service {
	t.Helper()
	gdb := dbtest.Open(t)
	dbtest.SeedUser(t, gdb, "alice")
	dbtest.SeedUser(t, gdb, "bob")

	clock := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := NewRepo(gdb)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return NewService(repo)
}

func TestCreateAndList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "alice", Input{Title: " Monday ", Content: "long day", MoodLevel: intp(2)})
	require.NoError(t, err)
	assert.Equal(t, "Monday", first.Title)
	_, err = svc.Create(ctx, "alice", Input{Content: "untitled"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", Input{Content: "bob's"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "untitled", list[0].Content)
	assert.Nil(t, list[0].MoodLevel)
	assert.Equal(t, "long day", list[1].Content)

	list, err = svc.List(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", Input{Content: "  "})
	assert.ErrorIs(t, err, ErrEmptyContent)
	_, err = svc.Create(ctx, "alice", Input{Content: "x", MoodLevel: intp(6)})
	assert.ErrorIs(t, err, ErrInvalidMood)
}

func TestUpdate_ReplacesFields(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, "alice", Input{Title: "t", Content: "c", MoodLevel: intp(3)})
	require.NoError(t, err)

	got, err := svc.Update(ctx, "alice", e.ID, Input{Title: "t2", Content: "c2"})
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Title)
	assert.Equal(t, "c2", got.Content)
	assert.Nil(t, got.MoodLevel)
	assert.True(t, got.UpdatedAt.After(e.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(e.CreatedAt))
}

func TestOwnership(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, "alice", Input{Content: "secret"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "bob", e.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = svc.Update(ctx, "bob", e.ID, Input{Content: "mine now"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "bob", e.ID), gorm.ErrRecordNotFound)

	got, err := svc.Get(ctx, "alice", e.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Content)

	require.NoError(t, svc.Delete(ctx, "alice", e.ID))
	_, err = svc.Get(ctx, "alice", e.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

package journal

import (
	"context"
	"time"

	"github.com/suPer8Hu/serene-backend/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *Repo) Create(ctx context.Context, e *models.JournalEntry) error {
	now := r.now()
	e.CreatedAt = now
	e.UpdatedAt = now
	return r.db.WithContext(ctx).Create(e).Error
}

// List returns entries newest first. limit <= 0 means all.
func (r *Repo) List(ctx context.Context, userID string, limit int) ([]models.JournalEntry, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	out := make([]models.JournalEntry, 0)
	err := q.Find(&out).Error
	return out, err
}

func (r *Repo) Get(ctx context.Context, userID string, id uint64) (*models.JournalEntry, error) {
	var e models.JournalEntry
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Replace overwrites title, content and mood level of an owned entry.
func (r *Repo) Replace(ctx context.Context, userID string, id uint64, title, content string, moodLevel *int) error {
	res := r.db.WithContext(ctx).Model(&models.JournalEntry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"title":      title,
			"content":    content,
			"mood_level": moodLevel,
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID string, id uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.JournalEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

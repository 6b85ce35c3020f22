package mood

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

func (r *Repo) Create(ctx context.Context, e *models.MoodEntry) error {
	e.CreatedAt = r.now()
	return r.db.WithContext(ctx).Create(e).Error
}

// Since returns entries at or after from, newest first.
func (r *Repo) Since(ctx context.Context, userID string, from time.Time) ([]models.MoodEntry, error) {
	out := make([]models.MoodEntry, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, from).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *Repo) Delete(ctx context.Context, userID string, id uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.MoodEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

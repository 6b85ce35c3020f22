package goals

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

func (r *Repo) Create(ctx context.Context, g *models.Goal) error {
	return r.db.WithContext(ctx).Create(g).Error
}

// List returns the user's goals newest first; an empty status means all.
func (r *Repo) List(ctx context.Context, userID string, status models.GoalStatus) ([]models.Goal, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := make([]models.Goal, 0)
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// Mutate loads an owned goal, applies fn and saves it inside one transaction.
func (r *Repo) Mutate(ctx context.Context, userID string, id uint64, fn func(g *models.Goal, now time.Time) error) (*models.Goal, error) {
	var g models.Goal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&g).Error; err != nil {
			return err
		}
		if err := fn(&g, r.now()); err != nil {
			return err
		}
		return tx.Save(&g).Error
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repo) Delete(ctx context.Context, userID string, id uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Goal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

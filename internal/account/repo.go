package account

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

// CreateUser fails with gorm.ErrDuplicatedKey when the id, email or phone is taken.
func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	now := r.now()
	u.CreatedAt = now
	u.LastActive = now
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) TouchLastActive(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_active", r.now()).Error
}

// DeleteAccount removes every row owned by the user in one transaction,
// children first so it does not depend on the store enforcing cascades.
func (r *Repo) DeleteAccount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Conversation{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("conversation_id IN (?)", owned).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		for _, m := range []any{&models.Conversation{}, &models.MoodEntry{}, &models.JournalEntry{}, &models.Goal{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
}

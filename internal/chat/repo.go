package chat

import (
	"context"
	"strings"
	"time"

	"github.com/suPer8Hu/serene-backend/internal/models"
	"gorm.io/gorm"
)

const searchLimit = 50

type Repo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *Repo) CreateConversation(ctx context.Context, userID, title string) (*models.Conversation, error) {
	now := r.now()
	c := &models.Conversation{UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetConversation returns gorm.ErrRecordNotFound for both missing and foreign conversations.
func (r *Repo) GetConversation(ctx context.Context, userID string, id uint64) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversations returns the user's conversations, most recently active first.
func (r *Repo) ListConversations(ctx context.Context, userID string, includeArchived bool) ([]ConversationSummary, error) {
	db := r.db.WithContext(ctx)

	q := db.Where("user_id = ?", userID)
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	var convs []models.Conversation
	if err := q.Order("updated_at DESC").Order("id DESC").Find(&convs).Error; err != nil {
		return nil, err
	}
	out := make([]ConversationSummary, 0, len(convs))
	if len(convs) == 0 {
		return out, nil
	}

	ids := make([]uint64, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}

	var counts []struct {
		ConversationID uint64
		N              int64
	}
	if err := db.Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS n").
		Where("conversation_id IN ?", ids).
		Group("conversation_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countBy := make(map[uint64]int64, len(counts))
	for _, c := range counts {
		countBy[c.ConversationID] = c.N
	}

	// ids grow with insertion order, so the max id is the latest message
	latest := db.Model(&models.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", ids).
		Group("conversation_id")
	var lasts []models.Message
	if err := db.Where("id IN (?)", latest).Find(&lasts).Error; err != nil {
		return nil, err
	}
	lastBy := make(map[uint64]string, len(lasts))
	for _, m := range lasts {
		lastBy[m.ConversationID] = m.Content
	}

	for _, c := range convs {
		s := ConversationSummary{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
			IsArchived:   c.IsArchived,
			MessageCount: countBy[c.ID],
		}
		if last, ok := lastBy[c.ID]; ok {
			s.LastMessage = &last
		}
		out = append(out, s)
	}
	return out, nil
}

// updateConversation applies fields to an owned conversation and refreshes updated_at.
func (r *Repo) updateConversation(ctx context.Context, userID string, id uint64, fields map[string]any) error {
	fields["updated_at"] = r.now()
	res := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateTitle stores an owner-chosen title, which also retires the automatic one.
func (r *Repo) UpdateTitle(ctx context.Context, userID string, id uint64, title string) error {
	return r.updateConversation(ctx, userID, id, map[string]any{"title": title, "auto_titled": true})
}

// ApplyAutoTitle sets the derived title unless the conversation was titled
// before. It reports whether the title changed.
func (r *Repo) ApplyAutoTitle(ctx context.Context, userID string, id uint64, title string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ? AND user_id = ? AND auto_titled = ?", id, userID, false).
		Updates(map[string]any{"title": title, "auto_titled": true, "updated_at": r.now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repo) SetArchived(ctx context.Context, userID string, id uint64, archived bool) error {
	return r.updateConversation(ctx, userID, id, map[string]any{"is_archived": archived})
}

// DeleteConversation removes the conversation and its messages atomically.
func (r *Repo) DeleteConversation(ctx context.Context, userID string, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Conversation
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, id).Error
	})
}

// AppendMessage stores m and bumps the parent's updated_at in one transaction.
// The caller must already have checked ownership.
func (r *Repo) AppendMessage(ctx context.Context, m *models.Message) error {
	now := r.now()
	m.CreatedAt = now
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Conversation{}).
			Where("id = ?", m.ConversationID).
			Update("updated_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListMessages returns messages oldest first. limit <= 0 means all.
func (r *Repo) ListMessages(ctx context.Context, convID uint64, limit int) ([]models.Message, error) {
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var msgs []models.Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// RecentMessages returns the newest limit messages, oldest first.
func (r *Repo) RecentMessages(ctx context.Context, convID uint64, limit int) ([]models.Message, error) {
	var desc []models.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("id DESC").
		Limit(limit).
		Find(&desc).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(desc)-1; i < j; i, j = i+1, j-1 {
		desc[i], desc[j] = desc[j], desc[i]
	}
	return desc, nil
}

func (r *Repo) CountMessages(ctx context.Context, convID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ?", convID).
		Count(&n).Error
	return n, err
}

// DeleteMessage deletes a message whose parent conversation belongs to userID.
func (r *Repo) DeleteMessage(ctx context.Context, userID string, convID, msgID uint64) error {
	owned := r.db.Model(&models.Conversation{}).Select("id").Where("id = ? AND user_id = ?", convID, userID)
	res := r.db.WithContext(ctx).
		Where("id = ? AND conversation_id = ? AND conversation_id IN (?)", msgID, convID, owned).
		Delete(&models.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchMessages does a case-insensitive substring match over the user's
// messages, newest first. LIKE wildcards in q match literally.
func (r *Repo) SearchMessages(ctx context.Context, userID, q string) ([]SearchResult, error) {
	needle := strings.ToLower(q)
	base := r.db.WithContext(ctx).
		Table("messages AS m").
		Select("m.id, m.conversation_id, m.role, m.content, m.created_at, c.title AS conversation_title").
		Joins("JOIN conversations AS c ON c.id = m.conversation_id").
		Where("c.user_id = ?", userID).
		Order("m.created_at DESC").
		Order("m.id DESC")

	// sqlite's LOWER only folds ASCII, so fold in Go to match the other dialects
	if r.db.Dialector.Name() == "sqlite" {
		return foldSearch(base, needle)
	}

	out := make([]SearchResult, 0)
	err := base.
		Where("LOWER(m.content) LIKE ? ESCAPE '!'", "%"+escapeLike(needle)+"%").
		Limit(searchLimit).
		Scan(&out).Error
	return out, err
}

func foldSearch(q *gorm.DB, needle string) ([]SearchResult, error) {
	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SearchResult, 0)
	for rows.Next() {
		var sr SearchResult
		if err := q.ScanRows(rows, &sr); err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(sr.Content), needle) {
			out = append(out, sr)
			if len(out) == searchLimit {
				break
			}
		}
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

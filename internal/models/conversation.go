package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"type:varchar(255);index;not null" json:"-"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`
	IsArchived bool      `gorm:"not null;default:false" json:"is_archived"`

	// AutoTitled is set once the title was derived from the first exchange or chosen by the owner.
	AutoTitled bool `gorm:"not null;default:false" json:"-"`

	Messages []Message `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (Conversation) TableName() string { return "conversations" }

// Message rows are immutable once written.
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"index;not null" json:"-"`
	Role           string    `gorm:"type:varchar(16);not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Intent         *string   `gorm:"type:varchar(64)" json:"intent"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }

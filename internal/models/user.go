package models

import "time"

// User is keyed by the identifier the person signed up with (email or phone).
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        *string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Phone        *string   `gorm:"type:varchar(64);uniqueIndex" json:"phone"`
	PasswordHash *string   `gorm:"type:varchar(255)" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`

	// Associations
	Conversations  []Conversation `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	MoodEntries    []MoodEntry    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	JournalEntries []JournalEntry `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Goals          []Goal         `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }

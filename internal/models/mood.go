package models

import "time"

type MoodEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(255);index;not null" json:"-"`
	MoodLevel int       `gorm:"not null" json:"mood_level"`
	MoodEmoji string    `gorm:"type:varchar(16);not null" json:"mood_emoji"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (MoodEntry) TableName() string { return "mood_entries" }

package models

import (
	"time"

	"gorm.io/datatypes"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

type Goal struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string          `gorm:"type:varchar(255);index;not null" json:"-"`
	Title        string          `gorm:"type:varchar(255);not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"type:varchar(64);not null;default:''" json:"category"`
	TargetValue  float64         `gorm:"not null" json:"target_value"`
	CurrentValue float64         `gorm:"not null;default:0" json:"current_value"`
	Unit         string          `gorm:"type:varchar(64);not null;default:''" json:"unit"`
	StartDate    datatypes.Date  `gorm:"not null" json:"start_date"`
	TargetDate   *datatypes.Date `json:"target_date"`
	Status       GoalStatus      `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at"`

	// Derived, never stored.
	ProgressPercentage float64 `gorm:"-" json:"progress_percentage"`
}

func (Goal) TableName() string { return "goals" }

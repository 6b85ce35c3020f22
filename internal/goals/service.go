// Package goals tracks numeric personal goals and their completion.
package goals

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/suPer8Hu/serene-backend/internal/models"
	"gorm.io/datatypes"
)

const (
	DefaultCategory = "other"
	maxTitleRunes   = 255
)

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrInvalidTarget   = errors.New("target value must be greater than 0")
	ErrInvalidProgress = errors.New("current value must not be negative")
	ErrInvalidStatus   = errors.New("status must be active, completed or all")
	ErrInvalidDates    = errors.New("target date is before start date")
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Title       string
	Description string
	Category    string
	TargetValue float64
	Unit        string
	StartDate   *time.Time
	TargetDate  *time.Time
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Goal, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.TargetValue <= 0 || math.IsInf(in.TargetValue, 0) || math.IsNaN(in.TargetValue) {
		return nil, ErrInvalidTarget
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	now := s.repo.now()
	start := day(now)
	if in.StartDate != nil {
		start = day(*in.StartDate)
	}
	g := &models.Goal{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		TargetValue: in.TargetValue,
		Unit:        strings.TrimSpace(in.Unit),
		StartDate:   datatypes.Date(start),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.TargetDate != nil {
		td := day(*in.TargetDate)
		if td.Before(start) {
			return nil, ErrInvalidDates
		}
		d := datatypes.Date(td)
		g.TargetDate = &d
	}
	settle(g, now)

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ParseStatus accepts "", "all", "active" and "completed".
func ParseStatus(raw string) (models.GoalStatus, error) {
	switch st := models.GoalStatus(strings.ToLower(strings.TrimSpace(raw))); st {
	case "", "all":
		return "", nil
	case models.GoalActive, models.GoalCompleted:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s *Service) List(ctx context.Context, userID string, status models.GoalStatus) ([]models.Goal, error) {
	goals, err := s.repo.List(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		goals[i].ProgressPercentage = Progress(goals[i].CurrentValue, goals[i].TargetValue)
	}
	return goals, nil
}

// UpdateInput carries optional field changes; nil leaves a field as is.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	TargetValue *float64
	Unit        *string
	TargetDate  *time.Time
}

func (s *Service) Update(ctx context.Context, userID string, id uint64, in UpdateInput) (*models.Goal, error) {
	return s.repo.Mutate(ctx, userID, id, func(g *models.Goal, now time.Time) error {
		if in.Title != nil {
			title, err := cleanTitle(*in.Title)
			if err != nil {
				return err
			}
			g.Title = title
		}
		if in.Description != nil {
			g.Description = strings.TrimSpace(*in.Description)
		}
		if in.Category != nil {
			if c := strings.TrimSpace(*in.Category); c != "" {
				g.Category = c
			}
		}
		if in.TargetValue != nil {
			if *in.TargetValue <= 0 || math.IsInf(*in.TargetValue, 0) || math.IsNaN(*in.TargetValue) {
				return ErrInvalidTarget
			}
			g.TargetValue = *in.TargetValue
		}
		if in.Unit != nil {
			g.Unit = strings.TrimSpace(*in.Unit)
		}
		if in.TargetDate != nil {
			td := day(*in.TargetDate)
			if td.Before(time.Time(g.StartDate)) {
				return ErrInvalidDates
			}
			d := datatypes.Date(td)
			g.TargetDate = &d
		}
		g.UpdatedAt = now
		settle(g, now)
		return nil
	})
}

// UpdateProgress sets the current value and re-derives the status.
func (s *Service) UpdateProgress(ctx context.Context, userID string, id uint64, current float64) (*models.Goal, error) {
	if current < 0 || math.IsInf(current, 0) || math.IsNaN(current) {
		return nil, ErrInvalidProgress
	}
	return s.repo.Mutate(ctx, userID, id, func(g *models.Goal, now time.Time) error {
		g.CurrentValue = current
		g.UpdatedAt = now
		settle(g, now)
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, userID string, id uint64) error {
	return s.repo.Delete(ctx, userID, id)
}

type Statistics struct {
	TotalGoals     int     `json:"total_goals"`
	CompletedGoals int     `json:"completed_goals"`
	ActiveGoals    int     `json:"active_goals"`
	AvgProgress    float64 `json:"avg_progress"`
}

func (s *Service) Statistics(ctx context.Context, userID string) (*Statistics, error) {
	goals, err := s.repo.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	st := &Statistics{TotalGoals: len(goals)}
	if len(goals) == 0 {
		return st, nil
	}
	var sum float64
	for _, g := range goals {
		if g.Status == models.GoalCompleted {
			st.CompletedGoals++
		} else {
			st.ActiveGoals++
		}
		sum += Progress(g.CurrentValue, g.TargetValue)
	}
	st.AvgProgress = math.Round(sum/float64(len(goals))*100) / 100
	return st, nil
}

func cleanTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTitle
	}
	if utf8.RuneCountInString(s) > maxTitleRunes {
		return "", ErrTitleTooLong
	}
	return s, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

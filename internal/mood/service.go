// Package mood records daily mood check-ins and summarizes them.
package mood

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/suPer8Hu/serene-backend/internal/models"
)

const (
	MinLevel    = 1
	MaxLevel    = 5
	DefaultDays = 30
	MaxDays     = 365
)

var ErrInvalidLevel = errors.New("mood level must be between 1 and 5")

var levelEmoji = [...]string{"😢", "😕", "😐", "🙂", "😊"}

// EmojiFor returns the default label for a valid level.
func EmojiFor(level int) string {
	if level < MinLevel || level > MaxLevel {
		return ""
	}
	return levelEmoji[level-1]
}

// ClampDays maps a missing window to DefaultDays and caps it at MaxDays.
func ClampDays(days int) int {
	switch {
	case days <= 0:
		return DefaultDays
	case days > MaxDays:
		return MaxDays
	default:
		return days
	}
}

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Level int
	Emoji string
	Notes *string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.MoodEntry, error) {
	if in.Level < MinLevel || in.Level > MaxLevel {
		return nil, ErrInvalidLevel
	}
	emoji := strings.TrimSpace(in.Emoji)
	if emoji == "" {
		emoji = EmojiFor(in.Level)
	}
	var notes *string
	if in.Notes != nil {
		if n := strings.TrimSpace(*in.Notes); n != "" {
			notes = &n
		}
	}

	e := &models.MoodEntry{UserID: userID, MoodLevel: in.Level, MoodEmoji: emoji, Notes: notes}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// History returns the last days of entries, newest first.
func (s *Service) History(ctx context.Context, userID string, days int) ([]models.MoodEntry, error) {
	days = ClampDays(days)
	return s.repo.Since(ctx, userID, s.repo.now().AddDate(0, 0, -days))
}

type Analytics struct {
	AverageMood      float64           `json:"average_mood"`
	TotalEntries     int               `json:"total_entries"`
	PeriodDays       int               `json:"period_days"`
	MoodDistribution map[string]int    `json:"mood_distribution"`
	LatestMood       *models.MoodEntry `json:"latest_mood"`
}

func (s *Service) Analytics(ctx context.Context, userID string, days int) (*Analytics, error) {
	days = ClampDays(days)
	entries, err := s.repo.Since(ctx, userID, s.repo.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		TotalEntries:     len(entries),
		PeriodDays:       days,
		MoodDistribution: make(map[string]int, MaxLevel),
	}
	for l := MinLevel; l <= MaxLevel; l++ {
		a.MoodDistribution[strconv.Itoa(l)] = 0
	}
	if len(entries) == 0 {
		return a, nil
	}

	sum := 0
	for _, e := range entries {
		sum += e.MoodLevel
		a.MoodDistribution[strconv.Itoa(e.MoodLevel)]++
	}
	a.AverageMood = math.Round(float64(sum)/float64(len(entries))*100) / 100
	a.LatestMood = &entries[0]
	return a, nil
}

func (s *Service) Delete(ctx context.Context, userID string, id uint64) error {
	return s.repo.Delete(ctx, userID, id)
}

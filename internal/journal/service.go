package journal

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/suPer8Hu/serene-backend/internal/models"
)

const (
	maxTitleRunes = 255
	maxListLimit  = 500
)

var (
	ErrEmptyContent = errors.New("content is required")
	ErrTitleTooLong = errors.New("title is too long")
	ErrInvalidMood  = errors.New("mood level must be between 1 and 5")
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Title     string
	Content   string
	MoodLevel *int
}

func (in Input) normalize() (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	if strings.TrimSpace(in.Content) == "" {
		return in, ErrEmptyContent
	}
	if utf8.RuneCountInString(in.Title) > maxTitleRunes {
		return in, ErrTitleTooLong
	}
	if in.MoodLevel != nil && (*in.MoodLevel < 1 || *in.MoodLevel > 5) {
		return in, ErrInvalidMood
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (*models.JournalEntry, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	e := &models.JournalEntry{UserID: userID, Title: in.Title, Content: in.Content, MoodLevel: in.MoodLevel}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]models.JournalEntry, error) {
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, userID, limit)
}

func (s *Service) Get(ctx context.Context, userID string, id uint64) (*models.JournalEntry, error) {
	return s.repo.Get(ctx, userID, id)
}

// Update replaces the entry's editable fields and returns the stored row.
func (s *Service) Update(ctx context.Context, userID string, id uint64, in Input) (*models.JournalEntry, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, userID, id, in.Title, in.Content, in.MoodLevel); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID string, id uint64) error {
	return s.repo.Delete(ctx, userID, id)
}

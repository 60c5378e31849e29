package submissions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	inats "github.com/dailyink/dailyink/internal/nats"
	"github.com/dailyink/dailyink/internal/streak"
	"github.com/dailyink/dailyink/internal/writemode"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Debiter interface {
	Debit(ctx context.Context, userID uuid.UUID, mode writemode.Mode) error
}

type StreakMarker interface {
	MarkToday(ctx context.Context, userID uuid.UUID) (*streak.Streak, error)
}

type EventPublisher interface {
	PublishSubmissionCreated(ctx context.Context, event inats.SubmissionCreated) error
}

type Service struct {
	repo      Repository
	tokens    Debiter
	streaks   StreakMarker
	publisher EventPublisher
	now       func() time.Time
}

func NewService(repo Repository, tokens Debiter, streaks StreakMarker, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		streaks:   streaks,
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit validates the piece, spends a token of its mode and stores it.
// Marking the streak and publishing the event are best effort: once the
// token is spent the submission stands.
func (s *Service) Submit(ctx context.Context, author Author, req Request) (*Submission, error) {
	mode, err := writemode.Parse(req.Mode)
	if err != nil {
		return nil, err
	}
	if err := checkText(req.Text, mode); err != nil {
		return nil, err
	}

	if err := s.tokens.Debit(ctx, author.UserID, mode); err != nil {
		return nil, err
	}

	sub := &Submission{
		ID:        uuid.New(),
		UserID:    author.UserID,
		Mode:      mode,
		Title:     strings.TrimSpace(req.Title),
		Topic:     strings.TrimSpace(req.Topic),
		Text:      req.Text,
		WordCount: WordCount(req.Text),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		slog.Error("submissions: token spent but submission not stored", "user_id", author.UserID, "mode", mode, "error", err)
		return nil, fmt.Errorf("storing submission: %w", err)
	}

	if s.streaks != nil {
		if _, err := s.streaks.MarkToday(ctx, author.UserID); err != nil {
			slog.Warn("submissions: marking streak", "user_id", author.UserID, "error", err)
		}
	}

	if s.publisher != nil {
		event := inats.SubmissionCreated{
			SubmissionID: sub.ID,
			UserID:       sub.UserID,
			Mode:         sub.Mode.String(),
			Title:        sub.Title,
			Topic:        sub.Topic,
			Text:         sub.Text,
			WordCount:    sub.WordCount,
			AuthorName:   author.Nickname,
			AuthorEmail:  author.Email,
			CreatedAt:    sub.CreatedAt,
		}
		if err := s.publisher.PublishSubmissionCreated(ctx, event); err != nil {
			slog.Warn("submissions: publishing event", "submission_id", sub.ID, "error", err)
		}
	}

	slog.Info("submission stored", "submission_id", sub.ID, "user_id", sub.UserID, "mode", mode)
	return sub, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Submission, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns the user's newest submissions first. limit is clamped to
// 1..100 and defaults to 20.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int) ([]Submission, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

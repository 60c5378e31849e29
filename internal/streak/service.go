package streak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	inats "github.com/dailyink/dailyink/internal/nats"
	"github.com/dailyink/dailyink/internal/tokens"
)

// Awarder grants the weekly streak bonus.
type Awarder interface {
	AwardStreakBonus(ctx context.Context, userID uuid.UUID) (*tokens.Balance, error)
}

type EventPublisher interface {
	PublishStreakCompleted(ctx context.Context, event inats.StreakCompleted) error
}

// CelebrationStore is implemented by repositories that can undo a
// celebration flip when the award behind it failed.
type CelebrationStore interface {
	ClearCelebrated(ctx context.Context, userID uuid.UUID, weekStart time.Time) error
}

type Service struct {
	repo      Repository
	awarder   Awarder
	publisher EventPublisher
	loc       *time.Location
	now       func() time.Time
}

func NewService(repo Repository, awarder Awarder, publisher EventPublisher, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		awarder:   awarder,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// Get returns the user's streak with any pending week rollover applied.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Streak, error) {
	cur, created, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, rolled := Rollover(*cur, s.now(), s.loc)
	if created || rolled {
		if err := s.repo.Save(ctx, &next); err != nil {
			return nil, err
		}
	}
	return &next, nil
}

// MarkDay marks dayIndex (Monday=0) in the current week. The first time the
// week becomes complete the golden-key bonus is awarded; later calls in the
// same week never award again.
func (s *Service) MarkDay(ctx context.Context, userID uuid.UUID, dayIndex int) (*Streak, error) {
	if dayIndex < 0 || dayIndex >= DaysPerWeek {
		return nil, ErrInvalidDay
	}
	cur, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, err := MarkDay(*cur, dayIndex, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	// Save merges with marks other requests stored this week, so next may
	// be complete even if this request only saw a partial week.
	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, err
	}

	if IsComplete(next) && !next.CelebrationShown {
		if err := s.celebrate(ctx, &next); err != nil {
			return nil, err
		}
	}
	return &next, nil
}

// MarkToday marks the current weekday. On weekends it only returns the streak.
func (s *Service) MarkToday(ctx context.Context, userID uuid.UUID) (*Streak, error) {
	idx, ok := DayIndex(s.now(), s.loc)
	if !ok {
		return s.Get(ctx, userID)
	}
	return s.MarkDay(ctx, userID, idx)
}

func (s *Service) celebrate(ctx context.Context, st *Streak) error {
	flipped, err := s.repo.MarkCelebrated(ctx, st.UserID, st.CurrentWeekStart)
	if err != nil {
		return err
	}
	if !flipped {
		// Another request already celebrated this week.
		st.CelebrationShown = true
		return nil
	}

	balance, err := s.awarder.AwardStreakBonus(ctx, st.UserID)
	if err != nil {
		if cs, ok := s.repo.(CelebrationStore); ok {
			if clearErr := cs.ClearCelebrated(ctx, st.UserID, st.CurrentWeekStart); clearErr != nil {
				slog.Error("streak: re-arming celebration", "user_id", st.UserID, "error", clearErr)
			}
		}
		return fmt.Errorf("awarding streak bonus: %w", err)
	}
	st.CelebrationShown = true

	completedAt := s.now().UTC()
	if st.CompletedAt != nil {
		completedAt = *st.CompletedAt
	}
	event := inats.StreakCompleted{
		UserID:      st.UserID,
		WeekStart:   st.CurrentWeekStart,
		GoldenKeys:  balance.GoldenKeys,
		CompletedAt: completedAt,
	}
	if s.publisher != nil {
		if err := s.publisher.PublishStreakCompleted(ctx, event); err != nil {
			slog.Warn("streak: publishing completion", "user_id", st.UserID, "error", err)
		}
	}

	slog.Info("streak: week completed", "user_id", st.UserID, "week_start", st.CurrentWeekStart)
	return nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (*Streak, bool, error) {
	st, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		fresh := New(userID, s.now(), s.loc)
		return &fresh, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return st, false, nil
}

package tokens

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dailyink/dailyink/internal/config"
	"github.com/dailyink/dailyink/internal/metrics"
	"github.com/dailyink/dailyink/internal/writemode"
)

// Service is the token ledger: balances, resets, golden keys and history
// reporting.
type Service struct {
	repo   Repository
	limits Limits
	award  int
	loc    *time.Location
	now    func() time.Time
}

// NewService creates a token ledger Service.
func NewService(repo Repository, cfg config.TokensConfig) *Service {
	return &Service{
		repo: repo,
		limits: Limits{
			DailyShort: cfg.DailyShortLimit,
			WeeklyLong: cfg.WeeklyLongLimit,
		},
		award: cfg.GoldenKeyAward,
		loc:   cfg.Location(),
		now:   time.Now,
	}
}

// GetBalance returns the user's balance, creating it with full pools on first use.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	b, err := s.repo.GetOrCreate(ctx, userID, s.limits)
	if err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}
	return b, nil
}

// Debit spends one token from the mode's pool. It returns
// ErrInsufficientTokens when the pool is empty; nothing is written then.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, mode writemode.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", writemode.ErrUnknownMode, mode)
	}
	if _, err := s.repo.GetOrCreate(ctx, userID, s.limits); err != nil {
		return fmt.Errorf("getting balance: %w", err)
	}

	ok, err := s.repo.Debit(ctx, userID, mode, s.now().UTC())
	if err != nil {
		metrics.TokenDebitsTotal.WithLabelValues(mode.String(), "error").Inc()
		return fmt.Errorf("debiting %s token: %w", mode, err)
	}
	if !ok {
		metrics.TokenDebitsTotal.WithLabelValues(mode.String(), "insufficient").Inc()
		return ErrInsufficientTokens
	}

	metrics.TokenDebitsTotal.WithLabelValues(mode.String(), "ok").Inc()
	slog.Debug("tokens: debited", "user_id", userID, "mode", mode)
	return nil
}

// ResetDaily overwrites the short pool with the daily limit.
func (s *Service) ResetDaily(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	return s.reset(ctx, userID, KindDailyReset, s.limits.DailyShort)
}

// ResetWeekly overwrites the long pool with the weekly limit.
func (s *Service) ResetWeekly(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	return s.reset(ctx, userID, KindWeeklyReset, s.limits.WeeklyLong)
}

func (s *Service) reset(ctx context.Context, userID uuid.UUID, kind Kind, limit int) (*Balance, error) {
	if _, err := s.repo.GetOrCreate(ctx, userID, s.limits); err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}
	b, err := s.repo.Reset(ctx, userID, kind, limit, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("applying %s: %w", kind, err)
	}
	metrics.TokenResetsTotal.WithLabelValues(string(kind)).Inc()
	return b, nil
}

// ResetAllDaily applies the daily reset to every user that has a balance and
// returns how many were reset. It stops at the first failure.
func (s *Service) ResetAllDaily(ctx context.Context) (int, error) {
	return s.resetAll(ctx, s.ResetDaily)
}

// ResetAllWeekly is ResetAllDaily for the long pool.
func (s *Service) ResetAllWeekly(ctx context.Context) (int, error) {
	return s.resetAll(ctx, s.ResetWeekly)
}

func (s *Service) resetAll(ctx context.Context, fn func(context.Context, uuid.UUID) (*Balance, error)) (int, error) {
	ids, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := fn(ctx, id); err != nil {
			return i, fmt.Errorf("resetting user %s: %w", id, err)
		}
	}
	return len(ids), nil
}

// AwardGoldenKey adds amount golden keys to the balance.
func (s *Service) AwardGoldenKey(ctx context.Context, userID uuid.UUID, amount int) (*Balance, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.repo.GetOrCreate(ctx, userID, s.limits); err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}
	b, err := s.repo.AddGoldenKeys(ctx, userID, amount, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("awarding golden key: %w", err)
	}
	metrics.GoldenKeysAwardedTotal.Add(float64(amount))
	slog.Info("tokens: golden key awarded", "user_id", userID, "amount", amount)
	return b, nil
}

// AwardStreakBonus awards the configured golden-key amount for a completed week.
func (s *Service) AwardStreakBonus(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	return s.AwardGoldenKey(ctx, userID, s.award)
}

// UnlockFeedback spends one golden key to unlock feedback on a piece written
// in mode. It returns ErrNoGoldenKeys when none are left.
func (s *Service) UnlockFeedback(ctx context.Context, userID uuid.UUID, mode writemode.Mode) (*Balance, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", writemode.ErrUnknownMode, mode)
	}
	if _, err := s.repo.GetOrCreate(ctx, userID, s.limits); err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}
	ok, err := s.repo.SpendGoldenKey(ctx, userID, mode, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("spending golden key: %w", err)
	}
	if !ok {
		return nil, ErrNoGoldenKeys
	}
	return s.repo.Get(ctx, userID)
}

// SummarizeHistory groups the user's history events by day or month.
func (s *Service) SummarizeHistory(ctx context.Context, userID uuid.UUID, g Granularity) (Report, error) {
	events, err := s.repo.ListEvents(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("loading token history: %w", err)
	}
	return Summarize(events, g, s.loc), nil
}

// Status is the API view of a balance with the configured limits.
type Status struct {
	*Balance
	DailyShortLimit int `json:"daily_short_limit"`
	WeeklyLongLimit int `json:"weekly_long_limit"`
}

// StatusOf decorates a balance with the pool limits.
func (s *Service) StatusOf(b *Balance) Status {
	return Status{
		Balance:         b,
		DailyShortLimit: s.limits.DailyShort,
		WeeklyLongLimit: s.limits.WeeklyLong,
	}
}

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dailyink/dailyink/internal/metrics"
	"github.com/dailyink/dailyink/internal/stats"
	"github.com/dailyink/dailyink/internal/writemode"
)

type Service struct {
	repo       Repository
	thresholds stats.Thresholds
	now        func() time.Time
}

func NewService(repo Repository, thresholds stats.Thresholds) *Service {
	return &Service{repo: repo, thresholds: thresholds, now: time.Now}
}

// GetProfile returns the user's profile, creating an empty one seeded from
// fallback when none exists.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID, fallback *UserInfo) (*Profile, error) {
	var info UserInfo
	if fallback != nil {
		info = *fallback
	}
	return s.getOrCreate(ctx, userID, info)
}

// Lookup returns the profile without creating it.
func (s *Service) Lookup(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.Get(ctx, userID)
}

// UpdateProfile appends a scored submission to the mode's history, evicts
// beyond the mode's cap and recomputes that mode's stats from what remains.
// It is the only writer of histories and stats.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, sub Submission, fb Feedback) (*Profile, error) {
	if !sub.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", writemode.ErrUnknownMode, sub.Mode)
	}

	p, err := s.getOrCreate(ctx, userID, sub.Author)
	if err != nil {
		return nil, err
	}

	// Redelivered feedback is acknowledged without a second entry.
	if sub.ID != uuid.Nil && slices.ContainsFunc(p.History(sub.Mode), func(e HistoryEntry) bool {
		return e.SubmissionID == sub.ID
	}) {
		slog.Debug("profile: feedback already applied", "user_id", userID, "submission_id", sub.ID)
		return p, nil
	}

	now := s.now().UTC()
	date := sub.CreatedAt
	if date.IsZero() {
		date = now
	}
	entry := HistoryEntry{
		SubmissionID: sub.ID,
		Date:         date,
		Score:        fb.Score,
		Criteria:     fb.Criteria,
		AIFeedback:   fb.Text,
		UserText:     sub.Text,
		Title:        sub.Title,
		Topic:        sub.Topic,
		WordCount:    sub.WordCount,
	}

	history := AppendBounded(p.History(sub.Mode), entry, sub.Mode.HistoryCap())
	p.apply(sub.Mode, history, stats.Compute(statsEntries(history), sub.Mode, now, s.thresholds))
	p.UpdatedAt = now

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	metrics.ProfileUpdatesTotal.WithLabelValues(sub.Mode.String()).Inc()
	slog.Debug("profile: history updated", "user_id", userID, "mode", sub.Mode, "entries", len(history))
	return p, nil
}

func (s *Service) getOrCreate(ctx context.Context, userID uuid.UUID, info UserInfo) (*Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.repo.Create(ctx, newProfile(userID, info, s.now().UTC()))
}

func statsEntries(history []HistoryEntry) []stats.Entry {
	out := make([]stats.Entry, len(history))
	for i, e := range history {
		out[i] = e.statsEntry()
	}
	return out
}

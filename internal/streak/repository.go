package streak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Streak, error)
	Save(ctx context.Context, s *Streak) error
	// MarkCelebrated flips celebration_shown for the given week. It reports
	// false when the flag was already set or the stored week differs.
	MarkCelebrated(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Get(ctx context.Context, userID uuid.UUID) (*Streak, error) {
	var (
		s        Streak
		progress []bool
		history  []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, weekly_progress, current_week_start, celebration_shown,
		        completed_at, history, updated_at
		 FROM writing_streaks WHERE user_id = $1`, userID).
		Scan(&s.UserID, &progress, &s.CurrentWeekStart, &s.CelebrationShown,
			&s.CompletedAt, &history, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching streak: %w", err)
	}

	copy(s.WeeklyProgress[:], progress)
	if err := json.Unmarshal(history, &s.History); err != nil {
		return nil, fmt.Errorf("decoding streak history: %w", err)
	}
	return &s, nil
}

// mergedProgress ORs the stored and incoming day marks so concurrent marks
// for different days within one week are all kept.
const mergedProgress = `ARRAY(
	SELECT a OR b
	FROM unnest(writing_streaks.weekly_progress, EXCLUDED.weekly_progress) WITH ORDINALITY AS t(a, b, i)
	ORDER BY i)`

// Save upserts the record. Within the same week the stored day marks and
// celebration flag are merged with the incoming ones, never lowered, and the
// first completion time is kept. s is updated with the merged state.
func (r *postgresRepository) Save(ctx context.Context, s *Streak) error {
	history := s.History
	if history == nil {
		history = []WeekRecord{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding streak history: %w", err)
	}

	s.UpdatedAt = time.Now().UTC()
	var progress []bool
	err = r.pool.QueryRow(ctx,
		`INSERT INTO writing_streaks
		   (user_id, weekly_progress, current_week_start, celebration_shown, completed_at, history, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   weekly_progress = CASE
		       WHEN writing_streaks.current_week_start = EXCLUDED.current_week_start
		       THEN `+mergedProgress+`
		       ELSE EXCLUDED.weekly_progress END,
		   current_week_start = EXCLUDED.current_week_start,
		   celebration_shown  = CASE
		       WHEN writing_streaks.current_week_start = EXCLUDED.current_week_start
		       THEN writing_streaks.celebration_shown OR EXCLUDED.celebration_shown
		       ELSE EXCLUDED.celebration_shown END,
		   completed_at = CASE
		       WHEN writing_streaks.current_week_start = EXCLUDED.current_week_start
		       THEN COALESCE(writing_streaks.completed_at, EXCLUDED.completed_at,
		            CASE WHEN false <> ALL(`+mergedProgress+`) THEN EXCLUDED.updated_at END)
		       ELSE EXCLUDED.completed_at END,
		   history    = EXCLUDED.history,
		   updated_at = EXCLUDED.updated_at
		 RETURNING weekly_progress, celebration_shown, completed_at`,
		s.UserID, s.WeeklyProgress[:], s.CurrentWeekStart, s.CelebrationShown,
		s.CompletedAt, historyJSON, s.UpdatedAt).
		Scan(&progress, &s.CelebrationShown, &s.CompletedAt)
	if err != nil {
		return fmt.Errorf("saving streak: %w", err)
	}
	copy(s.WeeklyProgress[:], progress)
	return nil
}

func (r *postgresRepository) MarkCelebrated(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE writing_streaks SET celebration_shown = true, updated_at = now()
		 WHERE user_id = $1 AND current_week_start = $2 AND NOT celebration_shown`,
		userID, weekStart)
	if err != nil {
		return false, fmt.Errorf("marking streak celebrated: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) ClearCelebrated(ctx context.Context, userID uuid.UUID, weekStart time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE writing_streaks SET celebration_shown = false, updated_at = now()
		 WHERE user_id = $1 AND current_week_start = $2`,
		userID, weekStart)
	if err != nil {
		return fmt.Errorf("clearing streak celebration: %w", err)
	}
	return nil
}

package submissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailyink/dailyink/internal/writemode"
)

type Repository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Submission, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Submission, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const submissionColumns = `id, user_id, mode, title, topic, body, word_count, created_at`

func scanSubmission(row pgx.Row) (*Submission, error) {
	var s Submission
	var mode string
	if err := row.Scan(&s.ID, &s.UserID, &mode, &s.Title, &s.Topic, &s.Text, &s.WordCount, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Mode = writemode.Mode(mode)
	return &s, nil
}

func (r *postgresRepository) Create(ctx context.Context, s *Submission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO submissions (`+submissionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, string(s.Mode), s.Title, s.Topic, s.Text, s.WordCount, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// GetByID only returns submissions owned by userID.
func (r *postgresRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching submission: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

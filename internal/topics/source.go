package topics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailyink/dailyink/internal/writemode"
)

// PostgresSource reads the daily_topics table, which the topic importer fills.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) TopicFor(ctx context.Context, day time.Time, mode writemode.Mode) (*Topic, error) {
	d := day.Format(dayLayout)
	var text string
	err := s.pool.QueryRow(ctx,
		`SELECT topic FROM daily_topics WHERE day = $1::date AND mode = $2`, d, string(mode)).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoTopic
		}
		return nil, fmt.Errorf("querying daily topic: %w", err)
	}
	return &Topic{Day: d, Mode: mode, Topic: text}, nil
}

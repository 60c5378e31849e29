package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// Create inserts p unless a profile already exists, and returns the stored one.
	Create(ctx context.Context, p *Profile) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

type profileDocs struct {
	shortHistory, longHistory, shortStats, longStats []byte
}

func encodeDocs(p *Profile) (profileDocs, error) {
	var d profileDocs
	var err error
	if d.shortHistory, err = json.Marshal(p.ShortHistory); err != nil {
		return d, fmt.Errorf("encoding short history: %w", err)
	}
	if d.longHistory, err = json.Marshal(p.LongHistory); err != nil {
		return d, fmt.Errorf("encoding long history: %w", err)
	}
	if d.shortStats, err = json.Marshal(p.ShortStats); err != nil {
		return d, fmt.Errorf("encoding short stats: %w", err)
	}
	if d.longStats, err = json.Marshal(p.LongStats); err != nil {
		return d, fmt.Errorf("encoding long stats: %w", err)
	}
	return d, nil
}

func (r *postgresRepository) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var (
		p Profile
		d profileDocs
	)
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, display_name, email, short_history, long_history,
		        short_stats, long_stats, created_at, updated_at
		 FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.DisplayName, &p.Email, &d.shortHistory, &d.longHistory,
			&d.shortStats, &d.longStats, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	for _, doc := range []struct {
		raw []byte
		dst any
	}{
		{d.shortHistory, &p.ShortHistory},
		{d.longHistory, &p.LongHistory},
		{d.shortStats, &p.ShortStats},
		{d.longStats, &p.LongStats},
	} {
		if err := json.Unmarshal(doc.raw, doc.dst); err != nil {
			return nil, fmt.Errorf("decoding profile document: %w", err)
		}
	}
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Profile) (*Profile, error) {
	d, err := encodeDocs(p)
	if err != nil {
		return nil, err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, display_name, email, short_history, long_history,
		                       short_stats, long_stats, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.DisplayName, p.Email, d.shortHistory, d.longHistory,
		d.shortStats, d.longStats, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	return r.Get(ctx, p.UserID)
}

func (r *postgresRepository) Save(ctx context.Context, p *Profile) error {
	d, err := encodeDocs(p)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET display_name = $2, email = $3, short_history = $4,
		        long_history = $5, short_stats = $6, long_stats = $7, updated_at = $8
		 WHERE user_id = $1`,
		p.UserID, p.DisplayName, p.Email, d.shortHistory, d.longHistory,
		d.shortStats, d.longStats, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

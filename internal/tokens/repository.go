package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailyink/dailyink/internal/database"
	"github.com/dailyink/dailyink/internal/writemode"
)

// Repository persists balances and their append-only history. Every mutating
// method writes the balance change and its history event in one transaction.
type Repository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, limits Limits) (*Balance, error)
	Get(ctx context.Context, userID uuid.UUID) (*Balance, error)
	Debit(ctx context.Context, userID uuid.UUID, mode writemode.Mode, at time.Time) (bool, error)
	Reset(ctx context.Context, userID uuid.UUID, kind Kind, limit int, at time.Time) (*Balance, error)
	AddGoldenKeys(ctx context.Context, userID uuid.UUID, amount int, at time.Time) (*Balance, error)
	SpendGoldenKey(ctx context.Context, userID uuid.UUID, mode writemode.Mode, at time.Time) (bool, error)
	ListEvents(ctx context.Context, userID uuid.UUID) ([]HistoryEvent, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const balanceColumns = `user_id, tokens_short, tokens_long, golden_keys,
	last_daily_reset, last_weekly_reset, updated_at`

func scanBalance(row pgx.Row) (*Balance, error) {
	var b Balance
	err := row.Scan(&b.UserID, &b.TokensShort, &b.TokensLong, &b.GoldenKeys,
		&b.LastDailyReset, &b.LastWeeklyReset, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, limits Limits) (*Balance, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO token_balances (user_id, tokens_short, tokens_long)
		 VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`,
		userID, limits.DailyShort, limits.WeeklyLong)
	if err != nil {
		return nil, fmt.Errorf("ensuring token balance: %w", err)
	}
	return r.Get(ctx, userID)
}

func (r *postgresRepository) Get(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	b, err := scanBalance(r.pool.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM token_balances WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching token balance: %w", err)
	}
	return b, nil
}

// poolColumn maps a mode to its column. Only constants reach the SQL text.
func poolColumn(mode writemode.Mode) string {
	if mode == writemode.Long {
		return "tokens_long"
	}
	return "tokens_short"
}

func (r *postgresRepository) Debit(ctx context.Context, userID uuid.UUID, mode writemode.Mode, at time.Time) (bool, error) {
	col := poolColumn(mode)
	return r.conditionalSpend(ctx, userID,
		`UPDATE token_balances SET `+col+` = `+col+` - 1, updated_at = $2
		 WHERE user_id = $1 AND `+col+` > 0`,
		HistoryEvent{UserID: userID, Kind: KindWritingUse, Amount: -1, Mode: mode, Timestamp: at})
}

func (r *postgresRepository) SpendGoldenKey(ctx context.Context, userID uuid.UUID, mode writemode.Mode, at time.Time) (bool, error) {
	return r.conditionalSpend(ctx, userID,
		`UPDATE token_balances SET golden_keys = golden_keys - 1, updated_at = $2
		 WHERE user_id = $1 AND golden_keys > 0`,
		HistoryEvent{UserID: userID, Kind: KindFeedbackUnlock, Amount: -1, Mode: mode, Timestamp: at})
}

// conditionalSpend runs a guarded decrement. Zero affected rows means the
// guard failed and nothing is written.
func (r *postgresRepository) conditionalSpend(ctx context.Context, userID uuid.UUID, update string, event HistoryEvent) (bool, error) {
	var applied bool
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, update, userID, event.Timestamp)
		if err != nil {
			return fmt.Errorf("applying %s: %w", event.Kind, err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		applied = true
		return insertEvent(ctx, tx, event)
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *postgresRepository) Reset(ctx context.Context, userID uuid.UUID, kind Kind, limit int, at time.Time) (*Balance, error) {
	var col, stamp string
	var mode writemode.Mode
	switch kind {
	case KindDailyReset:
		col, stamp, mode = "tokens_short", "last_daily_reset", writemode.Short
	case KindWeeklyReset:
		col, stamp, mode = "tokens_long", "last_weekly_reset", writemode.Long
	default:
		return nil, fmt.Errorf("unsupported reset kind %q", kind)
	}

	var b *Balance
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var previous int
		err := tx.QueryRow(ctx,
			`SELECT `+col+` FROM token_balances WHERE user_id = $1 FOR UPDATE`, userID).Scan(&previous)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("locking balance for reset: %w", err)
		}

		b, err = scanBalance(tx.QueryRow(ctx,
			`UPDATE token_balances SET `+col+` = $2, `+stamp+` = $3, updated_at = $3
			 WHERE user_id = $1 RETURNING `+balanceColumns, userID, limit, at))
		if err != nil {
			return fmt.Errorf("applying %s: %w", kind, err)
		}

		return insertEvent(ctx, tx, HistoryEvent{
			UserID:    userID,
			Kind:      kind,
			Amount:    limit - previous,
			Mode:      mode,
			Timestamp: at,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *postgresRepository) AddGoldenKeys(ctx context.Context, userID uuid.UUID, amount int, at time.Time) (*Balance, error) {
	var b *Balance
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		b, err = scanBalance(tx.QueryRow(ctx,
			`UPDATE token_balances SET golden_keys = golden_keys + $2, updated_at = $3
			 WHERE user_id = $1 RETURNING `+balanceColumns, userID, amount, at))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("awarding golden keys: %w", err)
		}
		return insertEvent(ctx, tx, HistoryEvent{UserID: userID, Kind: KindGoldenKey, Amount: amount, Timestamp: at})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, e HistoryEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	var mode *string
	if e.Mode != "" {
		m := string(e.Mode)
		mode = &m
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO token_history (id, user_id, kind, amount, mode, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, string(e.Kind), e.Amount, mode, e.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting %s history event: %w", e.Kind, err)
	}
	return nil
}

func (r *postgresRepository) ListEvents(ctx context.Context, userID uuid.UUID) ([]HistoryEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, kind, amount, COALESCE(mode, ''), created_at
		 FROM token_history WHERE user_id = $1
		 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying token history: %w", err)
	}
	defer rows.Close()

	var events []HistoryEvent
	for rows.Next() {
		var e HistoryEvent
		var kind, mode string
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &e.Amount, &mode, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning token history: %w", err)
		}
		e.Kind = Kind(kind)
		e.Mode = writemode.Mode(mode)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM token_balances ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing balance owners: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning balance owner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

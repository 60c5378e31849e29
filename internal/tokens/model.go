package tokens

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dailyink/dailyink/internal/writemode"
)

var (
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrNoGoldenKeys       = errors.New("no golden keys available")
	ErrNotFound           = errors.New("token balance not found")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

// Kind is the reason a balance changed.
type Kind string

const (
	KindDailyReset     Kind = "DAILY_RESET"
	KindWeeklyReset    Kind = "WEEKLY_RESET"
	KindGoldenKey      Kind = "GOLDEN_KEY"
	KindWritingUse     Kind = "WRITING_USE"
	KindFeedbackUnlock Kind = "FEEDBACK_UNLOCK"
)

// affectsKeys reports whether the event moves the golden-key count rather
// than a token pool.
func (k Kind) affectsKeys() bool {
	return k == KindGoldenKey || k == KindFeedbackUnlock
}

// Balance matches the token_balances table schema.
type Balance struct {
	UserID          uuid.UUID `json:"user_id"`
	TokensShort     int       `json:"tokens_short"`
	TokensLong      int       `json:"tokens_long"`
	GoldenKeys      int       `json:"golden_keys"`
	LastDailyReset  time.Time `json:"last_daily_reset"`
	LastWeeklyReset time.Time `json:"last_weekly_reset"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Pool returns the token count for the given mode.
func (b *Balance) Pool(mode writemode.Mode) int {
	if mode == writemode.Long {
		return b.TokensLong
	}
	return b.TokensShort
}

// HistoryEvent is an immutable record of one balance change. Mode is empty
// for golden-key awards, which are not tied to a writing format.
type HistoryEvent struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Kind      Kind           `json:"kind"`
	Amount    int            `json:"amount"`
	Mode      writemode.Mode `json:"mode,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Limits are the pool sizes applied on creation and on reset.
type Limits struct {
	DailyShort int
	WeeklyLong int
}

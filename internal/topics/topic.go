// Package topics serves the daily writing topic for each mode. Topics are
// loaded from the daily_topics table and cached in Redis per day and mode.
package topics

import (
	"context"
	"errors"
	"time"

	"github.com/dailyink/dailyink/internal/writemode"
)

var ErrNoTopic = errors.New("no topic scheduled")

const dayLayout = "2006-01-02"

type Topic struct {
	Day   string         `json:"day"`
	Mode  writemode.Mode `json:"mode"`
	Topic string         `json:"topic"`
}

// Cache maps a (day, mode) key to a topic.
type Cache interface {
	Get(ctx context.Context, day time.Time, mode writemode.Mode) (*Topic, bool, error)
	Put(ctx context.Context, t *Topic) error
}

// Source is the system of record for scheduled topics.
type Source interface {
	TopicFor(ctx context.Context, day time.Time, mode writemode.Mode) (*Topic, error)
}

package profile

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dailyink/dailyink/internal/stats"
	"github.com/dailyink/dailyink/internal/writemode"
)

var ErrNotFound = errors.New("profile not found")

// HistoryEntry is one scored submission kept in a profile's rolling history.
// Entries are never changed after they are appended.
type HistoryEntry struct {
	SubmissionID uuid.UUID          `json:"submission_id"`
	Date         time.Time          `json:"date"`
	Score        *float64           `json:"score"`
	Criteria     map[string]float64 `json:"criteria,omitempty"`
	AIFeedback   string             `json:"ai_feedback"`
	UserText     string             `json:"user_text"`
	Title        string             `json:"title"`
	Topic        string             `json:"topic"`
	WordCount    int                `json:"word_count"`
}

func (e HistoryEntry) statsEntry() stats.Entry {
	return stats.Entry{Score: e.Score, Criteria: e.Criteria, Topic: e.Topic, WordCount: e.WordCount}
}

type Profile struct {
	UserID       uuid.UUID      `json:"user_id"`
	DisplayName  string         `json:"display_name"`
	Email        string         `json:"email"`
	ShortHistory []HistoryEntry `json:"short_history"`
	LongHistory  []HistoryEntry `json:"long_history"`
	ShortStats   stats.Stats    `json:"short_stats"`
	LongStats    stats.Stats    `json:"long_stats"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// UserInfo seeds the display fields of a profile created on first access.
type UserInfo struct {
	DisplayName string
	Email       string
}

// Submission is the scored piece as the profile sees it.
type Submission struct {
	ID        uuid.UUID
	Mode      writemode.Mode
	Title     string
	Topic     string
	Text      string
	WordCount int
	CreatedAt time.Time
	Author    UserInfo
}

// Feedback is the scorer's verdict on a submission.
type Feedback struct {
	Score    *float64
	Criteria map[string]float64
	Text     string
}

func newProfile(userID uuid.UUID, info UserInfo, now time.Time) *Profile {
	return &Profile{
		UserID:       userID,
		DisplayName:  info.DisplayName,
		Email:        info.Email,
		ShortHistory: []HistoryEntry{},
		LongHistory:  []HistoryEntry{},
		ShortStats:   stats.Empty(now),
		LongStats:    stats.Empty(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (p *Profile) History(mode writemode.Mode) []HistoryEntry {
	if mode == writemode.Long {
		return p.LongHistory
	}
	return p.ShortHistory
}

// apply replaces a mode's history and its stats together.
func (p *Profile) apply(mode writemode.Mode, history []HistoryEntry, st stats.Stats) {
	if mode == writemode.Long {
		p.LongHistory, p.LongStats = history, st
		return
	}
	p.ShortHistory, p.ShortStats = history, st
}

// AppendBounded returns history with entry appended and the oldest entries
// dropped so that at most limit remain. The input slice is not modified.
func AppendBounded(history []HistoryEntry, entry HistoryEntry, limit int) []HistoryEntry {
	if limit <= 0 {
		return []HistoryEntry{}
	}
	out := append(slices.Clip(history), entry)
	if len(out) > limit {
		out = slices.Clone(out[len(out)-limit:])
	}
	return out
}

package submissions

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dailyink/dailyink/internal/writemode"
)

var (
	ErrEmptyText   = errors.New("submission text is empty")
	ErrTextTooLong = errors.New("submission text exceeds the mode's character limit")
	ErrNotFound    = errors.New("submission not found")
)

type Submission struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Mode      writemode.Mode `json:"mode"`
	Title     string         `json:"title"`
	Topic     string         `json:"topic"`
	Text      string         `json:"text"`
	WordCount int            `json:"word_count"`
	CreatedAt time.Time      `json:"created_at"`
}

// Author identifies who is submitting; the display fields travel with the
// submission event so the scorer can seed a profile.
type Author struct {
	UserID   uuid.UUID
	Nickname string
	Email    string
}

type Request struct {
	Mode  string `json:"mode" validate:"required"`
	Title string `json:"title" validate:"max=200"`
	Topic string `json:"topic" validate:"max=200"`
	Text  string `json:"text" validate:"required"`
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// checkText enforces 1..limit characters, counted in runes.
func checkText(text string, mode writemode.Mode) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > mode.CharLimit() {
		return ErrTextTooLong
	}
	return nil
}

package nats

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

const StreamEvents = "DAILYINK_EVENTS"

// Subject constants.
const (
	SubjectEventsAll         = "dailyink.events.>"
	SubjectSubmissionCreated = "dailyink.events.submission.created"
	SubjectFeedbackCompleted = "dailyink.events.feedback.completed"
	SubjectStreakCompleted   = "dailyink.events.streak.completed"
)

// SubmissionCreated is published after a piece is stored and its token
// debited. The external scorer consumes it.
type SubmissionCreated struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	UserID       uuid.UUID `json:"user_id"`
	Mode         string    `json:"mode"`
	Title        string    `json:"title"`
	Topic        string    `json:"topic"`
	Text         string    `json:"text"`
	WordCount    int       `json:"word_count"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  string    `json:"author_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedbackCompleted carries the scorer's result for one submission, together
// with the submission fields the profile history keeps.
type FeedbackCompleted struct {
	SubmissionCreated
	Score       *float64           `json:"score"`
	Criteria    map[string]float64 `json:"criteria,omitempty"`
	Feedback    string             `json:"feedback"`
	CompletedAt time.Time          `json:"completed_at"`
}

// StreakCompleted is published once per user and week when all five
// weekdays are marked.
type StreakCompleted struct {
	UserID      uuid.UUID `json:"user_id"`
	WeekStart   time.Time `json:"week_start"`
	GoldenKeys  int       `json:"golden_keys"`
	CompletedAt time.Time `json:"completed_at"`
}

package streak

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DaysPerWeek is the number of tracked weekdays, Monday through Friday.
const DaysPerWeek = 5

var (
	ErrInvalidDay = errors.New("day index must be between 0 (Monday) and 4 (Friday)")
	ErrNotFound   = errors.New("streak not found")
)

type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateCelebrated State = "celebrated"
)

// WeekRecord is an archived week.
type WeekRecord struct {
	WeekStart      time.Time  `json:"week_start"`
	Completed      bool       `json:"completed"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// Streak is one user's weekday writing record for the current week plus the
// archive of earlier weeks.
type Streak struct {
	UserID           uuid.UUID         `json:"user_id"`
	WeeklyProgress   [DaysPerWeek]bool `json:"weekly_progress"`
	CurrentWeekStart time.Time         `json:"current_week_start"`
	CelebrationShown bool              `json:"celebration_shown"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	History          []WeekRecord      `json:"history"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// View is the API representation of a streak.
type View struct {
	Streak
	State      State `json:"state"`
	DaysMarked int   `json:"days_marked"`
}

func ViewOf(s Streak) View {
	return View{Streak: s, State: StateOf(s), DaysMarked: daysMarked(s)}
}

package streak

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// WeekStart returns Monday 00:00 in loc of the week containing t. Sunday
// belongs to the week that began six days earlier.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
}

// DayIndex maps t to its weekday index. Weekends report false.
func DayIndex(t time.Time, loc *time.Location) (int, bool) {
	idx := (int(t.In(loc).Weekday()) + 6) % 7
	return idx, idx < DaysPerWeek
}

// New returns an empty streak for the week containing now.
func New(userID uuid.UUID, now time.Time, loc *time.Location) Streak {
	return Streak{UserID: userID, CurrentWeekStart: WeekStart(now, loc)}
}

func ShouldStartNewWeek(s Streak, now time.Time, loc *time.Location) bool {
	return s.CurrentWeekStart.IsZero() || s.CurrentWeekStart.Before(WeekStart(now, loc))
}

// StartNewWeek archives the current week and returns a streak with an empty
// week starting at the Monday of now. The input is not modified.
func StartNewWeek(s Streak, now time.Time, loc *time.Location) Streak {
	out := s
	if !s.CurrentWeekStart.IsZero() {
		out.History = append(slices.Clip(s.History), WeekRecord{
			WeekStart:      s.CurrentWeekStart,
			Completed:      IsComplete(s),
			CompletionDate: s.CompletedAt,
		})
	}
	out.WeeklyProgress = [DaysPerWeek]bool{}
	out.CurrentWeekStart = WeekStart(now, loc)
	out.CelebrationShown = false
	out.CompletedAt = nil
	return out
}

// Rollover starts a new week when one is due and reports whether it did.
func Rollover(s Streak, now time.Time, loc *time.Location) (Streak, bool) {
	if !ShouldStartNewWeek(s, now, loc) {
		return s, false
	}
	return StartNewWeek(s, now, loc), true
}

// MarkDay applies any pending rollover and then marks dayIndex. Marking an
// already marked day changes nothing.
func MarkDay(s Streak, dayIndex int, now time.Time, loc *time.Location) (Streak, error) {
	if dayIndex < 0 || dayIndex >= DaysPerWeek {
		return s, ErrInvalidDay
	}
	out, _ := Rollover(s, now, loc)
	out.WeeklyProgress[dayIndex] = true
	if IsComplete(out) && out.CompletedAt == nil {
		at := now.UTC()
		out.CompletedAt = &at
	}
	return out, nil
}

func IsComplete(s Streak) bool {
	return daysMarked(s) == DaysPerWeek
}

func StateOf(s Streak) State {
	switch {
	case !IsComplete(s):
		return StateInProgress
	case s.CelebrationShown:
		return StateCelebrated
	default:
		return StateCompleted
	}
}

func daysMarked(s Streak) int {
	n := 0
	for _, done := range s.WeeklyProgress {
		if done {
			n++
		}
	}
	return n
}

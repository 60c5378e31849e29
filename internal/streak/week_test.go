package streak

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monday    = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	wednesday = monday.AddDate(0, 0, 2)
	sunday    = monday.AddDate(0, 0, 6)
	nextMon   = monday.AddDate(0, 0, 7)
)

func TestWeekStart(t *testing.T) {
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, WeekStart(monday, time.UTC))
	assert.Equal(t, want, WeekStart(wednesday, time.UTC))
	assert.Equal(t, want, WeekStart(sunday, time.UTC), "sunday belongs to the previous monday")
	assert.Equal(t, want.AddDate(0, 0, 7), WeekStart(nextMon, time.UTC))
}

func TestWeekStart_Location(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// Sunday 20:00 UTC is already Monday morning in Seoul.
	got := WeekStart(time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC), seoul)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, seoul), got)
}

func TestDayIndex(t *testing.T) {
	idx, ok := DayIndex(monday, time.UTC)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = DayIndex(monday.AddDate(0, 0, 4), time.UTC)
	assert.True(t, ok)
	assert.Equal(t, 4, idx)

	_, ok = DayIndex(monday.AddDate(0, 0, 5), time.UTC)
	assert.False(t, ok)
	_, ok = DayIndex(sunday, time.UTC)
	assert.False(t, ok)
}

func TestMarkDay_Idempotent(t *testing.T) {
	s := New(uuid.New(), monday, time.UTC)

	once, err := MarkDay(s, 2, wednesday, time.UTC)
	require.NoError(t, err)
	twice, err := MarkDay(once, 2, wednesday, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, [DaysPerWeek]bool{false, false, true, false, false}, twice.WeeklyProgress)
	assert.Equal(t, StateInProgress, StateOf(twice))
}

func TestMarkDay_InvalidIndex(t *testing.T) {
	s := New(uuid.New(), monday, time.UTC)
	for _, idx := range []int{-1, 5, 6} {
		_, err := MarkDay(s, idx, monday, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidDay)
	}
}

func TestMarkDay_CompletionStampsOnce(t *testing.T) {
	s := New(uuid.New(), monday, time.UTC)
	var err error
	for i := 0; i < DaysPerWeek; i++ {
		s, err = MarkDay(s, i, monday.Add(time.Duration(i)*24*time.Hour), time.UTC)
		require.NoError(t, err)
	}
	require.True(t, IsComplete(s))
	require.NotNil(t, s.CompletedAt)
	first := *s.CompletedAt

	s, err = MarkDay(s, 0, monday.AddDate(0, 0, 5), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, first, *s.CompletedAt)
	assert.Equal(t, StateCompleted, StateOf(s))

	s.CelebrationShown = true
	assert.Equal(t, StateCelebrated, StateOf(s))
}

func TestRollover(t *testing.T) {
	s := New(uuid.New(), monday, time.UTC)
	s, err := MarkDay(s, 0, monday, time.UTC)
	require.NoError(t, err)

	assert.False(t, ShouldStartNewWeek(s, sunday, time.UTC))
	assert.True(t, ShouldStartNewWeek(s, nextMon, time.UTC))

	rolled, err := MarkDay(s, 1, nextMon.AddDate(0, 0, 1), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, WeekStart(nextMon, time.UTC), rolled.CurrentWeekStart)
	assert.Equal(t, [DaysPerWeek]bool{false, true, false, false, false}, rolled.WeeklyProgress)
	require.Len(t, rolled.History, 1)
	assert.Equal(t, WeekStart(monday, time.UTC), rolled.History[0].WeekStart)
	assert.False(t, rolled.History[0].Completed)

	assert.Empty(t, s.History, "input streak is not modified")
	assert.True(t, s.WeeklyProgress[0])
}

func TestStartNewWeek_ArchivesCompletion(t *testing.T) {
	s := New(uuid.New(), monday, time.UTC)
	for i := 0; i < DaysPerWeek; i++ {
		s, _ = MarkDay(s, i, monday, time.UTC)
	}
	s.CelebrationShown = true

	next := StartNewWeek(s, nextMon, time.UTC)
	require.Len(t, next.History, 1)
	assert.True(t, next.History[0].Completed)
	assert.Equal(t, s.CompletedAt, next.History[0].CompletionDate)
	assert.False(t, next.CelebrationShown)
	assert.Nil(t, next.CompletedAt)
	assert.Equal(t, StateInProgress, StateOf(next))
}

func TestStartNewWeek_Uninitialized(t *testing.T) {
	next := StartNewWeek(Streak{UserID: uuid.New()}, wednesday, time.UTC)
	assert.Empty(t, next.History)
	assert.Equal(t, WeekStart(wednesday, time.UTC), next.CurrentWeekStart)
}

func TestParseDay(t *testing.T) {
	for in, want := range map[string]int{"0": 0, "4": 4, "Monday": 0, "fri": 4} {
		got, err := parseDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"5", "-1", "saturday", ""} {
		_, err := parseDay(in)
		assert.ErrorIs(t, err, ErrInvalidDay, in)
	}
}

package streak

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inats "github.com/dailyink/dailyink/internal/nats"
	"github.com/dailyink/dailyink/internal/tokens"
)

type memRepository struct {
	mu      sync.Mutex
	streaks map[uuid.UUID]Streak
}

func newMemRepository() *memRepository {
	return &memRepository{streaks: map[uuid.UUID]Streak{}}
}

func (m *memRepository) Get(_ context.Context, userID uuid.UUID) (*Streak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.streaks[userID]
	if !ok {
		return nil, ErrNotFound
	}
	s.History = slices.Clone(s.History)
	return &s, nil
}

func (m *memRepository) Save(_ context.Context, s *Streak) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *s
	next.History = slices.Clone(s.History)
	if prev, ok := m.streaks[s.UserID]; ok && prev.CurrentWeekStart.Equal(s.CurrentWeekStart) {
		for i := range next.WeeklyProgress {
			next.WeeklyProgress[i] = prev.WeeklyProgress[i] || s.WeeklyProgress[i]
		}
		next.CelebrationShown = prev.CelebrationShown || s.CelebrationShown
		switch {
		case prev.CompletedAt != nil:
			next.CompletedAt = prev.CompletedAt
		case next.CompletedAt == nil && IsComplete(next):
			at := s.UpdatedAt
			next.CompletedAt = &at
		}
	}
	m.streaks[s.UserID] = next
	*s = next
	s.History = slices.Clone(next.History)
	return nil
}

func (m *memRepository) MarkCelebrated(_ context.Context, userID uuid.UUID, weekStart time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.streaks[userID]
	if !ok || !s.CurrentWeekStart.Equal(weekStart) || s.CelebrationShown {
		return false, nil
	}
	s.CelebrationShown = true
	m.streaks[userID] = s
	return true, nil
}

func (m *memRepository) ClearCelebrated(_ context.Context, userID uuid.UUID, weekStart time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.streaks[userID]; ok && s.CurrentWeekStart.Equal(weekStart) {
		s.CelebrationShown = false
		m.streaks[userID] = s
	}
	return nil
}

type fakeAwarder struct {
	mu      sync.Mutex
	awarded int
	err     error
}

func (f *fakeAwarder) AwardStreakBonus(_ context.Context, userID uuid.UUID) (*tokens.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.awarded++
	return &tokens.Balance{UserID: userID, GoldenKeys: f.awarded}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []inats.StreakCompleted
}

func (f *fakePublisher) PublishStreakCompleted(_ context.Context, e inats.StreakCompleted) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func newTestService(now time.Time) (*Service, *memRepository, *fakeAwarder, *fakePublisher) {
	repo := newMemRepository()
	awarder := &fakeAwarder{}
	pub := &fakePublisher{}
	svc := NewService(repo, awarder, pub, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, repo, awarder, pub
}

func markWeek(t *testing.T, svc *Service, userID uuid.UUID) *Streak {
	t.Helper()
	var st *Streak
	var err error
	for i := 0; i < DaysPerWeek; i++ {
		st, err = svc.MarkDay(context.Background(), userID, i)
		require.NoError(t, err)
	}
	return st
}

func TestService_GetCreatesStreak(t *testing.T) {
	svc, repo, _, _ := newTestService(wednesday)
	userID := uuid.New()

	st, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, WeekStart(wednesday, time.UTC), st.CurrentWeekStart)
	assert.Contains(t, repo.streaks, userID)
}

func TestService_CompletionAwardsOnce(t *testing.T) {
	svc, _, awarder, pub := newTestService(wednesday)
	userID := uuid.New()

	st := markWeek(t, svc, userID)
	assert.Equal(t, StateCelebrated, StateOf(*st))
	assert.Equal(t, 1, awarder.awarded)

	for i := 0; i < 3; i++ {
		st, err := svc.MarkDay(context.Background(), userID, 4)
		require.NoError(t, err)
		assert.True(t, st.CelebrationShown)
	}
	assert.Equal(t, 1, awarder.awarded)
	require.Len(t, pub.events, 1)
	assert.Equal(t, userID, pub.events[0].UserID)
	assert.Equal(t, WeekStart(wednesday, time.UTC), pub.events[0].WeekStart)
}

func TestService_ConcurrentCompletionAwardsOnce(t *testing.T) {
	svc, repo, awarder, _ := newTestService(wednesday)
	userID := uuid.New()

	s := New(userID, wednesday, time.UTC)
	s.WeeklyProgress = [DaysPerWeek]bool{true, true, true, true, false}
	repo.streaks[userID] = s

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MarkDay(context.Background(), userID, 4)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, awarder.awarded)
}

func TestService_AwardFailureRearms(t *testing.T) {
	svc, _, awarder, _ := newTestService(wednesday)
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < DaysPerWeek-1; i++ {
		_, err := svc.MarkDay(ctx, userID, i)
		require.NoError(t, err)
	}

	awarder.err = errors.New("db down")
	_, err := svc.MarkDay(ctx, userID, 4)
	require.Error(t, err)
	assert.Equal(t, 0, awarder.awarded)

	awarder.err = nil
	st, err := svc.MarkDay(ctx, userID, 4)
	require.NoError(t, err)
	assert.True(t, st.CelebrationShown)
	assert.Equal(t, 1, awarder.awarded)
}

func TestService_NewWeekAwardsAgain(t *testing.T) {
	svc, _, awarder, _ := newTestService(wednesday)
	userID := uuid.New()
	markWeek(t, svc, userID)

	svc.now = func() time.Time { return nextMon }
	st, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, StateOf(*st))
	require.Len(t, st.History, 1)
	assert.True(t, st.History[0].Completed)

	markWeek(t, svc, userID)
	assert.Equal(t, 2, awarder.awarded)
}

func TestService_MarkToday(t *testing.T) {
	svc, _, _, _ := newTestService(wednesday)
	userID := uuid.New()

	st, err := svc.MarkToday(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, [DaysPerWeek]bool{false, false, true, false, false}, st.WeeklyProgress)

	svc.now = func() time.Time { return sunday }
	st, err = svc.MarkToday(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, [DaysPerWeek]bool{false, false, true, false, false}, st.WeeklyProgress)
}

func TestService_MarkDayRejectsBadIndex(t *testing.T) {
	svc, repo, _, _ := newTestService(wednesday)
	_, err := svc.MarkDay(context.Background(), uuid.New(), 7)
	assert.ErrorIs(t, err, ErrInvalidDay)
	assert.Empty(t, repo.streaks)
}

// staleRepository serves the same snapshot on every Get, as concurrent
// requests that all loaded before any of them saved would see.
type staleRepository struct {
	*memRepository
	snapshot Streak
}

func (r *staleRepository) Get(_ context.Context, _ uuid.UUID) (*Streak, error) {
	s := r.snapshot
	return &s, nil
}

func TestService_StaleMarksForDifferentDaysMerge(t *testing.T) {
	svc, repo, awarder, _ := newTestService(wednesday)
	userID := uuid.New()

	base := New(userID, wednesday, time.UTC)
	repo.streaks[userID] = base
	svc.repo = &staleRepository{memRepository: repo, snapshot: base}

	for i := 0; i < DaysPerWeek; i++ {
		_, err := svc.MarkDay(context.Background(), userID, i)
		require.NoError(t, err)
	}

	stored := repo.streaks[userID]
	assert.Equal(t, [DaysPerWeek]bool{true, true, true, true, true}, stored.WeeklyProgress)
	assert.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CelebrationShown)
	assert.Equal(t, 1, awarder.awarded)
}

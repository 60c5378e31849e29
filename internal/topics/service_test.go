package topics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyink/dailyink/internal/writemode"
)

type fakeSource struct {
	topics map[string]string
	calls  int
}

func (f *fakeSource) TopicFor(_ context.Context, day time.Time, mode writemode.Mode) (*Topic, error) {
	f.calls++
	d := day.Format(dayLayout)
	text, ok := f.topics[d+"/"+string(mode)]
	if !ok {
		return nil, ErrNoTopic
	}
	return &Topic{Day: d, Mode: mode, Topic: text}, nil
}

func setup(t *testing.T) (*Service, *fakeSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	src := &fakeSource{topics: map[string]string{
		"2026-03-04/mode_300":  "first snow",
		"2026-03-04/mode_1000": "a letter to your past self",
	}}
	svc := NewService(NewRedisCache(client, 26*time.Hour), src, time.UTC)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	return svc, src, mr
}

func TestToday_CachesPerDayAndMode(t *testing.T) {
	svc, src, mr := setup(t)
	ctx := context.Background()

	got, err := svc.Today(ctx, writemode.Short)
	require.NoError(t, err)
	assert.Equal(t, "first snow", got.Topic)
	assert.Equal(t, 1, src.calls)
	assert.True(t, mr.Exists("topic:2026-03-04:mode_300"))
	assert.Equal(t, 26*time.Hour, mr.TTL("topic:2026-03-04:mode_300"))

	again, err := svc.Today(ctx, writemode.Short)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, src.calls, "cache hit avoids the source")

	long, err := svc.Today(ctx, writemode.Long)
	require.NoError(t, err)
	assert.Equal(t, "a letter to your past self", long.Topic)
	assert.Equal(t, 2, src.calls)
}

func TestToday_NoTopic(t *testing.T) {
	svc, _, mr := setup(t)
	svc.now = func() time.Time { return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) }

	_, err := svc.Today(context.Background(), writemode.Short)
	assert.ErrorIs(t, err, ErrNoTopic)
	assert.Empty(t, mr.Keys())
}

func TestToday_CacheDownFallsBackToSource(t *testing.T) {
	svc, src, mr := setup(t)
	mr.Close()

	got, err := svc.Today(context.Background(), writemode.Short)
	require.NoError(t, err)
	assert.Equal(t, "first snow", got.Topic)
	assert.Equal(t, 1, src.calls)
}

func TestToday_UsesLocalDay(t *testing.T) {
	svc, _, _ := setup(t)
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	svc.loc = seoul
	// 2026-03-03 20:00 UTC is already March 4th in Seoul.
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 20, 0, 0, 0, time.UTC) }

	got, err := svc.Today(context.Background(), writemode.Short)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", got.Day)
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewRedisCache(client, time.Hour)

	require.NoError(t, mr.Set("topic:2026-03-04:mode_300", "{broken"))
	_, ok, err := cache.Get(context.Background(), time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), writemode.Short)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandler_Today(t *testing.T) {
	svc, _, _ := setup(t)
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.Today(rec, httptest.NewRequest(http.MethodGet, "/api/v1/topics/today?mode=long", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data Topic `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, writemode.Long, body.Data.Mode)

	rec = httptest.NewRecorder()
	h.Today(rec, httptest.NewRequest(http.MethodGet, "/api/v1/topics/today?mode=epic", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyink/dailyink/internal/api"
)

func named(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"handler": name})
	}
}

// requireHeader stands in for auth.Middleware.
func requireHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func stubHandlers() HandlerSet {
	return HandlerSet{
		Register:         named("register"),
		Login:            named("login"),
		Refresh:          named("refresh"),
		Logout:           named("logout"),
		GetBalance:       named("balance"),
		GetHistory:       named("history"),
		UnlockFeedback:   named("unlock"),
		GetStreak:        named("streak"),
		MarkStreak:       named("mark"),
		GetProfile:       named("profile"),
		CreateSubmission: named("submit"),
		ListSubmissions:  named("list"),
		GetSubmission:    named("submission"),
		TodayTopic:       named("topic"),
		AuthMiddleware:   requireHeader,
	}
}

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRouter(Dependencies{Redis: rdb}, cfg, stubHandlers())
}

func do(h http.Handler, method, path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer x")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLiveness(t *testing.T) {
	rec := do(newTestRouter(t, RouterConfig{}), http.MethodGet, "/health/live", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadiness_ReportsEachDependency(t *testing.T) {
	rec := do(newTestRouter(t, RouterConfig{}), http.MethodGet, "/health/ready", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Data["status"])
	assert.Equal(t, "unhealthy", body.Data["database"])
	assert.Equal(t, "healthy", body.Data["redis"])
	assert.Equal(t, "not configured", body.Data["nats"])
}

func TestRoutes_AuthGating(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	public := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/auth/register"},
		{http.MethodPost, "/api/v1/auth/login"},
		{http.MethodPost, "/api/v1/auth/refresh"},
		{http.MethodGet, "/api/v1/topics/today"},
	}
	for _, tc := range public {
		assert.Equal(t, http.StatusOK, do(h, tc.method, tc.path, false).Code, tc.path)
	}

	protected := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/tokens"},
		{http.MethodGet, "/api/v1/tokens/history"},
		{http.MethodPost, "/api/v1/tokens/unlock-feedback"},
		{http.MethodGet, "/api/v1/streak"},
		{http.MethodPost, "/api/v1/streak/days/2"},
		{http.MethodGet, "/api/v1/profile"},
		{http.MethodPost, "/api/v1/submissions"},
		{http.MethodGet, "/api/v1/submissions"},
		{http.MethodGet, "/api/v1/submissions/8b9cad0e-1f7e-4a34-9a53-3f1d2b1f4c11"},
	}
	for _, tc := range protected {
		assert.Equal(t, http.StatusUnauthorized, do(h, tc.method, tc.path, false).Code, tc.path)
		assert.Equal(t, http.StatusOK, do(h, tc.method, tc.path, true).Code, tc.path)
	}
}

func TestRoutes_SubmitLimiterOnlyOnCreate(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	h := newTestRouter(t, RouterConfig{SubmitRateLimiter: deny, AuthRateLimiter: deny})

	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/api/v1/submissions", true).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/submissions", true).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/api/v1/auth/login", false).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/topics/today", false).Code)
}

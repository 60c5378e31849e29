package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mgr := NewJWTManager(testAccessSecret, testRefreshSecret, 15*time.Minute, time.Hour)
	return NewService(mgr, rdb), mr
}

func TestService_RefreshRotates(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()
	id := testIdentity()

	pair, err := svc.GenerateTokens(ctx, id)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)

	next, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Len(t, mr.Keys(), 1)

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshRevoked)
}

func TestService_LogoutRevokesAll(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()
	id := testIdentity()

	first, err := svc.GenerateTokens(ctx, id)
	require.NoError(t, err)
	_, err = svc.GenerateTokens(ctx, id)
	require.NoError(t, err)
	other, err := svc.GenerateTokens(ctx, testIdentity())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, id.UserID.String()))
	assert.Len(t, mr.Keys(), 1)

	_, err = svc.RefreshTokens(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshRevoked)
	_, err = svc.RefreshTokens(ctx, other.RefreshToken)
	assert.NoError(t, err)
}

func TestService_RefreshTTL(t *testing.T) {
	svc, mr := newTestService(t)
	_, err := svc.GenerateTokens(context.Background(), testIdentity())
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, time.Hour, mr.TTL(keys[0]))
}

func TestMiddleware(t *testing.T) {
	svc, _ := newTestService(t)
	id := testIdentity()
	pair, err := svc.GenerateTokens(context.Background(), id)
	require.NoError(t, err)

	var got Identity
	h := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, err = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})
}

func TestIdentityFromContext_Empty(t *testing.T) {
	_, err := IdentityFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentity)

	id := testIdentity()
	got, err := IdentityFromContext(WithIdentity(context.Background(), id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

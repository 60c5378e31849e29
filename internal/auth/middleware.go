package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dailyink/dailyink/internal/api"
)

type contextKey string

const UserClaimsKey contextKey = "user_claims"

// Middleware rejects requests without a valid bearer access token and puts
// the token's claims into the request context.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}

			claims, err := svc.ValidateAccessToken(token)
			if err != nil {
				api.HandleError(w, api.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserClaims(ctx context.Context) *AccessClaims {
	claims, _ := ctx.Value(UserClaimsKey).(*AccessClaims)
	return claims
}

// UserKey keys rate limiting by the authenticated user. It must run behind
// Middleware; requests without claims fall back to fallback.
func UserKey(fallback func(*http.Request) string) func(*http.Request) string {
	return func(r *http.Request) string {
		if claims := GetUserClaims(r.Context()); claims != nil && claims.UserID != "" {
			return "user:" + claims.UserID
		}
		return fallback(r)
	}
}

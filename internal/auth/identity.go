package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNoIdentity = errors.New("no authenticated user in context")

// Identity is the authenticated user as seen by the rest of the application.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Nickname string
}

// IdentityFromContext converts the request claims into an Identity.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	claims := GetUserClaims(ctx)
	if claims == nil {
		return Identity{}, ErrNoIdentity
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, ErrNoIdentity
	}
	return Identity{UserID: id, Email: claims.Email, Nickname: claims.Nickname}, nil
}

// WithIdentity stores claims for id in ctx. Used by tests and internal callers
// that act on behalf of a user without a bearer token.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, UserClaimsKey, &AccessClaims{
		UserID:   id.UserID.String(),
		Email:    id.Email,
		Nickname: id.Nickname,
	})
}

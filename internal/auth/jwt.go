package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "dailyink"

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AccessClaims carries the identity fields downstream handlers need, so
// profile creation never has to look the user up again.
type AccessClaims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Nickname string `json:"nick,omitempty"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Nickname string `json:"nick,omitempty"`
	TokenID  string `json:"tid"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func registered(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    issuer,
	}
}

// GenerateTokenPair signs a new access/refresh pair and returns the refresh
// token id so the caller can record it.
func (m *JWTManager) GenerateTokenPair(id Identity) (*TokenPair, string, error) {
	now := time.Now()
	uid := id.UserID.String()

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID:           uid,
		Email:            id.Email,
		Nickname:         id.Nickname,
		RegisteredClaims: registered(now, m.accessExpiry),
	}).SignedString(m.accessSecret)
	if err != nil {
		return nil, "", fmt.Errorf("signing access token: %w", err)
	}

	tokenID := uuid.NewString()
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		UserID:           uid,
		Email:            id.Email,
		Nickname:         id.Nickname,
		TokenID:          tokenID,
		RegisteredClaims: registered(now, m.refreshExpiry),
	}).SignedString(m.refreshSecret)
	if err != nil {
		return nil, "", fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessExpiry.Seconds()),
	}, tokenID, nil
}

func (m *JWTManager) ValidateAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(tokenStr, claims, m.accessSecret); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	return claims, nil
}

func (m *JWTManager) ValidateRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(tokenStr, claims, m.refreshSecret); err != nil {
		return nil, fmt.Errorf("parsing refresh token: %w", err)
	}
	return claims, nil
}

func parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("token is not valid")
	}
	return nil
}

func (m *JWTManager) RefreshExpiry() time.Duration {
	return m.refreshExpiry
}

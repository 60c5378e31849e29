package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new user. A blank nickname defaults to the email's local part.
func (s *Service) Create(ctx context.Context, email, nickname, passwordHash string) (*User, error) {
	if strings.TrimSpace(nickname) == "" {
		nickname, _, _ = strings.Cut(email, "@")
	}
	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(email),
		Nickname:     strings.TrimSpace(nickname),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

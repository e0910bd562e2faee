package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
)

// AuthService implements the form/session login scheme of the task app.
type AuthService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewAuthService(users ports.UserRepository, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, log: log}
}

// Login verifies the submitted credentials against the stored bcrypt hash.
// Every failure collapses into ErrInvalidCredentials so the response cannot
// reveal whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	s.log.Info().Str("username", user.Username).Msg("login successful")
	return user, nil
}

// EnsureBootstrapUser provisions the configured bootstrap account on first
// start so a fresh deployment accepts a login. Existing accounts are left
// untouched.
func (s *AuthService) EnsureBootstrapUser(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("bootstrap user lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bootstrap user hash: %w", err)
	}

	_, err = s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// Two instances racing on first start is fine.
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("bootstrap user create: %w", err)
	}

	s.log.Info().Str("username", username).Msg("bootstrap user provisioned")
	return nil
}

package ports

import (
	"context"

	"github.com/kpitools/webapps/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// TokenRepository persists externally-issued auth tokens and their role
// mapping. Save supersedes any previous row for the same username; tokens are
// never updated in place.
type TokenRepository interface {
	Save(ctx context.Context, token *domain.AuthToken) error
	// FindByToken returns the stored mapping for an opaque token, or
	// domain.ErrTokenNotFound. Callers re-derive the role on every request;
	// results must never be cached across requests.
	FindByToken(ctx context.Context, token string) (*domain.AuthToken, error)
}

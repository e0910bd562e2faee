package ports

import (
	"context"

	"github.com/kpitools/webapps/internal/core/domain"
)

// AuthService implements the form/session authentication scheme of the task
// application.
type AuthService interface {
	// Login verifies a username/password pair against the stored hash and
	// returns the user. Any failure is domain.ErrInvalidCredentials; the
	// caller never learns which field was wrong.
	Login(ctx context.Context, username, password string) (*domain.User, error)
	// EnsureBootstrapUser provisions the configured bootstrap account when it
	// does not exist yet, so a fresh deployment accepts a first login.
	EnsureBootstrapUser(ctx context.Context, username, password string) error
}

// GateService is the dashboard auth gate: it evaluates a request into a
// closed Decision enumeration that the page router handles exhaustively.
type GateService interface {
	Authorize(ctx context.Context, req AccessRequest) domain.Decision
}

// AccessRequest carries the request attributes the gate inspects.
type AccessRequest struct {
	// Path is the request path, already normalized by the router.
	Path string
	// Code is the opaque code the identity provider appended to the callback
	// request.
	Code string
	// AuthToken and Username are the values of the corresponding cookies;
	// empty when absent.
	AuthToken string
	Username  string
}

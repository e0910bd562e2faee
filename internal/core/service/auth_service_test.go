package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kpitools/webapps/internal/core/domain"
)

type stubUserRepo struct {
	byUsername map[string]*domain.User
	nextID     int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byUsername: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, exists := r.byUsername[u.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *u
	clone.ID = u.Username
	r.byUsername[clone.Username] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byUsername {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func seedUser(t *testing.T, r *stubUserRepo, username, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := r.Create(context.Background(), &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "s3cret")
	svc := NewAuthService(repo, zerolog.Nop())

	user, err := svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Login_GenericFailure(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "s3cret")
	svc := NewAuthService(repo, zerolog.Nop())

	// wrong password, unknown user, and empty fields must all yield the same
	// generic error
	cases := [][2]string{
		{"alice", "wrong"},
		{"ghost", "s3cret"},
		{"", "s3cret"},
		{"alice", ""},
	}
	for _, c := range cases {
		if _, err := svc.Login(context.Background(), c[0], c[1]); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("login(%q, %q): expected ErrInvalidCredentials, got %v", c[0], c[1], err)
		}
	}
}

func TestAuthService_EnsureBootstrapUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, zerolog.Nop())

	if err := svc.EnsureBootstrapUser(context.Background(), "testuser", "password123"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := svc.Login(context.Background(), "testuser", "password123"); err != nil {
		t.Fatalf("login after bootstrap: %v", err)
	}

	// second call must be a no-op, not an error
	if err := svc.EnsureBootstrapUser(context.Background(), "testuser", "otherpass"); err != nil {
		t.Fatalf("repeat bootstrap: %v", err)
	}
	if _, err := svc.Login(context.Background(), "testuser", "password123"); err != nil {
		t.Fatalf("original password must survive repeat bootstrap: %v", err)
	}
}

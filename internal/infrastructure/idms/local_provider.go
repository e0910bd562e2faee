package idms

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kpitools/webapps/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

// LocalProvider stands in for the external IDMS during development. It mints
// and verifies HS256 tokens itself; the callback code doubles as the username.
type LocalProvider struct {
	secret   string
	role     string
	tokenTTL time.Duration
}

func NewLocalProvider(secret, role string, tokenTTL time.Duration) *LocalProvider {
	if tokenTTL == 0 {
		tokenTTL = defaultTokenTTL
	}
	return &LocalProvider{secret: secret, role: role, tokenTTL: tokenTTL}
}

func (p *LocalProvider) Exchange(_ context.Context, code string) (*ports.TokenGrant, error) {
	if code == "" {
		return nil, fmt.Errorf("exchange code: empty code")
	}

	claims := jwt.MapClaims{
		"username": code,
		"role":     p.role,
		"exp":      time.Now().Add(p.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ports.TokenGrant{Token: token, Username: code, Role: p.role}, nil
}

func (p *LocalProvider) Validate(_ context.Context, token string) (bool, error) {
	tkn, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(p.secret), nil
	})
	if err != nil {
		return false, nil
	}
	return tkn.Valid, nil
}

package ports

import "context"

// TokenGrant is the result of exchanging a login callback code with the
// identity provider.
type TokenGrant struct {
	Token    string
	Username string
	Role     string
}

// IdentityProvider abstracts the external IDMS that issues auth tokens via
// browser redirect.
type IdentityProvider interface {
	// Exchange redeems the callback code for an auth token grant.
	Exchange(ctx context.Context, code string) (*TokenGrant, error)
	// Validate asks the provider whether the token is still valid. A false
	// result with a nil error means the token is expired or revoked.
	Validate(ctx context.Context, token string) (bool, error)
}

package ports

import "context"

// SessionIdentity is the server-side state referenced by a session cookie.
type SessionIdentity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Flash is a one-shot user-visible message carried across a redirect.
// Category follows the usual bootstrap levels: success, info, warning, danger.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SessionStore keeps authenticated sessions server-side. The cookie holds
// only the opaque session id.
type SessionStore interface {
	Create(ctx context.Context, identity SessionIdentity) (string, error)
	// Get returns the identity for a session id, or domain.ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*SessionIdentity, error)
	// Delete tears a session down. Deleting an absent session is a no-op.
	Delete(ctx context.Context, sessionID string) error
	AddFlash(ctx context.Context, sessionID string, flash Flash) error
	// PopFlashes returns and clears the pending flashes for a session.
	PopFlashes(ctx context.Context, sessionID string) ([]Flash, error)
}

// PageCache is the dashboard's short-lived page-fragment cache. It is a pure
// performance optimization: any entry may be dropped at any time and both
// methods are best-effort.
type PageCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, html string)
}

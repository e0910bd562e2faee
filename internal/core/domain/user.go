package domain

import "time"

// User models an account able to own tasks. Created at provisioning time and
// immutable afterwards except for the password hash.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthToken is an opaque credential issued by the external identity provider
// and mapped to a username and role. Tokens are written once on a successful
// login callback and only ever superseded, never mutated.
type AuthToken struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

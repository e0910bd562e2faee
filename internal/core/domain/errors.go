package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials covers any bad username/password pair. The message
	// is deliberately generic: it never reveals which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTokenNotFound      = errors.New("auth token not found")

	ErrTaskNotFound = errors.New("task not found")
	// ErrForbidden signals an ownership violation. The true owner is never
	// disclosed to the caller.
	ErrForbidden = errors.New("access forbidden")
	// ErrInvalidState signals the completed-before-delete guard.
	ErrInvalidState = errors.New("task must be marked as completed before deletion")
)

// FieldError is a single itemized validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field validation messages that are safe to show
// to the end user.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError and
// returns it when so.
func IsValidation(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return ValidationError{}, false
}

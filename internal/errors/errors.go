// Package errors defines the error taxonomy shared by all layers.
// Handlers translate these into HTTP status codes; nothing below the API
// layer knows about HTTP.
package errors

import (
	"errors"
	"fmt"
)

// ErrLinkNotFound is returned when a short code or link id doesn't exist.
var ErrLinkNotFound = errors.New("link not found")

// ErrLinkExpired is returned when a link is past its expiration date.
var ErrLinkExpired = errors.New("link has expired")

// ErrAliasTaken is returned when the store rejects a short code or alias
// because of its unique index.
var ErrAliasTaken = errors.New("alias already exists")

// ErrNotOwner is returned when a user requests analytics for a link that
// belongs to someone else.
var ErrNotOwner = errors.New("not authorized to view this link")

// ErrEmailTaken is returned when registering with an email that already has
// an account.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned on login with a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrShortCodeGenerationFailed is returned when we can't generate a unique
// short code after the maximum number of retries.
var ErrShortCodeGenerationFailed = errors.New("failed to generate unique short code")

// ValidationError reports malformed user input. The message is safe to show
// to the client as-is.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...any) ValidationError {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

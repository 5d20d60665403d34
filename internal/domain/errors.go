// Package domain holds the error taxonomy shared by every layer of the
// authentication subsystem. Infrastructure adapters return these values
// (optionally wrapped) and the application layer matches them with errors.Is.
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateAccount      = errors.New("duplicate account")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrWrongAuthMethod       = errors.New("account uses a different auth method")
	ErrBackendUnreachable    = errors.New("identity backend unreachable")
	ErrBackendRejected       = errors.New("identity backend rejected request")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrWrongProvider         = errors.New("assertion provider mismatch")
	ErrAccountNotFound       = errors.New("account not found")
	ErrValidation            = errors.New("validation failed")
	ErrSessionNotFound       = errors.New("session not found")
)

// ValidationError reports a rejected input field. Its message is safe to show
// to end users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Rejected wraps sentinel with ErrBackendRejected and a backend reason code so
// both errors.Is(err, ErrBackendRejected) and errors.Is(err, sentinel) hold.
func Rejected(sentinel error, reason string) error {
	if sentinel == nil {
		return fmt.Errorf("%w: %s", ErrBackendRejected, reason)
	}
	return fmt.Errorf("%w: %w: %s", ErrBackendRejected, sentinel, reason)
}

// UserMessage maps an error to a stable message that never carries backend
// text, stack traces or hash material.
func UserMessage(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrDuplicateAccount):
		return "User with this email already exists"
	case errors.Is(err, ErrWrongAuthMethod):
		return "This account signs in with a different method"
	case errors.Is(err, ErrWrongProvider):
		return "Unsupported sign-in provider"
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return "Invalid or expired token"
	case errors.Is(err, ErrBackendUnreachable):
		return "Authentication service is temporarily unavailable"
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountNotFound):
		return "Invalid email or password"
	default:
		return "Authentication failed"
	}
}

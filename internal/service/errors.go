package service

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail       = errors.New("email is already registered")
	ErrAuthenticationFailed = errors.New("invalid email or password")
	// ErrNotFoundOrNotOwned does not say which of the two applies, so other
	// users' record ids are not revealed.
	ErrNotFoundOrNotOwned = errors.New("not found (or not owned by you)")
	ErrUnknownExercise    = errors.New("unknown exercise id")
	ErrUnknownFood        = errors.New("unknown food id")
	ErrInvalidSearchMode  = errors.New("invalid search mode")
	ErrNoSession          = errors.New("not logged in")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

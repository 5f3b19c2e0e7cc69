// Package apperrors defines the error kinds every operation returns.
// Handlers map kinds to HTTP statuses; services wrap them with
// context using fmt.Errorf and %w so errors.Is keeps working.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrExpired         = errors.New("expired")
)

// Wrap attaches a message to a kind: errors.Is(Wrap(ErrNotFound, "task"), ErrNotFound) == true.
func Wrap(kind error, msg string) error {
	return fmt.Errorf("%s: %w", msg, kind)
}

// Wrapf is Wrap with formatting.
func Wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, kind)...)
}

// Is re-exports errors.Is so callers need only one import.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}

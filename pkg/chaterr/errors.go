// Package chaterr defines the error taxonomy shared by the chat client.
// Callers classify failures with errors.Is against the sentinels below.
package chaterr

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers REST and live-transport failures.
	ErrNetwork = errors.New("network failure")

	// ErrValidation covers bad user input, e.g. an empty room name.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound covers absent rooms and members.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation covers operations the domain forbids, e.g.
	// leaving a private room.
	ErrInvalidOperation = errors.New("operation not allowed")

	// ErrInvalidState covers operations attempted outside their valid
	// session or connection state.
	ErrInvalidState = errors.New("invalid state")
)

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}

func Network(format string, args ...any) error {
	return wrap(ErrNetwork, format, args...)
}

func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func InvalidOperation(format string, args ...any) error {
	return wrap(ErrInvalidOperation, format, args...)
}

func InvalidState(format string, args ...any) error {
	return wrap(ErrInvalidState, format, args...)
}

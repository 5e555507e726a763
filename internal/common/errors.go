// Package common defines shared constants and sentinel errors used across
// client and server layers of Kontakta. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Wrap with context identifying the field class,
	// never the submitted credential itself.
	ErrValidation = errors.New("validation error")

	// Signup conflict: the login identifier is already taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrStoreUnavailable means the credential store could not be reached
	// after exhausting connection retries. It is deliberately distinct from
	// ErrorUnauthorized: a flaky store must never be reported to the caller
	// as an invalid session.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrServerUnavailable is the client-side counterpart: the backend did
	// not answer at all. A rejected token and an unreachable server are
	// different conditions and must not be conflated.
	ErrServerUnavailable = errors.New("server unavailable")
)

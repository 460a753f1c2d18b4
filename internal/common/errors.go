// Package common defines shared constants and sentinel errors used across
// client and server layers of credkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Credential verification outcomes.
	ErrValidation         = errors.New("validation error")
	ErrNotFoundOrInactive = errors.New("authentication failed")
	ErrLocked             = errors.New("account temporarily locked")
	ErrMismatch           = errors.New("authentication failed")
	ErrCipherFailure      = errors.New("cipher failure")
	ErrPersistence        = errors.New("persistence failure")
	ErrAttemptInProgress  = errors.New("concurrent attempt in progress")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

package client

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrLocked         = errors.New("account temporarily locked")
	ErrBusy           = errors.New("another attempt for this account is in progress")
	ErrInvalidRequest = errors.New("invalid request")
)

// LockedError matches ErrLocked and carries the delay the server asked for.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	if e.RetryAfter <= 0 {
		return ErrLocked.Error()
	}
	return fmt.Sprintf("%v, retry in %v", ErrLocked, e.RetryAfter)
}

func (e *LockedError) Unwrap() error { return ErrLocked }

package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/lockout"
)

// ValidationError reports a malformed request field. It matches
// common.ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Field + " is required"
	}
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// LockedError is returned while a credential is blocked. It matches
// common.ErrLocked.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%v, retry in %ds", common.ErrLocked, e.RemainingSeconds())
}

func (e *LockedError) Unwrap() error { return common.ErrLocked }

// RemainingSeconds rounds up, so a caller never retries early.
func (e *LockedError) RemainingSeconds() int64 {
	return lockout.Decision{Blocked: true, Remaining: e.Remaining}.RemainingSeconds()
}

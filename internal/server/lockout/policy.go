// Package lockout decides whether a credential check may proceed given the
// recent failure history of a user.
package lockout

import (
	"math"
	"time"
)

// Policy blocks checks once Limit consecutive failures have been recorded,
// until Window has passed since the last one.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of Policy.Decide. The zero value allows the check.
type Decision struct {
	Blocked   bool
	Remaining time.Duration
}

// RemainingSeconds rounds the remaining block time up to whole seconds.
func (d Decision) RemainingSeconds() int64 {
	if !d.Blocked || d.Remaining <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Remaining.Seconds()))
}

// Decide is pure: it never reads the clock and never mutates its inputs.
//
// Counts below Limit are always allowed, so sub-threshold failures still reach
// the secret comparison. A missing lastFailureAt alongside a count at or above
// Limit is treated as "just now", which keeps the block in place for a full
// Window.
func (p Policy) Decide(failureCount *int, lastFailureAt *time.Time, now time.Time) Decision {
	if failureCount == nil || *failureCount < p.Limit {
		return Decision{}
	}

	last := now
	if lastFailureAt != nil {
		last = *lastFailureAt
	}

	elapsed := now.Sub(last)
	if elapsed < p.Window {
		return Decision{Blocked: true, Remaining: p.Window - elapsed}
	}

	return Decision{}
}

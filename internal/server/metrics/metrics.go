// Package metrics records credential attempt outcomes with OpenTelemetry.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	OutcomeSuccess     = "success"
	OutcomeValidation  = "validation"
	OutcomeNotFound    = "not_found"
	OutcomeLocked      = "locked"
	OutcomeMismatch    = "mismatch"
	OutcomeCipher      = "cipher"
	OutcomePersistence = "persistence"
	OutcomeBusy        = "busy"
	OutcomeError       = "error"
)

// Outcome classifies the result of an attempt.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, common.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, common.ErrNotFoundOrInactive):
		return OutcomeNotFound
	case errors.Is(err, common.ErrLocked):
		return OutcomeLocked
	case errors.Is(err, common.ErrMismatch):
		return OutcomeMismatch
	case errors.Is(err, common.ErrCipherFailure):
		return OutcomeCipher
	case errors.Is(err, common.ErrPersistence):
		return OutcomePersistence
	case errors.Is(err, common.ErrAttemptInProgress):
		return OutcomeBusy
	default:
		return OutcomeError
	}
}

// Recorder holds the instruments. A nil *Recorder records nothing.
type Recorder struct {
	attempts metric.Int64Counter
	changes  metric.Int64Counter
	duration metric.Float64Histogram
}

func NewRecorder(meter metric.Meter) (*Recorder, error) {
	attempts, err := meter.Int64Counter("credkeeper.verify.attempts",
		metric.WithDescription("Credential verification attempts by type and outcome"))
	if err != nil {
		return nil, err
	}
	changes, err := meter.Int64Counter("credkeeper.password.changes",
		metric.WithDescription("Password change requests by outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("credkeeper.verify.duration",
		metric.WithDescription("Credential verification latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Recorder{attempts: attempts, changes: changes, duration: duration}, nil
}

func (r *Recorder) VerifyAttempt(ctx context.Context, credentialType string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("credential_type", credentialType),
		attribute.String("outcome", Outcome(err)),
	)
	r.attempts.Add(ctx, 1, attrs)
	r.duration.Record(ctx, elapsed.Seconds(), attrs)
}

func (r *Recorder) PasswordChange(ctx context.Context, err error) {
	if r == nil {
		return
	}
	r.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", Outcome(err))))
}

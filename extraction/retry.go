package extraction

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxAttempts is the number of model calls made before falling back.
const DefaultMaxAttempts = 3

// Outcome classifies a single extraction attempt.
type Outcome int

const (
	// OutcomeValid means the reply parsed and matched the schema.
	OutcomeValid Outcome = iota
	// OutcomeCallFailed means the chat call itself returned an error.
	OutcomeCallFailed
	// OutcomeParseFailed means neither the raw reply nor its scanned object parsed as JSON.
	OutcomeParseFailed
	// OutcomeInvalidShape means the reply parsed but did not match the schema.
	OutcomeInvalidShape
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeCallFailed:
		return "call_failed"
	case OutcomeParseFailed:
		return "parse_failed"
	case OutcomeInvalidShape:
		return "invalid_shape"
	}
	return "unknown"
}

// RetryPolicy bounds the extraction state machine.
type RetryPolicy struct {
	// MaxAttempts is the total number of model calls, including the first.
	MaxAttempts int

	// Backoff produces the delay schedule between attempts. A fresh BackOff is
	// requested for each extraction. backoff.Stop ends retrying early.
	// Nil means no delay.
	Backoff func() backoff.BackOff
}

// DefaultRetryPolicy returns three attempts separated by a short exponential delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 250 * time.Millisecond
			bo.MaxInterval = 2 * time.Second
			// Attempts are bounded by MaxAttempts, not elapsed time.
			bo.MaxElapsedTime = 0
			return bo
		},
	}
}

// Validate checks the policy can drive at least one attempt.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	return nil
}

func (p RetryPolicy) newBackOff() backoff.BackOff {
	if p.Backoff == nil {
		return &backoff.ZeroBackOff{}
	}
	return p.Backoff()
}

// wait sleeps for d or until ctx is done. Reports whether the full delay elapsed.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	// Sleep with context awareness
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

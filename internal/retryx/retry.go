// Package retryx wraps sethvargo/go-retry behind a small policy value
// object, so components that need bounded retries (the store connection
// layer first of all) can be tested with millisecond delays instead of
// real-time waits.
package retryx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy describes a bounded fixed-delay retry schedule.
//
// Attempts counts the first try: Attempts=3 means one try plus at most two
// retries. A zero value behaves as a single attempt.
type Policy struct {
	Attempts uint64
	Delay    time.Duration
}

func (p Policy) backoff() retry.Backoff {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}
	delay := p.Delay
	if delay <= 0 {
		delay = time.Nanosecond
	}
	return retry.WithMaxRetries(attempts-1, retry.NewConstant(delay))
}

// Do runs op under the policy, sleeping Delay between attempts. Every error
// from op is considered retryable; context cancellation stops the schedule
// early. The error from the final attempt is returned.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		// unwrap the retryable marker so callers match the original error
		if u, ok := err.(interface{ Unwrap() error }); ok {
			if inner := u.Unwrap(); inner != nil {
				return inner
			}
		}
	}
	return err
}

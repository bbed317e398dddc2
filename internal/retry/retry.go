// Package retry provides the backoff policy applied to every oracle
// call. It is deliberately transport-agnostic so tests can exercise the
// policy against stub functions instead of a live API.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy describes a bounded exponential backoff with jitter.
// MaxAttempts counts the initial attempt, so MaxAttempts=3 means at
// most two retries.
type Policy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	JitterPercent uint64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   3,
		BaseDelay:     2 * time.Second,
		MaxDelay:      30 * time.Second,
		JitterPercent: 10,
	}
}

// RetryableError marks err as retryable for Do. Unmarked errors stop
// the loop immediately.
func RetryableError(err error) error {
	return retry.RetryableError(err)
}

// Do runs fn under the policy, sleeping between attempts. It returns
// the last error once attempts are exhausted, fn returns a
// non-retryable error, or ctx is done.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	backoff := retry.NewExponential(base)
	if p.JitterPercent > 0 {
		backoff = retry.WithJitterPercent(p.JitterPercent, backoff)
	}
	if p.MaxDelay > 0 {
		backoff = retry.WithCappedDuration(p.MaxDelay, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff)

	return retry.Do(ctx, backoff, fn)
}

// Package resilience guards outbound Slack calls: retries for transient
// failures and a circuit breaker so a workspace outage does not turn every
// tool call into a slow failure.
package resilience

import (
	"context"
	"time"
)

// Policy configures retry behavior.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the first retry; it doubles per attempt.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// DefaultPolicy suits interactive tool calls: a few quick retries with a
// bounded total wait.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
}

// Retryer retries an operation while the classifier deems its failure worth
// another attempt. A delay hint (a rate limit's Retry-After) overrides the
// computed backoff for that attempt.
type Retryer struct {
	policy    Policy
	retryable func(error) bool
	delayHint func(error) (time.Duration, bool)
}

// NewRetryer creates a retryer. retryable decides which errors are retried;
// delayHint may be nil when no error carries its own wait time.
func NewRetryer(policy Policy, retryable func(error) bool, delayHint func(error) (time.Duration, bool)) *Retryer {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if retryable == nil {
		retryable = func(error) bool { return false }
	}
	if delayHint == nil {
		delayHint = func(error) (time.Duration, bool) { return 0, false }
	}
	return &Retryer{
		policy:    policy,
		retryable: retryable,
		delayHint: delayHint,
	}
}

// Do runs fn until it succeeds, fails permanently, or the attempt budget is
// spent. Context cancellation interrupts the backoff wait.
func (r *Retryer) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.backoff(attempt)
			if hint, ok := r.delayHint(err); ok {
				delay = hint
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err = fn()
		if err == nil || !r.retryable(err) {
			return err
		}
	}
	return err
}

// backoff doubles the base delay per attempt, capped at MaxDelay.
func (r *Retryer) backoff(attempt int) time.Duration {
	delay := r.policy.BaseDelay << (attempt - 1)
	if delay > r.policy.MaxDelay || delay <= 0 {
		delay = r.policy.MaxDelay
	}
	return delay
}

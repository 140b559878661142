// Package retry provides a small immutable backoff policy for transient
// failures against external systems.
package retry

import (
	"context"
	"time"
)

// BackoffMode selects how the delay grows between attempts.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// Policy encapsulates retry/backoff settings. Immutable after construction.
type Policy struct {
	Mode       BackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int
}

// DefaultPolicy returns a linear policy: 1s initial, 30s cap, 2 retries.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// Delay returns the backoff delay before the given retry attempt (1-based).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case BackoffFixed:
		d = p.Initial
	case BackoffExponential:
		d = p.Initial << (retryCount - 1)
	default:
		d = p.Initial * time.Duration(retryCount)
	}
	if d > p.Max {
		return p.Max
	}
	return d
}

// Do runs fn up to 1+MaxRetries times, sleeping per the policy between
// attempts. The last error is returned; context cancellation stops early.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= p.MaxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(p.Delay(attempt + 1)):
		}
	}
}

// Package backoff wraps idempotent store writes with capped exponential
// backoff. It is deliberately separate from the quota transaction path:
// retrying a transactional increment could double-count if a commit
// succeeded but the response was lost, so quota calls are single-shot.
package backoff

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

const (
	DefaultAttempts = 3
	DefaultBase     = 100 * time.Millisecond

	maxExponent = 10
	maxBackoff  = 5 * time.Second
)

// Do runs fn up to attempts times. Between failures it sleeps an
// exponentially growing, fully jittered interval, respecting ctx.
// Business errors and context errors are returned immediately; only
// transient-looking failures are retried.
func Do(ctx context.Context, attempts int, base time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitteredBackoff(base, attempt)):
		}
	}
	return lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Business outcomes are stable; retrying cannot change them.
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrBadParams),
		errors.Is(err, domain.ErrNotAuthenticated):
		return false
	}
	return true
}

// jitteredBackoff returns a random duration in [0, base*2^attempt],
// capped. Full jitter keeps concurrent retries from synchronizing.
func jitteredBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = DefaultBase
	}
	if attempt > maxExponent {
		attempt = maxExponent
	}

	ceiling := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if ceiling > maxBackoff {
		ceiling = maxBackoff
	}
	return time.Duration(rand.Float64() * float64(ceiling))
}

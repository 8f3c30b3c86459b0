package loader

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
)

// RetryConfig controls how a failed load is retried.
type RetryConfig struct {
	// MaxAttempts is the maximum number of loader calls per load, including
	// the first. Values <= 1 mean no retries.
	MaxAttempts int

	// BaseDelay is the delay before the first retry. Later retries double it.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay.
	MaxDelay time.Duration

	// Jitter adds up to +/- Jitter of the computed delay. Zero disables it.
	Jitter float64

	// Retryable decides whether err is worth another attempt. When nil, errors
	// classified retryable by github.com/jmgilman/go/errors are retried
	// (timeouts, network, unavailable, rate limit, database).
	Retryable func(err error) bool
}

func (c RetryConfig) retryable(err error) bool {
	if c.Retryable != nil {
		return c.Retryable(err)
	}
	return platformerrors.GetClassification(err).IsRetryable()
}

// retry calls fn up to cfg.MaxAttempts times with exponential back-off. The
// context is checked while waiting; if ctx is done the context error is
// returned.
func retry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	for i := range attempts {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if i == attempts-1 || !cfg.retryable(err) {
			return zero, err
		}

		timer := time.NewTimer(backoff(cfg, i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, nil
}

// backoff returns the delay after the given attempt (0-indexed), capped at
// cfg.MaxDelay.
func backoff(cfg RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if cfg.MaxDelay > 0 {
		delay = min(delay, float64(cfg.MaxDelay))
	}
	if cfg.Jitter > 0 {
		delay += delay * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(delay, 0))
}

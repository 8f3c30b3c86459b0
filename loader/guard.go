// Package loader protects the backend behind region.GetOrLoad.
//
// Guard wraps a region.Loader with, from the outside in: a token-bucket rate
// limit, a circuit breaker, and retries with exponential back-off. Each layer
// is optional. Because GetOrLoad already collapses concurrent misses for one
// key into one loader call, these limits apply to distinct keys.
package loader

import (
	"context"
	"fmt"

	"github.com/Keksclan/rawrcache/region"
	"github.com/go-logr/logr"
	platformerrors "github.com/jmgilman/go/errors"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the loader rate limit cannot be satisfied
// before the context ends.
var ErrRateLimited = platformerrors.New(platformerrors.CodeRateLimit, "cache loader rate limit exceeded")

// Option configures Guard.
type Option func(*guard)

type guard struct {
	log     logr.Logger
	limiter *rate.Limiter
	breaker *Breaker
	retry   *RetryConfig
}

// WithLogger logs breaker transitions and exhausted retries.
func WithLogger(l logr.Logger) Option {
	return func(g *guard) { g.log = l }
}

// WithRateLimit allows rps loader calls per second with the given burst.
// Callers wait for a token until their context ends.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *guard) { g.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithBreaker fails loads fast with ErrBreakerOpen while b is open.
func WithBreaker(b *Breaker) Option {
	return func(g *guard) { g.breaker = b }
}

// WithRetry retries failed loads.
func WithRetry(cfg RetryConfig) Option {
	return func(g *guard) { g.retry = &cfg }
}

// Guard wraps next with the configured protections.
func Guard[K comparable, V any](next region.Loader[K, V], opts ...Option) region.Loader[K, V] {
	g := &guard{log: logr.Discard()}
	for _, opt := range opts {
		opt(g)
	}
	if g.breaker != nil {
		log := g.log
		g.breaker.mu.Lock()
		g.breaker.onChange = func(from, to State) {
			log.Info("cache loader breaker changed state", "from", from, "to", to)
		}
		g.breaker.mu.Unlock()
	}

	return func(ctx context.Context, key K) (V, error) {
		var zero V
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return zero, fmt.Errorf("%w: %w", ErrRateLimited, err)
			}
		}
		if g.breaker != nil && !g.breaker.Allow() {
			return zero, ErrBreakerOpen
		}

		var (
			v   V
			err error
		)
		if g.retry != nil {
			v, err = retry(ctx, *g.retry, func(ctx context.Context) (V, error) { return next(ctx, key) })
		} else {
			v, err = next(ctx, key)
		}

		if g.breaker != nil {
			if err != nil {
				g.breaker.OnFailure()
			} else {
				g.breaker.OnSuccess()
			}
		}
		if err != nil {
			g.log.V(1).Info("cache load failed", "key", key, "error", err.Error())
		}
		return v, err
	}
}

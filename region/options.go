package region

import (
	"time"

	"github.com/Keksclan/rawrcache/tracing"
	"github.com/go-logr/logr"
)

// Option configures a Region at construction.
type Option func(*options)

type options struct {
	logger       logr.Logger
	now          func() time.Time
	observer     Observer
	reapInterval time.Duration
	tracing      *tracing.Config
}

func defaultOptions() options {
	return options{
		logger:   logr.Discard(),
		now:      time.Now,
		observer: nopObserver{},
	}
}

// WithLogger sets the logger. Eviction pressure and reaper sweeps are logged
// at V(1).
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithObserver receives hit, miss, eviction, expiry and load events.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithReapInterval starts a background goroutine that purges expired entries
// every d. Zero or negative disables it; lazy expiry on read still applies.
func WithReapInterval(d time.Duration) Option {
	return func(o *options) { o.reapInterval = d }
}

// WithTracing enables spans around GetOrLoad.
func WithTracing(cfg *tracing.Config) Option {
	return func(o *options) { o.tracing = cfg }
}

package rawrcache

import (
	"time"

	"github.com/Keksclan/rawrcache/profile"
	"github.com/Keksclan/rawrcache/region"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Registry.
type Option func(*config)

// WithLogger sets the logger for the registry and every region it creates.
func WithLogger(l logr.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithDefaultConfig sets the region configuration used by Adapter and
// GetOrCreateDefault when no explicit configuration is given.
func WithDefaultConfig(cfg region.Config) Option {
	return func(c *config) { c.defaultConfig = cfg }
}

// WithProfiles selects the configuration for GetOrCreateDefault by
// namespace. Namespaces no profile matches use the default configuration.
func WithProfiles(res *profile.Resolver) Option {
	return func(c *config) { c.profiles = res }
}

// WithReapInterval starts a background purge of expired entries in every
// region, once per d.
func WithReapInterval(d time.Duration) Option {
	return func(c *config) { c.reapInterval = d }
}

// WithClock replaces time.Now in every region. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithMetrics registers a metrics.Collector for the registry with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}

// WithTracerProvider enables GetOrLoad spans using tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tracerProvider = tp }
}

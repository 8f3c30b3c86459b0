package rawrcache

import (
	"time"

	"github.com/Keksclan/rawrcache/profile"
	"github.com/Keksclan/rawrcache/region"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// config holds the internal configuration assembled via functional options.
type config struct {
	logger         logr.Logger
	defaultConfig  region.Config
	profiles       *profile.Resolver
	reapInterval   time.Duration
	now            func() time.Time
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
}

func newConfig(opts []Option) config {
	c := config{
		logger:        logr.Discard(),
		defaultConfig: region.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

package rawrcache

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Keksclan/rawrcache/eviction"
	"github.com/Keksclan/rawrcache/metrics"
	"github.com/Keksclan/rawrcache/region"
	"github.com/Keksclan/rawrcache/tracing"
	"github.com/go-logr/logr"
	platformerrors "github.com/jmgilman/go/errors"
)

var (
	// ErrInvalidNamespace is returned for an empty or blank namespace.
	ErrInvalidNamespace = region.ErrInvalidNamespace
	// ErrUnsupportedPolicy is returned for an unknown eviction policy name.
	ErrUnsupportedPolicy = eviction.ErrUnsupportedPolicy
	// ErrClosed is returned by GetOrCreate after Close.
	ErrClosed = platformerrors.New(platformerrors.CodeInternal, "cache registry closed")
)

// Registry maps namespaces to regions. A region is created the first time its
// namespace is requested, with the configuration passed at that moment, and
// lives until the registry is closed. Two requests for the same namespace
// always return the same region.
type Registry[K comparable, V any] struct {
	cfg        config
	log        logr.Logger
	regionOpts []region.Option
	collector  *metrics.Collector

	mu      sync.Mutex
	regions map[string]*region.Region[K, V]
	closed  bool
}

// NewRegistry creates an empty registry. It fails only when WithMetrics is
// given and the collector cannot be registered.
func NewRegistry[K comparable, V any](opts ...Option) (*Registry[K, V], error) {
	cfg := newConfig(opts)
	r := &Registry[K, V]{
		cfg:     cfg,
		log:     cfg.logger.WithName("rawrcache"),
		regions: make(map[string]*region.Region[K, V]),
	}

	r.regionOpts = []region.Option{
		region.WithLogger(r.log),
		region.WithReapInterval(cfg.reapInterval),
		region.WithClock(cfg.now),
	}
	if cfg.tracerProvider != nil {
		r.regionOpts = append(r.regionOpts, region.WithTracing(&tracing.Config{TracerProvider: cfg.tracerProvider}))
	}
	if cfg.registerer != nil {
		r.collector = metrics.NewCollector(r.Sizes)
		if err := cfg.registerer.Register(r.collector); err != nil {
			return nil, fmt.Errorf("register cache metrics: %w", err)
		}
		r.regionOpts = append(r.regionOpts, region.WithObserver(r.collector))
	}
	return r, nil
}

// GetOrCreate returns the region for namespace, creating it with cfg if it
// does not exist yet. cfg is ignored when the region already exists.
func (r *Registry[K, V]) GetOrCreate(namespace string, cfg region.Config) (*region.Region[K, V], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if reg, ok := r.regions[namespace]; ok {
		return reg, nil
	}

	reg, err := region.New[K, V](namespace, cfg, r.regionOpts...)
	if err != nil {
		return nil, fmt.Errorf("create cache %q: %w", namespace, err)
	}
	r.regions[namespace] = reg

	c := reg.Config()
	r.log.Info("created cache region",
		"namespace", namespace,
		"timeToLive", c.TimeToLive,
		"timeToIdle", c.TimeToIdle,
		"capacity", c.Capacity(),
		"policy", c.EvictionPolicy,
	)
	return reg, nil
}

// GetOrCreateDefault is GetOrCreate with the configuration of the profile
// matching namespace, or the registry's default configuration.
func (r *Registry[K, V]) GetOrCreateDefault(namespace string) (*region.Region[K, V], error) {
	cfg := r.cfg.defaultConfig
	if name, pcfg, ok := r.cfg.profiles.Resolve(namespace); ok {
		r.log.V(1).Info("resolved cache profile", "namespace", namespace, "profile", name)
		cfg = pcfg
	}
	return r.GetOrCreate(namespace, cfg)
}

// Region returns the region for namespace without creating it.
func (r *Registry[K, V]) Region(namespace string) (*region.Region[K, V], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regions[namespace]
	return reg, ok
}

// Namespaces returns the names of all regions in sorted order.
func (r *Registry[K, V]) Namespaces() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.regions))
	for ns := range r.regions {
		names = append(names, ns)
	}
	r.mu.Unlock()
	slices.Sort(names)
	return names
}

// Sizes returns the entry count of every region.
func (r *Registry[K, V]) Sizes() map[string]int {
	r.mu.Lock()
	regions := make([]*region.Region[K, V], 0, len(r.regions))
	for _, reg := range r.regions {
		regions = append(regions, reg)
	}
	r.mu.Unlock()

	sizes := make(map[string]int, len(regions))
	for _, reg := range regions {
		sizes[reg.Namespace()] = reg.Size()
	}
	return sizes
}

// Close stops every region's reaper and unregisters the metrics collector.
// Regions stay usable for reads and writes. Close is idempotent.
func (r *Registry[K, V]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	regions := make([]*region.Region[K, V], 0, len(r.regions))
	for _, reg := range r.regions {
		regions = append(regions, reg)
	}
	r.mu.Unlock()

	var errs []error
	for _, reg := range regions {
		errs = append(errs, reg.Close())
	}
	if r.collector != nil {
		r.cfg.registerer.Unregister(r.collector)
	}
	r.log.V(1).Info("registry closed", "regions", len(regions))
	return errors.Join(errs...)
}

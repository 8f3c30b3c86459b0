// Package region implements a single named cache region: a bounded key/value
// store with LRU, LFU or FIFO eviction and independent time-to-live and
// time-to-idle expiry.
//
// Expiry is lazy. An expired entry is removed when it is next read, replaced
// or removed, or by the optional background reaper. Until then it still counts
// towards Size.
package region

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Keksclan/rawrcache/eviction"
	"github.com/Keksclan/rawrcache/expiry"
	"github.com/Keksclan/rawrcache/internal/store"
	"github.com/go-logr/logr"
	platformerrors "github.com/jmgilman/go/errors"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// ErrInvalidNamespace is returned when a region is requested with an empty or
// blank namespace.
var ErrInvalidNamespace = platformerrors.New(platformerrors.CodeInvalidInput, "cache instances require a namespace")

// Region is a concurrency-safe cache region. All methods may be called from
// multiple goroutines; a single mutex serialises every read and write.
type Region[K comparable, V any] struct {
	namespace string

	mu     sync.Mutex
	cfg    Config
	policy expiry.Policy
	store  *store.Store[K, V]
	queue  *eviction.Queue[*store.Entry[K, V]]
	stats  Stats

	log      logr.Logger
	obs      Observer
	now      func() time.Time
	tracer   trace.Tracer
	pressure rate.Sometimes

	loadMu sync.Mutex
	loads  map[K]*call[V]

	// Reaper ownership.
	reapEvery time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closed    bool
}

// New creates a region. It fails with ErrInvalidNamespace for a blank
// namespace and with eviction.ErrUnsupportedPolicy for an unknown policy.
func New[K comparable, V any](namespace string, cfg Config, opts ...Option) (*Region[K, V], error) {
	if strings.TrimSpace(namespace) == "" {
		return nil, ErrInvalidNamespace
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Region[K, V]{
		namespace: namespace,
		cfg:       cfg,
		policy:    cfg.expiry(),
		store:     store.New[K, V](),
		queue:     eviction.NewQueue[*store.Entry[K, V]](cfg.EvictionPolicy),
		log:       o.logger.WithValues("namespace", namespace),
		obs:       o.observer,
		now:       o.now,
		tracer:    o.tracing.Tracer(),
		pressure:  rate.Sometimes{First: 1, Interval: 10 * time.Second},
		loads:     make(map[K]*call[V]),
		reapEvery: o.reapInterval,
		ctx:       ctx,
		cancel:    cancel,
	}

	if r.reapEvery > 0 {
		r.wg.Add(1)
		go r.reapLoop()
	}
	return r, nil
}

// Namespace returns the region's identifier.
func (r *Region[K, V]) Namespace() string { return r.namespace }

// Equal reports whether other names the same region. Two handles are equal
// when their namespaces are, regardless of identity.
func (r *Region[K, V]) Equal(other *Region[K, V]) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.namespace == other.namespace
}

// Put inserts or replaces the value for key. A replace keeps the entry's
// creation time and refreshes its access time. If the insert takes the region
// over capacity, victims are evicted until it is back within bound.
func (r *Region[K, V]) Put(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.store.Get(key); ok {
		if !r.policy.Expired(e.Timing(), now) {
			e.Value = value
			e.Touch(now, r.countsHits())
			r.queue.Fix(e)
			return
		}
		r.expireLocked(e)
	}

	e := r.store.Insert(key, value, now)
	r.queue.Push(e)
	r.evictLocked(e)
}

// Get returns the value for key. An expired entry is removed and reported as
// absent. A hit refreshes the entry's access time.
func (r *Region[K, V]) Get(key K) (V, bool) {
	return r.lookup(key, true)
}

// Remove deletes key and returns what Get would have returned beforehand: an
// expired entry is removed but reported as absent. Removing a missing key is a
// no-op.
func (r *Region[K, V]) Remove(key K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero V
	e, ok := r.store.Get(key)
	if !ok {
		return zero, false
	}
	if r.policy.Expired(e.Timing(), r.now()) {
		r.expireLocked(e)
		return zero, false
	}
	r.dropLocked(e)
	return e.Value, true
}

// Clear removes every entry.
func (r *Region[K, V]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store.Clear()
	r.queue.Clear()
}

// Size returns the number of held entries, including expired entries that
// have not been reaped yet.
func (r *Region[K, V]) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Len()
}

// PurgeExpired removes every expired entry and returns how many it removed.
func (r *Region[K, V]) PurgeExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.policy.Eternal() {
		return 0
	}
	now := r.now()
	n := 0
	r.store.Range(func(e *store.Entry[K, V]) bool {
		if r.policy.Expired(e.Timing(), now) {
			r.expireLocked(e)
			n++
		}
		return true
	})
	return n
}

// Config returns the current configuration.
func (r *Region[K, V]) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// Stats returns a snapshot of the region's counters.
func (r *Region[K, V]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Size = r.store.Len()
	return s
}

// SetTimeToIdle changes the idle window for subsequent expiry checks.
// Negative values disable idle expiry.
func (r *Region[K, V]) SetTimeToIdle(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.TimeToIdle = max(d, 0)
	r.policy = r.cfg.expiry()
}

// SetTimeToLive changes the live window for subsequent expiry checks.
// Negative values disable absolute expiry.
func (r *Region[K, V]) SetTimeToLive(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.TimeToLive = max(d, 0)
	r.policy = r.cfg.expiry()
}

// SetMaxEntriesLocalHeap changes the fast-tier bound and evicts immediately
// if the region is now over capacity. Zero or negative means unbounded.
func (r *Region[K, V]) SetMaxEntriesLocalHeap(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.MaxEntriesLocalHeap = max(n, 0)
	r.evictLocked(nil)
}

// SetMaxEntriesLocalDisk changes the overflow-tier bound and evicts
// immediately if the region is now over capacity.
func (r *Region[K, V]) SetMaxEntriesLocalDisk(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.MaxEntriesLocalDisk = max(n, 0)
	r.evictLocked(nil)
}

// SetEvictionPolicy switches the victim ordering in place. Access counts
// start from zero when switching to LFU.
func (r *Region[K, V]) SetEvictionPolicy(kind eviction.Kind) error {
	kind, err := eviction.Parse(string(kind))
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if kind == eviction.LFU && r.cfg.EvictionPolicy != eviction.LFU {
		r.store.Range(func(e *store.Entry[K, V]) bool {
			e.Hits = 0
			return true
		})
	}
	r.cfg.EvictionPolicy = kind
	r.queue.Reset(kind)
	return nil
}

// Close stops the background reaper. The region stays usable afterwards.
// Close is safe to call multiple times.
func (r *Region[K, V]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	return nil
}

// lookup implements Get. When record is false hits and misses are not counted,
// which lets GetOrLoad re-check the store without skewing Stats.
func (r *Region[K, V]) lookup(key K, record bool) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero V
	now := r.now()
	e, ok := r.store.Get(key)
	if ok && r.policy.Expired(e.Timing(), now) {
		r.expireLocked(e)
		ok = false
	}
	if !ok {
		if record {
			r.stats.Misses++
			r.obs.Miss(r.namespace)
		}
		return zero, false
	}

	e.Touch(now, r.countsHits())
	r.queue.Fix(e)
	if record {
		r.stats.Hits++
		r.obs.Hit(r.namespace)
	}
	return e.Value, true
}

func (r *Region[K, V]) countsHits() bool {
	return r.cfg.EvictionPolicy == eviction.LFU
}

func (r *Region[K, V]) dropLocked(e *store.Entry[K, V]) {
	r.store.Delete(e.Key)
	r.queue.Remove(e)
}

func (r *Region[K, V]) expireLocked(e *store.Entry[K, V]) {
	r.dropLocked(e)
	r.stats.Expirations++
	r.obs.Expired(r.namespace)
}

// evictLocked removes victims until the region is within capacity. The fresh
// entry, if any, is never chosen: under LFU a new entry has no hits yet and
// would otherwise always be its own victim.
func (r *Region[K, V]) evictLocked(fresh *store.Entry[K, V]) {
	limit := r.cfg.Capacity()
	if limit == 0 || r.store.Len() <= limit {
		return
	}
	if fresh != nil {
		r.queue.Remove(fresh)
		defer r.queue.Push(fresh)
	}

	evicted := 0
	for r.store.Len() > limit {
		victim, ok := r.queue.Pop()
		if !ok {
			break
		}
		r.store.Delete(victim.Key)
		r.stats.Evictions++
		r.obs.Evicted(r.namespace)
		evicted++
	}

	r.pressure.Do(func() {
		r.log.V(1).Info("region over capacity, evicted entries",
			"evicted", evicted, "capacity", limit, "policy", r.cfg.EvictionPolicy)
	})
}

package region

import (
	"context"
	"sync"

	"github.com/Keksclan/rawrcache/tracing"
	platformerrors "github.com/jmgilman/go/errors"
)

// ErrLoadAborted is returned to callers that waited on a loader which
// panicked instead of returning.
var ErrLoadAborted = platformerrors.New(platformerrors.CodeInternal, "cache loader did not return")

// Loader produces the value for a key on a cache miss.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// call deduplicates concurrent loads for the same key.
type call[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

// GetOrLoad returns the cached value for key. On a miss it calls loader once
// (concurrent callers for the same key wait for that call), stores the result
// on success, and returns it. Loader errors are returned unchanged and nothing
// is cached. The loader runs without the region lock held.
func (r *Region[K, V]) GetOrLoad(ctx context.Context, key K, loader Loader[K, V]) (V, error) {
	ctx, span := tracing.StartGetOrLoad(ctx, r.tracer, r.namespace)

	if v, ok := r.Get(key); ok {
		tracing.End(span, tracing.OutcomeHit, nil)
		return v, nil
	}

	r.loadMu.Lock()
	if c, ok := r.loads[key]; ok {
		r.loadMu.Unlock()
		c.wg.Wait()
		tracing.End(span, tracing.OutcomeShared, c.err)
		return c.val, c.err
	}

	// A load may have finished between the miss above and taking loadMu.
	if v, ok := r.lookup(key, false); ok {
		r.loadMu.Unlock()
		tracing.End(span, tracing.OutcomeHit, nil)
		return v, nil
	}

	c := &call[V]{err: ErrLoadAborted}
	c.wg.Add(1)
	r.loads[key] = c
	r.loadMu.Unlock()

	returned := false
	defer func() {
		c.wg.Done()
		r.loadMu.Lock()
		delete(r.loads, key)
		r.loadMu.Unlock()
		if !returned {
			tracing.End(span, tracing.OutcomeLoad, ErrLoadAborted)
		}
	}()

	val, err := loader(ctx, key)
	returned = true
	c.val, c.err = val, err
	if err == nil {
		r.Put(key, val)
	}
	r.recordLoad(err)

	tracing.End(span, tracing.OutcomeLoad, err)
	return val, err
}

func (r *Region[K, V]) recordLoad(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Loads++
	if err != nil {
		r.stats.LoadErrors++
	}
	r.obs.Loaded(r.namespace, err)
}

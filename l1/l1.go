// Package l1 implements the rawrcache.Cache capability on top of ristretto.
//
// It trades the exact semantics of rawrcache regions for ristretto's
// throughput: admission is probabilistic, eviction follows TinyLFU rather
// than a selectable policy, there is no idle expiry, and GetSize is an
// approximation. Use it for hot read-mostly namespaces where a dropped write
// only costs a reload.
package l1

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Keksclan/rawrcache"
	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
)

// unboundedCost is the ristretto MaxCost used when no heap bound is set.
const unboundedCost = 1 << 40

// maxTTLSeconds is the largest second count a time.Duration can hold.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

// maxCounters caps the admission sketch for large or unbounded caches.
const maxCounters = 10_000_000

// Cache is an in-process cache backed by ristretto. Each entry has a cost of 1,
// so MaxCost is an entry bound.
type Cache struct {
	id string
	rc *ristretto.Cache[string, *entry]

	mu  sync.Mutex
	ttl time.Duration
	// keys tracks the entries ristretto currently holds. Eviction, expiry and
	// rejection callbacks remove them, so it stays within the entry bound.
	keys map[string]*entry
}

// entry remembers its own key so ristretto callbacks, which only see hashes,
// can find it in keys.
type entry struct {
	key string
	val any
}

var _ rawrcache.Cache = (*Cache)(nil)

// New creates a cache named id holding at most maxEntries entries. Zero or
// negative means unbounded.
func New(id string, maxEntries int64) (*Cache, error) {
	if id == "" {
		return nil, rawrcache.ErrInvalidNamespace
	}
	maxCost := int64(unboundedCost)
	counters := int64(maxCounters)
	if maxEntries > 0 {
		maxCost = maxEntries
		counters = min(maxEntries*10, maxCounters)
	}

	c := &Cache{id: id, keys: make(map[string]*entry)}
	rc, err := ristretto.NewCache(&ristretto.Config[string, *entry]{
		NumCounters:        counters,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
		OnEvict:            c.forget,
		OnReject:           c.forget,
	})
	if err != nil {
		return nil, fmt.Errorf("create l1 cache %q: %w", id, err)
	}
	c.rc = rc
	return c, nil
}

// forget drops the tracked key of an entry ristretto no longer holds, unless
// the key has been written again since.
func (c *Cache) forget(item *ristretto.Item[*entry]) {
	if item == nil || item.Value == nil {
		return
	}
	c.untrack(item.Value)
}

func (c *Cache) untrack(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.keys[e.key] == e {
		delete(c.keys, e.key)
	}
}

// keyOf maps an arbitrary comparable key to a ristretto key. The dynamic type
// is part of the key so that 1 and "1" stay distinct.
func keyOf(key any) string {
	return fmt.Sprintf("%T:%v", key, key)
}

func (c *Cache) ID() string { return c.id }

func (c *Cache) GetObject(key any) any {
	if e, ok := c.rc.Get(keyOf(key)); ok {
		return e.val
	}
	return nil
}

// PutObject stores value. Ristretto may refuse the write under pressure, in
// which case a later GetObject misses.
func (c *Cache) PutObject(key, value any) {
	e := &entry{key: keyOf(key), val: value}
	c.mu.Lock()
	ttl := c.ttl
	c.keys[e.key] = e
	c.mu.Unlock()

	if !c.rc.SetWithTTL(e.key, e, 1, ttl) {
		c.untrack(e)
	}
	c.rc.Wait()
}

func (c *Cache) RemoveObject(key any) any {
	k := keyOf(key)
	var v any
	if e, ok := c.rc.Get(k); ok {
		v = e.val
	}
	c.rc.Del(k)

	c.mu.Lock()
	delete(c.keys, k)
	c.mu.Unlock()
	return v
}

func (c *Cache) Clear() {
	c.rc.Clear()
	c.mu.Lock()
	clear(c.keys)
	c.mu.Unlock()
}

// GetSize is the number of tracked keys. Entries past their TTL count until
// ristretto's periodic cleanup drops them.
func (c *Cache) GetSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func (c *Cache) ReadWriteLock() *sync.RWMutex { return nil }

// Equal reports whether other has the same id.
func (c *Cache) Equal(other rawrcache.Cache) bool {
	return rawrcache.SameID(c, other)
}

// HashCode is consistent with Equal.
func (c *Cache) HashCode() uint64 { return xxhash.Sum64String(c.id) }

func (c *Cache) String() string { return fmt.Sprintf("rawrcache/l1 {%s}", c.id) }

// SetTimeToLiveSeconds applies to entries written afterwards. Zero disables
// expiry.
func (c *Cache) SetTimeToLiveSeconds(seconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = time.Duration(min(max(seconds, 0), maxTTLSeconds)) * time.Second
}

// SetMaxEntriesLocalHeap changes the entry bound. Zero means unbounded.
func (c *Cache) SetMaxEntriesLocalHeap(n int) {
	maxCost := int64(n)
	if maxCost <= 0 {
		maxCost = unboundedCost
	}
	c.rc.UpdateMaxCost(maxCost)
}

// Close stops ristretto's background goroutines.
func (c *Cache) Close() {
	c.rc.Close()
}

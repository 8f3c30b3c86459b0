package rawrcache

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/Keksclan/rawrcache/eviction"
	"github.com/Keksclan/rawrcache/region"
	"github.com/cespare/xxhash/v2"
)

// Cache is the untyped capability surface expected by hosts such as SQL
// mappers that plug in an external second-level cache. Keys must be
// comparable values; a nil value is stored like any other value.
type Cache interface {
	ID() string
	GetObject(key any) any
	PutObject(key, value any)
	// RemoveObject returns the previous value, or nil.
	RemoveObject(key any) any
	Clear()
	GetSize() int
	// ReadWriteLock returns nil when the cache synchronises internally.
	ReadWriteLock() *sync.RWMutex
}

// Adapter binds one namespace of a registry to Cache. Every Adapter with the
// same id on the same registry shares one region.
type Adapter struct {
	id     string
	region *region.Region[any, any]
}

var _ Cache = (*Adapter)(nil)

// NewAdapter returns a handle on namespace id, creating the region with the
// registry's default configuration if it does not exist yet. To give the
// region its own configuration, call reg.GetOrCreate first.
func NewAdapter(reg *Registry[any, any], id string) (*Adapter, error) {
	r, err := reg.GetOrCreateDefault(id)
	if err != nil {
		return nil, err
	}
	return &Adapter{id: id, region: r}, nil
}

func (a *Adapter) ID() string { return a.id }

// GetObject returns the live value for key, or nil.
func (a *Adapter) GetObject(key any) any {
	v, _ := a.region.Get(key)
	return v
}

func (a *Adapter) PutObject(key, value any) { a.region.Put(key, value) }

func (a *Adapter) RemoveObject(key any) any {
	v, _ := a.region.Remove(key)
	return v
}

func (a *Adapter) Clear() { a.region.Clear() }

func (a *Adapter) GetSize() int { return a.region.Size() }

func (a *Adapter) ReadWriteLock() *sync.RWMutex { return nil }

// Region exposes the underlying region.
func (a *Adapter) Region() *region.Region[any, any] { return a.region }

// Equal reports whether two handles refer to the same namespace.
func (a *Adapter) Equal(other Cache) bool {
	return SameID(a, other)
}

// SameID reports whether a and b are non-nil caches with the same id. Nil
// interfaces and typed nil pointers are never equal to anything.
func SameID(a, b Cache) bool {
	if isNil(a) || isNil(b) {
		return false
	}
	return a.ID() == b.ID()
}

func isNil(c Cache) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// maxSeconds is the largest second count a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// secondsToDuration converts seconds, capping values a Duration cannot hold.
func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(min(seconds, maxSeconds)) * time.Second
}

// HashCode is consistent with Equal.
func (a *Adapter) HashCode() uint64 { return xxhash.Sum64String(a.id) }

func (a *Adapter) String() string { return fmt.Sprintf("rawrcache {%s}", a.id) }

// SetTimeToIdleSeconds changes the idle timeout. Zero disables it. Values
// beyond what a time.Duration holds are capped.
func (a *Adapter) SetTimeToIdleSeconds(seconds int64) {
	a.region.SetTimeToIdle(secondsToDuration(seconds))
}

// SetTimeToLiveSeconds changes the lifetime. Zero disables it. Values beyond
// what a time.Duration holds are capped.
func (a *Adapter) SetTimeToLiveSeconds(seconds int64) {
	a.region.SetTimeToLive(secondsToDuration(seconds))
}

// SetMaxEntriesLocalHeap changes the heap bound. Zero means unbounded.
func (a *Adapter) SetMaxEntriesLocalHeap(n int) { a.region.SetMaxEntriesLocalHeap(n) }

// SetMaxEntriesLocalDisk changes the disk tier bound. Zero means unbounded.
func (a *Adapter) SetMaxEntriesLocalDisk(n int) { a.region.SetMaxEntriesLocalDisk(n) }

// SetMemoryStoreEvictionPolicy selects "LRU", "LFU" or "FIFO".
func (a *Adapter) SetMemoryStoreEvictionPolicy(name string) error {
	kind, err := eviction.Parse(name)
	if err != nil {
		return err
	}
	return a.region.SetEvictionPolicy(kind)
}

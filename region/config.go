package region

import (
	"fmt"
	"time"

	"github.com/Keksclan/rawrcache/eviction"
	"github.com/Keksclan/rawrcache/expiry"
)

// Config is the tunable part of a region. The zero value is an eternal,
// unbounded LRU region.
type Config struct {
	// TimeToIdle expires entries this long after their last read or write.
	// Zero disables idle expiry.
	TimeToIdle time.Duration

	// TimeToLive expires entries this long after creation. Zero disables it.
	TimeToLive time.Duration

	// MaxEntriesLocalHeap bounds the fast tier. Zero means unbounded.
	MaxEntriesLocalHeap int

	// MaxEntriesLocalDisk bounds the overflow tier. Zero means unbounded.
	// There is no separate overflow store; the bound only tightens the
	// region's overall capacity (see Capacity).
	MaxEntriesLocalDisk int

	// EvictionPolicy orders victims once the region is over capacity.
	// Empty selects eviction.Default.
	EvictionPolicy eviction.Kind
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{EvictionPolicy: eviction.Default}
}

// Capacity is the effective entry bound: the smallest non-zero tier bound,
// or zero when both tiers are unbounded.
func (c Config) Capacity() int {
	heap, disk := max(c.MaxEntriesLocalHeap, 0), max(c.MaxEntriesLocalDisk, 0)
	switch {
	case heap == 0:
		return disk
	case disk == 0:
		return heap
	default:
		return min(heap, disk)
	}
}

func (c Config) expiry() expiry.Policy {
	return expiry.Policy{TTL: c.TimeToLive, TTI: c.TimeToIdle}
}

// normalize clamps negative values to zero and resolves the policy.
func (c Config) normalize() (Config, error) {
	c.TimeToIdle = max(c.TimeToIdle, 0)
	c.TimeToLive = max(c.TimeToLive, 0)
	c.MaxEntriesLocalHeap = max(c.MaxEntriesLocalHeap, 0)
	c.MaxEntriesLocalDisk = max(c.MaxEntriesLocalDisk, 0)

	kind, err := eviction.Parse(string(c.EvictionPolicy))
	if err != nil {
		return Config{}, fmt.Errorf("region config: %w", err)
	}
	c.EvictionPolicy = kind
	return c, nil
}

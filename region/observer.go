package region

// Observer receives region events. Implementations are called while the
// region lock is held and must be fast and must not call back into the region.
type Observer interface {
	Hit(namespace string)
	Miss(namespace string)
	Evicted(namespace string)
	Expired(namespace string)
	Loaded(namespace string, err error)
}

type nopObserver struct{}

func (nopObserver) Hit(string)           {}
func (nopObserver) Miss(string)          {}
func (nopObserver) Evicted(string)       {}
func (nopObserver) Expired(string)       {}
func (nopObserver) Loaded(string, error) {}

// Stats is a point-in-time snapshot of a region's counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Loads       uint64
	LoadErrors  uint64
	Size        int
}

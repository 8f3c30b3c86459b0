package rawrcache

import "time"

// DefaultReapInterval is the purge period used by DefaultOptions.
const DefaultReapInterval = time.Minute

// DefaultOptions returns the recommended set of options for long-running
// processes. Currently this enables a background purge of expired entries
// so that idle regions release memory; additional defaults may be added in
// future versions.
func DefaultOptions() []Option {
	return []Option{
		WithReapInterval(DefaultReapInterval),
	}
}

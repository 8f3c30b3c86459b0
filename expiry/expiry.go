// Package expiry decides whether a cache entry has outlived its time-to-live
// or time-to-idle window.
package expiry

import "time"

// Meta is the timing metadata an entry carries.
type Meta struct {
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Policy holds the two independent expiry windows. A zero duration disables
// that axis; an entry is expired as soon as either enabled axis elapses.
type Policy struct {
	// TTL bounds the age of an entry measured from CreatedAt.
	TTL time.Duration

	// TTI bounds the time since the entry was last read or written.
	TTI time.Duration
}

// Eternal reports whether neither axis is enabled.
func (p Policy) Eternal() bool {
	return p.TTL <= 0 && p.TTI <= 0
}

// Expired reports whether m is expired at now.
func (p Policy) Expired(m Meta, now time.Time) bool {
	if p.TTL > 0 && now.Sub(m.CreatedAt) >= p.TTL {
		return true
	}
	if p.TTI > 0 && now.Sub(m.LastAccessedAt) >= p.TTI {
		return true
	}
	return false
}

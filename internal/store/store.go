// Package store holds the raw key to entry mapping behind a region. It knows
// nothing about expiry or eviction and is not safe for concurrent use.
package store

import (
	"time"

	"github.com/Keksclan/rawrcache/eviction"
	"github.com/Keksclan/rawrcache/expiry"
)

// Entry is a stored value plus its bookkeeping.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
	eviction.Meta
}

// Rank implements eviction.Ranked.
func (e *Entry[K, V]) Rank() *eviction.Meta { return &e.Meta }

// Timing returns the metadata the expiry policy needs.
func (e *Entry[K, V]) Timing() expiry.Meta {
	return expiry.Meta{CreatedAt: e.CreatedAt, LastAccessedAt: e.LastAccessedAt}
}

// Touch records an access at now. Timestamps never move backwards.
func (e *Entry[K, V]) Touch(now time.Time, countHit bool) {
	if now.After(e.LastAccessedAt) {
		e.LastAccessedAt = now
	}
	if countHit {
		e.Hits++
	}
}

// Store maps keys to entries and hands out insertion sequence numbers.
type Store[K comparable, V any] struct {
	items map[K]*Entry[K, V]
	seq   uint64
}

// New returns an empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{items: make(map[K]*Entry[K, V])}
}

// Get returns the entry for key.
func (s *Store[K, V]) Get(key K) (*Entry[K, V], bool) {
	e, ok := s.items[key]
	return e, ok
}

// Insert stores a new entry created at now. Any existing entry for key is
// replaced outright; callers that want replace semantics use Get first.
func (s *Store[K, V]) Insert(key K, value V, now time.Time) *Entry[K, V] {
	s.seq++
	e := &Entry[K, V]{
		Key:   key,
		Value: value,
		Meta: eviction.Meta{
			CreatedAt:      now,
			LastAccessedAt: now,
			Seq:            s.seq,
		},
	}
	s.items[key] = e
	return e
}

// Delete removes key and returns the entry that was stored.
func (s *Store[K, V]) Delete(key K) (*Entry[K, V], bool) {
	e, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return e, ok
}

// Len returns the number of stored entries, expired or not.
func (s *Store[K, V]) Len() int { return len(s.items) }

// Clear drops every entry. Sequence numbers keep increasing across clears.
func (s *Store[K, V]) Clear() {
	clear(s.items)
}

// Range calls fn for every entry until fn returns false. fn must not insert;
// deleting the visited entry is allowed.
func (s *Store[K, V]) Range(fn func(*Entry[K, V]) bool) {
	for _, e := range s.items {
		if !fn(e) {
			return
		}
	}
}

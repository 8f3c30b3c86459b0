package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InsertGetDelete(t *testing.T) {
	s := New[string, int]()
	now := time.Now()

	e := s.Insert("a", 1, now)
	assert.Equal(t, uint64(1), e.Seq)
	assert.Equal(t, now, e.CreatedAt)
	assert.Equal(t, now, e.LastAccessedAt)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Same(t, e, got)

	removed, ok := s.Delete("a")
	require.True(t, ok)
	assert.Same(t, e, removed)

	_, ok = s.Delete("a")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_SeqMonotonicAcrossClear(t *testing.T) {
	s := New[int, int]()
	now := time.Now()
	s.Insert(1, 1, now)
	s.Insert(2, 2, now)
	s.Clear()
	assert.Equal(t, 0, s.Len())

	e := s.Insert(3, 3, now)
	assert.Equal(t, uint64(3), e.Seq)
}

func TestEntry_TouchNeverGoesBackwards(t *testing.T) {
	s := New[string, string]()
	now := time.Now()
	e := s.Insert("k", "v", now)

	e.Touch(now.Add(-time.Second), false)
	assert.Equal(t, now, e.LastAccessedAt)

	later := now.Add(time.Second)
	e.Touch(later, true)
	assert.Equal(t, later, e.LastAccessedAt)
	assert.Equal(t, uint64(1), e.Hits)
	assert.Equal(t, now, e.Timing().CreatedAt)
}

func TestStore_RangeAllowsDelete(t *testing.T) {
	s := New[int, int]()
	now := time.Now()
	for i := range 10 {
		s.Insert(i, i, now)
	}

	s.Range(func(e *Entry[int, int]) bool {
		if e.Key%2 == 0 {
			s.Delete(e.Key)
		}
		return true
	})
	assert.Equal(t, 5, s.Len())
}

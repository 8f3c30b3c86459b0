package eviction

import (
	"container/heap"
	"time"
)

// Meta is the per-entry state the orderings compare. Entries embed it and
// hand the queue a pointer through Ranked.
type Meta struct {
	CreatedAt      time.Time
	LastAccessedAt time.Time
	// Hits is only maintained while the owning region runs LFU.
	Hits uint64
	// Seq is assigned once at insertion and never changes.
	Seq uint64

	index int
}

// Ranked is implemented by anything the queue can order.
type Ranked interface {
	Rank() *Meta
}

// Queue is an indexed min-heap whose head is the next eviction victim.
// It is not safe for concurrent use; the owning region serialises access.
type Queue[T Ranked] struct {
	kind  Kind
	items []T
}

// NewQueue returns an empty queue ordered by kind.
func NewQueue[T Ranked](kind Kind) *Queue[T] {
	if !kind.Valid() {
		kind = Default
	}
	return &Queue[T]{kind: kind}
}

// Kind returns the current ordering.
func (q *Queue[T]) Kind() Kind { return q.kind }

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return len(q.items) }

// Push adds an item.
func (q *Queue[T]) Push(item T) {
	heap.Push((*heapView[T])(q), item)
}

// Fix restores ordering after item's Meta changed.
func (q *Queue[T]) Fix(item T) {
	if i := item.Rank().index; q.owns(i, item) {
		heap.Fix((*heapView[T])(q), i)
	}
}

// Remove drops item from the queue. Removing an item that is not queued is a
// no-op.
func (q *Queue[T]) Remove(item T) {
	if i := item.Rank().index; q.owns(i, item) {
		heap.Remove((*heapView[T])(q), i)
	}
}

// Victim returns the item that would be evicted next without removing it.
func (q *Queue[T]) Victim() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// Pop removes and returns the next victim.
func (q *Queue[T]) Pop() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop((*heapView[T])(q)).(T), true
}

// Reset switches the ordering and re-heapifies the existing items.
func (q *Queue[T]) Reset(kind Kind) {
	if !kind.Valid() {
		kind = Default
	}
	q.kind = kind
	heap.Init((*heapView[T])(q))
}

// Clear drops every item.
func (q *Queue[T]) Clear() {
	for _, it := range q.items {
		it.Rank().index = -1
	}
	clear(q.items)
	q.items = q.items[:0]
}

func (q *Queue[T]) owns(i int, item T) bool {
	return i >= 0 && i < len(q.items) && q.items[i].Rank() == item.Rank()
}

// less orders a before b when a should be evicted first.
func (q *Queue[T]) less(a, b *Meta) bool {
	var c int
	switch q.kind {
	case LFU:
		switch {
		case a.Hits < b.Hits:
			c = -1
		case a.Hits > b.Hits:
			c = 1
		}
	case FIFO:
		c = a.CreatedAt.Compare(b.CreatedAt)
	default:
		c = a.LastAccessedAt.Compare(b.LastAccessedAt)
	}
	if c != 0 {
		return c < 0
	}
	return a.Seq < b.Seq
}

// heapView adapts Queue to container/heap without exporting the interface
// methods on Queue itself.
type heapView[T Ranked] Queue[T]

func (h *heapView[T]) Len() int { return len(h.items) }

func (h *heapView[T]) Less(i, j int) bool {
	return (*Queue[T])(h).less(h.items[i].Rank(), h.items[j].Rank())
}

func (h *heapView[T]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].Rank().index = i
	h.items[j].Rank().index = j
}

func (h *heapView[T]) Push(x any) {
	item := x.(T)
	item.Rank().index = len(h.items)
	h.items = append(h.items, item)
}

func (h *heapView[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	h.items = old[:n-1]
	item.Rank().index = -1
	return item
}

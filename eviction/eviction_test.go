package eviction

import (
	"errors"
	"testing"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	name string
	meta Meta
}

func (i *item) Rank() *Meta { return &i.meta }

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newItem(name string, seq uint64, created, accessed time.Duration, hits uint64) *item {
	return &item{name: name, meta: Meta{
		CreatedAt:      base.Add(created),
		LastAccessedAt: base.Add(accessed),
		Hits:           hits,
		Seq:            seq,
	}}
}

func drain(q *Queue[*item]) []string {
	var out []string
	for {
		it, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, it.name)
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Kind{
		"LRU":    LRU,
		"lfu":    LFU,
		" Fifo ": FIFO,
		"":       Default,
	} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParse_Unsupported(t *testing.T) {
	_, err := Parse("CLOCK")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedPolicy))
	assert.Equal(t, platformerrors.CodeInvalidConfig, platformerrors.GetCode(err))
}

func TestQueue_LRU(t *testing.T) {
	q := NewQueue[*item](LRU)
	q.Push(newItem("a", 1, 0, 3*time.Second, 0))
	q.Push(newItem("b", 2, 0, 1*time.Second, 0))
	q.Push(newItem("c", 3, 0, 2*time.Second, 0))

	assert.Equal(t, []string{"b", "c", "a"}, drain(q))
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[*item](FIFO)
	q.Push(newItem("late", 3, 3*time.Second, 0, 0))
	q.Push(newItem("early", 1, 1*time.Second, 9*time.Second, 0))
	q.Push(newItem("mid", 2, 2*time.Second, 0, 0))

	assert.Equal(t, []string{"early", "mid", "late"}, drain(q))
}

func TestQueue_LFU(t *testing.T) {
	q := NewQueue[*item](LFU)
	q.Push(newItem("hot", 1, 0, 0, 10))
	q.Push(newItem("cold", 2, 0, 0, 1))
	q.Push(newItem("warm", 3, 0, 0, 5))

	assert.Equal(t, []string{"cold", "warm", "hot"}, drain(q))
}

func TestQueue_TiesBrokenBySeq(t *testing.T) {
	for _, kind := range []Kind{LRU, LFU, FIFO} {
		t.Run(string(kind), func(t *testing.T) {
			q := NewQueue[*item](kind)
			q.Push(newItem("third", 3, 0, 0, 0))
			q.Push(newItem("first", 1, 0, 0, 0))
			q.Push(newItem("second", 2, 0, 0, 0))

			assert.Equal(t, []string{"first", "second", "third"}, drain(q))
		})
	}
}

func TestQueue_FixAndRemove(t *testing.T) {
	q := NewQueue[*item](LRU)
	a := newItem("a", 1, 0, 1*time.Second, 0)
	b := newItem("b", 2, 0, 2*time.Second, 0)
	c := newItem("c", 3, 0, 3*time.Second, 0)
	q.Push(a)
	q.Push(b)
	q.Push(c)

	a.meta.LastAccessedAt = base.Add(10 * time.Second)
	q.Fix(a)
	v, ok := q.Victim()
	require.True(t, ok)
	assert.Equal(t, "b", v.name)

	q.Remove(b)
	q.Remove(b)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, []string{"c", "a"}, drain(q))
}

func TestQueue_RemoveUnqueued(t *testing.T) {
	q := NewQueue[*item](LRU)
	q.Push(newItem("a", 1, 0, 0, 0))

	stranger := newItem("x", 9, 0, 0, 0)
	q.Remove(stranger)
	q.Fix(stranger)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_Reset(t *testing.T) {
	q := NewQueue[*item](LRU)
	q.Push(newItem("recent-old", 1, 0, 5*time.Second, 0))
	q.Push(newItem("stale-new", 2, 1*time.Second, 1*time.Second, 0))

	v, _ := q.Victim()
	assert.Equal(t, "stale-new", v.name)

	q.Reset(FIFO)
	assert.Equal(t, FIFO, q.Kind())
	v, _ = q.Victim()
	assert.Equal(t, "recent-old", v.name)
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue[*item](FIFO)
	a := newItem("a", 1, 0, 0, 0)
	q.Push(a)
	q.Clear()

	assert.Equal(t, 0, q.Len())
	_, ok := q.Victim()
	assert.False(t, ok)
	assert.Equal(t, -1, a.meta.index)
}

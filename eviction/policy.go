// Package eviction selects which entry leaves a region once it grows past its
// capacity bound. Three orderings are supported (LRU, LFU and FIFO); ties are
// always broken by insertion sequence so that victim choice is reproducible.
package eviction

import (
	"fmt"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"
)

// Kind names an eviction ordering.
type Kind string

const (
	// LRU evicts the entry with the oldest last-access time.
	LRU Kind = "LRU"
	// LFU evicts the entry with the fewest recorded accesses.
	LFU Kind = "LFU"
	// FIFO evicts the entry with the oldest creation time.
	FIFO Kind = "FIFO"
)

// Default is used when a configuration leaves the policy empty.
const Default = LRU

// ErrUnsupportedPolicy is returned for policy names other than LRU, LFU and FIFO.
var ErrUnsupportedPolicy = platformerrors.New(platformerrors.CodeInvalidConfig, "unsupported eviction policy")

// Parse converts a policy name into a Kind. Matching ignores case and
// surrounding whitespace. An empty name yields Default.
func Parse(name string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(name))); k {
	case "":
		return Default, nil
	case LRU, LFU, FIFO:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPolicy, name)
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case LRU, LFU, FIFO:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

package loader

import (
	"sync"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
)

// ErrBreakerOpen is returned without calling the loader while the breaker is
// open. It is classified retryable: the backend may recover.
var ErrBreakerOpen = platformerrors.New(platformerrors.CodeUnavailable, "cache loader circuit open")

// State represents the current circuit breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// DefaultOpenTimeout is used when BreakerConfig.OpenTimeout is not positive.
const DefaultOpenTimeout = 30 * time.Second

// BreakerConfig holds the circuit breaker parameters.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failed loads in Closed
	// state before the breaker trips to Open.
	FailureThreshold int

	// OpenTimeout is how long the breaker stays Open before letting trial
	// loads through. Zero or negative selects DefaultOpenTimeout.
	OpenTimeout time.Duration

	// HalfOpenMaxSuccess is the number of consecutive successful trial loads
	// required to close the breaker again.
	HalfOpenMaxSuccess int
}

// Breaker stops calling a failing backend for a while. All methods are safe
// for concurrent use.
type Breaker struct {
	mu sync.Mutex

	cfg BreakerConfig

	state     State
	failures  int // consecutive failures in Closed
	successes int // consecutive successes in HalfOpen
	openedAt  time.Time
	now       func() time.Time

	onChange func(from, to State)
}

// NewBreaker creates a Breaker. Thresholds below one are raised to one and a
// non-positive OpenTimeout becomes DefaultOpenTimeout.
func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg.FailureThreshold = max(cfg.FailureThreshold, 1)
	cfg.HalfOpenMaxSuccess = max(cfg.HalfOpenMaxSuccess, 1)
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultOpenTimeout
	}
	return &Breaker{
		cfg:   cfg,
		state: Closed,
		now:   time.Now,
	}
}

// State returns the current state. An Open breaker whose timeout has elapsed
// reports HalfOpen.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkOpenTimeout()
	return b.state
}

// Allow reports whether a load may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkOpenTimeout()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		return b.successes < b.cfg.HalfOpenMaxSuccess
	default:
		return false
	}
}

// OnSuccess records a successful load.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures = 0
	case HalfOpen:
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxSuccess {
			b.transition(Closed)
			b.failures = 0
			b.successes = 0
		}
	}
}

// OnFailure records a failed load.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.toOpen()
		}
	case HalfOpen:
		b.toOpen()
	}
}

// checkOpenTimeout must be called with b.mu held.
func (b *Breaker) checkOpenTimeout() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.transition(HalfOpen)
		b.successes = 0
	}
}

func (b *Breaker) toOpen() {
	b.transition(Open)
	b.openedAt = b.now()
	b.successes = 0
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	if from != to && b.onChange != nil {
		b.onChange(from, to)
	}
}

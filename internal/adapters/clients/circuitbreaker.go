package clients

import (
	"errors"
	"sync"
	"time"

	"github.com/jsamuelsen/message-notifier/internal/platform/config"
)

// ErrCircuitOpen is returned without contacting the downstream service while
// the breaker is open or its half-open slots are taken.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Fallbacks for a zero CircuitBreakerConfig.
const (
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
	defaultBreakerTrials   = 1
)

// State is the position of a Breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota

	// StateOpen rejects calls until the cooldown elapses.
	StateOpen

	// StateHalfOpen admits a limited number of trial calls.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker stops calling a relay that keeps failing.
//
// MaxFailures consecutive failures open it. After Timeout it lets
// HalfOpenLimit trial calls through; that many successes close it again and
// any failed trial reopens it.
//
// Each admitted call holds a release func that must be called exactly once
// with the outcome. Outcomes of calls admitted before the last transition
// are ignored, so a slow request cannot flip a breaker that already moved on.
type Breaker struct {
	maxFailures int
	cooldown    time.Duration
	trialLimit  int

	mu         sync.Mutex
	state      State
	generation uint64
	failures   int
	successes  int
	inFlight   int
	openedAt   time.Time

	onChange func(from, to State)
	now      func() time.Time
}

// NewBreaker creates a closed breaker. onChange, if set, runs after every
// transition outside the breaker's lock.
func NewBreaker(cfg config.CircuitBreakerConfig, onChange func(from, to State)) *Breaker {
	b := &Breaker{
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Timeout,
		trialLimit:  cfg.HalfOpenLimit,
		onChange:    onChange,
		now:         time.Now,
	}

	if b.maxFailures <= 0 {
		b.maxFailures = defaultBreakerFailures
	}

	if b.cooldown <= 0 {
		b.cooldown = defaultBreakerCooldown
	}

	if b.trialLimit <= 0 {
		b.trialLimit = defaultBreakerTrials
	}

	return b
}

// Acquire admits a call or returns ErrCircuitOpen. The returned release
// records whether the call succeeded.
func (b *Breaker) Acquire() (release func(ok bool), err error) {
	b.mu.Lock()

	var moved *transition
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		moved = b.moveTo(StateHalfOpen)
	}

	switch b.state {
	case StateOpen:
		b.mu.Unlock()
		b.notify(moved)

		return nil, ErrCircuitOpen

	case StateHalfOpen:
		if b.inFlight >= b.trialLimit {
			b.mu.Unlock()
			b.notify(moved)

			return nil, ErrCircuitOpen
		}

		b.inFlight++
	}

	gen := b.generation
	b.mu.Unlock()
	b.notify(moved)

	var once sync.Once

	return func(ok bool) {
		once.Do(func() { b.record(gen, ok) })
	}, nil
}

// State reports the current position without advancing an expired cooldown.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

func (b *Breaker) record(gen uint64, ok bool) {
	b.mu.Lock()

	if gen != b.generation {
		b.mu.Unlock()
		return
	}

	var moved *transition

	switch b.state {
	case StateClosed:
		if ok {
			b.failures = 0
			break
		}

		b.failures++
		if b.failures >= b.maxFailures {
			moved = b.moveTo(StateOpen)
		}

	case StateHalfOpen:
		b.inFlight--

		if !ok {
			moved = b.moveTo(StateOpen)
			break
		}

		b.successes++
		if b.successes >= b.trialLimit {
			moved = b.moveTo(StateClosed)
		}
	}

	b.mu.Unlock()
	b.notify(moved)
}

type transition struct{ from, to State }

// moveTo switches state and starts a new generation. Caller holds mu.
func (b *Breaker) moveTo(to State) *transition {
	from := b.state

	b.state = to
	b.generation++
	b.failures = 0
	b.successes = 0
	b.inFlight = 0

	if to == StateOpen {
		b.openedAt = b.now()
	}

	return &transition{from: from, to: to}
}

func (b *Breaker) notify(t *transition) {
	if t != nil && b.onChange != nil {
		b.onChange(t.from, t.to)
	}
}

package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// StateChangeFunc is called with the breaker name on every transition
type StateChangeFunc func(name string, from, to State)

// Options configures a CircuitBreaker
type Options struct {
	Name         string
	MaxFailures  int
	ResetTimeout time.Duration
	// OnStateChange runs outside the breaker lock
	OnStateChange StateChangeFunc
}

// CircuitBreaker stops calling a failing dependency for ResetTimeout
// after MaxFailures consecutive failures, then lets a single probe
// through.
type CircuitBreaker struct {
	name          string
	maxFailures   int
	resetTimeout  time.Duration
	onStateChange StateChangeFunc
	now           func() time.Time

	mu              sync.Mutex
	state           State
	failures        int
	probing         bool
	lastFailureTime time.Time
	lastStateChange time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return New(Options{Name: "default", MaxFailures: maxFailures, ResetTimeout: resetTimeout})
}

// New creates a circuit breaker from options
func New(opts Options) *CircuitBreaker {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:            opts.Name,
		maxFailures:     opts.MaxFailures,
		resetTimeout:    opts.ResetTimeout,
		onStateChange:   opts.OnStateChange,
		now:             time.Now,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// Name returns the breaker name
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Call executes fn with circuit breaker protection. A context error
// returned by fn counts as a failure.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.afterCall(err)

	return err
}

// beforeCall checks if call is allowed
func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) <= cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		from := cb.setState(StateHalfOpen)
		cb.probing = true
		cb.mu.Unlock()
		cb.notify(from, StateHalfOpen)
		return nil

	case StateHalfOpen:
		defer cb.mu.Unlock()
		if cb.probing {
			return ErrTooManyRequests
		}
		cb.probing = true
		return nil
	}

	cb.mu.Unlock()
	return nil
}

// afterCall updates circuit breaker state after call
func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()

	from, to := cb.state, cb.state
	if err != nil {
		cb.failures++
		cb.lastFailureTime = cb.now()

		switch cb.state {
		case StateClosed:
			if cb.failures >= cb.maxFailures {
				to = StateOpen
			}
		case StateHalfOpen:
			to = StateOpen
		}
	} else {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			to = StateClosed
		}
	}
	cb.probing = false
	if to != from {
		cb.setState(to)
	}
	cb.mu.Unlock()

	if to != from {
		cb.notify(from, to)
	}
}

// setState must be called with mu held
func (cb *CircuitBreaker) setState(to State) State {
	from := cb.state
	cb.state = to
	cb.lastStateChange = cb.now()
	return from
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}

// State returns current circuit breaker state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns circuit breaker statistics
func (cb *CircuitBreaker) Stats() (state State, failures int, since time.Time) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state, cb.failures, cb.lastStateChange
}

// Reset resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.setState(StateClosed)
	cb.failures = 0
	cb.probing = false
	cb.mu.Unlock()

	if from != StateClosed {
		cb.notify(from, StateClosed)
	}
}

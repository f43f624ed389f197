package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when calls are being rejected without
// reaching the wrapped dependency.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
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
	}
	return "unknown"
}

// CircuitBreaker trips open after maxFailures consecutive failures and
// stays open for resetTimeout. The first call after the timeout runs as a
// half-open probe: success closes the circuit, failure reopens it.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	probing     bool
	lastFailure time.Time
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// Call runs fn under circuit breaker protection. When the circuit is open
// it returns ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		// One probe in flight at a time
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
		return nil
	default:
		if time.Since(cb.lastFailure) > cb.resetTimeout {
			cb.state = StateHalfOpen
			cb.probing = true
			return nil
		}
		return ErrCircuitOpen
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.probing = false
		if err != nil {
			cb.state = StateOpen
			cb.lastFailure = time.Now()
		} else {
			cb.state = StateClosed
			cb.failures = 0
		}
		return
	}

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}
		return
	}
	cb.failures = 0
}

// State returns the current state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the circuit and clears the failure count
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.probing = false
}

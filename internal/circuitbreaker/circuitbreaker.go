// Package circuitbreaker guards store and broker calls so a failing dependency is
// rejected fast instead of piling up timeouts.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrCircuitOpen is returned without calling the guarded function while the
// circuit is open, or while half-open and every trial slot is taken.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{StateClosed: "closed", StateOpen: "open", StateHalfOpen: "half-open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Config tunes a breaker. Zero thresholds are treated as 1.
type Config struct {
	// FailureThreshold is the run of consecutive failures that opens the circuit.
	FailureThreshold int
	// SuccessThreshold is the run of half-open successes that closes it again.
	SuccessThreshold int
	// Timeout is how long the circuit stays open before trial calls are let through.
	Timeout time.Duration
	// MaxHalfOpenCalls caps concurrent trial calls while half-open.
	MaxHalfOpenCalls int
	// Name labels log lines and metrics.
	Name string
	// IsFailure decides whether an error counts against the circuit. Nil counts
	// every error. Business rejections such as an empty cart should return false.
	IsFailure func(error) bool
	// OnStateChange runs with the breaker locked after every transition.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		MaxHalfOpenCalls: 1,
		Name:             "circuit-breaker",
	}
}

// CircuitBreaker counts consecutive failures of a dependency and short-circuits
// calls once they cross the threshold.
//
// Every transition starts a new generation. A call that finishes after the
// generation it started in has ended is not counted, so a slow call from
// before the circuit opened cannot close it again.
type CircuitBreaker struct {
	config Config
	now    func() time.Time

	mu          sync.Mutex
	state       State
	generation  uint64
	failures    int
	successes   int
	inFlight    int
	openedAt    time.Time
	lastFailure time.Time
}

// New creates a closed breaker.
func New(config Config) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 1
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.MaxHalfOpenCalls <= 0 {
		config.MaxHalfOpenCalls = 1
	}
	return &CircuitBreaker{config: config, now: time.Now}
}

// Name returns the configured name.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// Execute runs fn unless the circuit rejects the call with ErrCircuitOpen.
// fn's error is returned unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	gen, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()
	cb.record(gen, err != nil && cb.isFailure(ctx, err))
	return err
}

// Do is Execute for functions that return a value.
func Do[T any](ctx context.Context, cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var out T
	err := cb.Execute(ctx, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

func (cb *CircuitBreaker) admit() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.config.Timeout {
			return 0, ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
	case StateHalfOpen:
		if cb.inFlight >= cb.config.MaxHalfOpenCalls {
			return 0, ErrCircuitOpen
		}
	}
	if cb.state == StateHalfOpen {
		cb.inFlight++
	}
	return cb.generation, nil
}

// isFailure reports whether err is the dependency's fault. The caller giving
// up is not.
func (cb *CircuitBreaker) isFailure(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return false
	}
	return cb.config.IsFailure == nil || cb.config.IsFailure(err)
}

func (cb *CircuitBreaker) record(gen uint64, failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if gen != cb.generation {
		return
	}
	if cb.state == StateHalfOpen {
		cb.inFlight--
	}

	if failed {
		cb.failures++
		cb.successes = 0
		cb.lastFailure = cb.now()
		if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
		}
		return
	}

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
		}
	}
}

// setState moves to a new generation. Callers hold mu.
func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.generation++
	cb.successes = 0
	cb.inFlight = 0
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
	if to == StateClosed {
		cb.failures = 0
	}

	event := log.Info()
	if to == StateOpen {
		event = log.Warn()
	}
	event.Str("circuit_breaker", cb.config.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Int("consecutive_failures", cb.failures).
		Msg("Circuit breaker state change")

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}

// State returns the current position. An open circuit whose timeout has
// elapsed still reports open until the next call.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// IsOpen reports whether the circuit is open.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// Stats is a point-in-time view of the breaker.
type Stats struct {
	State        string
	FailureCount int
	SuccessCount int
	LastFailure  time.Time
	IsHealthy    bool
}

// GetStats returns a snapshot for health checks. Only a closed circuit is healthy.
func (cb *CircuitBreaker) GetStats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Stats{
		State:        cb.state.String(),
		FailureCount: cb.failures,
		SuccessCount: cb.successes,
		LastFailure:  cb.lastFailure,
		IsHealthy:    cb.state == StateClosed,
	}
}

// Package circuitbreaker protects the analysis path from a transaction
// provider that is failing repeatedly: once the failure threshold is hit,
// requests are short-circuited with a retry-later error until the cooldown
// passes and a probe succeeds.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the current state of the circuit breaker
type State int

// Circuit breaker states
const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Tripped, requests short-circuited
	StateHalfOpen              // Cooldown passed, probing for recovery
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Options configures a Breaker.
type Options struct {
	// FailureThreshold is the number of consecutive provider failures
	// that trips the circuit
	FailureThreshold int

	// Cooldown is how long the circuit stays open before probing
	Cooldown time.Duration

	// SuccessThreshold is the number of successful probes required to
	// close the circuit again
	SuccessThreshold int

	// OnTrip is called when the circuit trips, for monitoring/alerting
	OnTrip func(reason string)
}

// Breaker implements a consecutive-failure circuit breaker. Safe for
// concurrent use from multiple request goroutines.
type Breaker struct {
	opts Options

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	lastTrip  time.Time
}

// New creates a Breaker, filling in defaults for zero-valued options.
func New(opts Options) *Breaker {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 5
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = time.Minute
	}
	if opts.SuccessThreshold <= 0 {
		opts.SuccessThreshold = 2
	}
	return &Breaker{opts: opts, state: StateClosed}
}

// Allow reports whether a request may proceed. An open circuit whose
// cooldown has elapsed transitions to half-open and lets a probe through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.lastTrip) < b.opts.Cooldown {
			return false
		}
		b.state = StateHalfOpen
		b.successes = 0
		logrus.Info("Circuit breaker half-open: probing provider recovery")
	}
	return true
}

// RecordSuccess notes a successful provider round trip, closing the
// circuit after enough successful probes.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.opts.SuccessThreshold {
			b.state = StateClosed
			b.successes = 0
			logrus.Info("Circuit breaker closed: provider recovered")
		}
	}
}

// RecordFailure notes a provider failure. A failure during a half-open
// probe reopens the circuit immediately; in the closed state the circuit
// trips once the consecutive-failure threshold is reached.
func (b *Breaker) RecordFailure(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.trip(reason)
		return
	}

	b.failures++
	if b.state == StateClosed && b.failures >= b.opts.FailureThreshold {
		b.trip(reason)
	}
}

// State returns the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forcibly returns the breaker to the closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	logrus.Info("Circuit breaker manually reset to closed state")
}

// trip opens the circuit; callers hold the lock.
func (b *Breaker) trip(reason string) {
	b.state = StateOpen
	b.lastTrip = time.Now()
	b.failures = 0
	logrus.Warnf("Circuit breaker tripped: %s", reason)

	if b.opts.OnTrip != nil {
		go b.opts.OnTrip(reason)
	}
}

package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit breaker ───────────────────────────────────────────────────────────
// The mailer sits behind a breaker so a dead SMTP relay does not tie up the
// worker pool: after enough consecutive delivery failures sends fail fast
// until a probe gets through again.

// CBState is the breaker state.
type CBState int

const (
	CBClosed   CBState = iota // deliveries flow
	CBOpen                    // fast-fail every delivery
	CBHalfOpen                // a single probe delivery allowed
)

// String is used by the health endpoint and the worker logs.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without attempting the delivery.
var ErrCircuitOpen = errors.New("mailer circuit open")

// CircuitBreakerConfig holds the tunable thresholds.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures that trip the breaker
	SuccessThreshold int           // consecutive half-open successes that close it
	OpenTimeout      time.Duration // cool-down before the first probe
}

// DefaultCBConfig is tuned for SMTP: relays reject in bursts and outages
// last minutes, while one delivered mail is enough proof of recovery.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Minute,
	}
}

// CircuitBreaker tracks a signed streak of outcomes: positive values count
// consecutive successes, negative values consecutive failures.
type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	state    CBState
	streak   int
	openedAt time.Time
	probing  bool
}

// NewCircuitBreaker creates a closed breaker; zero config fields take the
// SMTP defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed}
}

// State reports the current state, transitioning open → half-open once the
// cool-down has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) stateLocked() CBState {
	if cb.state == CBOpen && time.Since(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.streak = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker rejects it. While half-open only one
// probe is in flight; concurrent callers get ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	switch cb.stateLocked() {
	case CBOpen:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case CBHalfOpen:
		if cb.probing {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
	cb.record(err == nil)
	return err
}

// record updates the streak and applies transitions (caller holds the lock).
func (cb *CircuitBreaker) record(ok bool) {
	if ok {
		if cb.streak < 0 {
			cb.streak = 0
		}
		cb.streak++
		if cb.state == CBHalfOpen && cb.streak >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.streak = 0
		}
		return
	}

	if cb.streak > 0 {
		cb.streak = 0
	}
	cb.streak--
	switch cb.state {
	case CBClosed:
		if -cb.streak >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	case CBHalfOpen:
		cb.trip()
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.openedAt = time.Now()
	cb.streak = 0
}

package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shrek82/jsql/core"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreakerBuilder builds a middleware that stops sending commands to
// the database after Threshold consecutive failures, letting one probe
// through after ResetTimeout.
type CircuitBreakerBuilder struct {
	Threshold    int           // Number of failures before opening
	ResetTimeout time.Duration // Time to wait before half-open

	mu             sync.Mutex
	state          State
	failures       int
	lastFailure    time.Time
	halfOpenPassed bool
}

func NewCircuitBreaker(threshold int, resetTimeout time.Duration) *CircuitBreakerBuilder {
	return &CircuitBreakerBuilder{
		Threshold:    threshold,
		ResetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// State returns the breaker's current state.
func (b *CircuitBreakerBuilder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *CircuitBreakerBuilder) Build() core.Middleware {
	return func(next core.ExecFunc) core.ExecFunc {
		return func(ctx context.Context, info *core.ExecInfo) *core.ExecResult {
			b.mu.Lock()
			switch b.state {
			case StateOpen:
				if time.Since(b.lastFailure) > b.ResetTimeout {
					b.state = StateHalfOpen
					b.halfOpenPassed = false
				} else {
					b.mu.Unlock()
					return &core.ExecResult{Err: ErrCircuitOpen}
				}
			case StateHalfOpen:
				if b.halfOpenPassed {
					// One probe is already in flight; reject the rest.
					b.mu.Unlock()
					return &core.ExecResult{Err: ErrCircuitOpen}
				}
				b.halfOpenPassed = true
			}
			b.mu.Unlock()

			res := next(ctx, info)

			b.mu.Lock()
			defer b.mu.Unlock()
			if res.Err != nil {
				b.recordFailure()
			} else {
				b.recordSuccess()
			}
			return res
		}
	}
}

func (b *CircuitBreakerBuilder) recordFailure() {
	b.failures++
	b.lastFailure = time.Now()

	if b.state == StateClosed {
		if b.failures >= b.Threshold {
			b.state = StateOpen
		}
	} else if b.state == StateHalfOpen {
		b.state = StateOpen
		b.halfOpenPassed = false
	}
}

func (b *CircuitBreakerBuilder) recordSuccess() {
	if b.state == StateHalfOpen {
		b.state = StateClosed
		b.failures = 0
		b.halfOpenPassed = false
	} else if b.state == StateClosed {
		// Track consecutive failures only.
		b.failures = 0
	}
}

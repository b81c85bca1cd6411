package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"    // 정상 작동
	CircuitStateOpen     CircuitState = "OPEN"      // 호출 차단
	CircuitStateHalfOpen CircuitState = "HALF_OPEN" // 시험 호출 1회 허용
)

func (s CircuitState) String() string {
	return string(s)
}

// CircuitBreaker stops calling a flaky dependency after failureThreshold
// consecutive failures and lets one trial call through after resetTimeout.
type CircuitBreaker struct {
	name             string
	state            CircuitState
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	openedAt         time.Time
	trialInFlight    bool
	onTransition     func(from, to CircuitState)
	now              func() time.Time
	logger           *zap.Logger
	mu               sync.Mutex
}

func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		name:             name,
		state:            CircuitStateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		logger:           logger,
	}
}

// OnTransition registers a hook run under the breaker lock on every state change.
func (cb *CircuitBreaker) OnTransition(fn func(from, to CircuitState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onTransition = fn
}

// Allow reports whether a call may proceed. In HALF_OPEN only one trial call
// is admitted until it reports back.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitStateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			return false
		}
		cb.transitionTo(CircuitStateHalfOpen)
		cb.trialInFlight = true
		return true
	case CircuitStateHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.trialInFlight = false
	if cb.state == CircuitStateHalfOpen {
		cb.transitionTo(CircuitStateClosed)
	}
	cb.failureCount = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.trialInFlight = false
	cb.failureCount++

	if cb.state == CircuitStateHalfOpen || cb.failureCount >= cb.failureThreshold {
		if cb.state != CircuitStateOpen {
			cb.logger.Warn("Circuit Breaker: opening circuit",
				zap.String("name", cb.name),
				zap.Int("failures", cb.failureCount),
				zap.Duration("reset_timeout", cb.resetTimeout),
			)
		}
		cb.openedAt = cb.now()
		cb.transitionTo(CircuitStateOpen)
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset manually closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	cb.trialInFlight = false
	cb.transitionTo(CircuitStateClosed)
}

// must be called with lock held
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	if oldState == newState {
		return
	}
	cb.state = newState

	cb.logger.Info("Circuit Breaker: State transition",
		zap.String("name", cb.name),
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
	)

	if cb.onTransition != nil {
		cb.onTransition(oldState, newState)
	}
}

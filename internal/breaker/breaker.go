// Package breaker stops calling the remote backend while it keeps failing.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrOpen is returned instead of calling the backend while the breaker is open
var ErrOpen = errors.New("circuit breaker open: remote backend unavailable")

// rateWindow is the minimum request count before the failure rate is checked
const rateWindow = 20

// CircuitBreaker prevents continued remote calls when the backend is down
type CircuitBreaker struct {
	failureThreshold int
	failureRate      float64
	resetTimeout     time.Duration
	now              func() time.Time
	log              *logrus.Entry

	failures            int
	successes           int
	totalRequests       int
	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time

	mutex sync.Mutex
}

// Status is a snapshot of the breaker counters
type Status struct {
	Open          bool `json:"open"`
	Failures      int  `json:"failures"`
	TotalRequests int  `json:"total_requests"`
}

// NewCircuitBreaker opens after failureThreshold consecutive failures, or when
// 40% of at least 20 requests failed, and half-opens after resetTimeout.
// A threshold of zero or less disables the breaker.
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, log *logrus.Entry) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		failureRate:      0.40,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		log:              log,
	}
}

// RecordSuccess records a successful call
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.successes++
	cb.totalRequests++
	cb.consecutiveFailures = 0
}

// RecordFailure records a failed call. Cancellation by the caller is not counted.
func (cb *CircuitBreaker) RecordFailure(err error) {
	if errors.Is(err, context.Canceled) || cb.failureThreshold <= 0 {
		return
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.consecutiveFailures++
	cb.totalRequests++
	cb.lastFailureTime = cb.now()

	if cb.isOpen {
		return
	}
	if cb.consecutiveFailures >= cb.failureThreshold {
		cb.isOpen = true
		cb.log.WithError(err).Warnf("circuit breaker open after %d consecutive failures, retrying in %v",
			cb.consecutiveFailures, cb.resetTimeout)
		return
	}

	if cb.totalRequests >= rateWindow {
		rate := float64(cb.failures) / float64(cb.totalRequests)
		if rate >= cb.failureRate {
			cb.isOpen = true
			cb.log.Warnf("circuit breaker open: failure rate %.1f%% (%d/%d), retrying in %v",
				rate*100, cb.failures, cb.totalRequests, cb.resetTimeout)
		}
	}
}

// CanProceed reports whether a call may be made
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if !cb.isOpen {
		return true
	}

	if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		cb.log.Infof("circuit breaker half-open after %v", cb.resetTimeout)
		cb.isOpen = false
		cb.failures = 0
		cb.successes = 0
		cb.totalRequests = 0
		cb.consecutiveFailures = 0
		return true
	}

	return false
}

// GetStatus returns the current breaker state
func (cb *CircuitBreaker) GetStatus() Status {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return Status{Open: cb.isOpen, Failures: cb.failures, TotalRequests: cb.totalRequests}
}

// Do runs fn unless the breaker is open, and records the outcome
func (cb *CircuitBreaker) Do(fn func() error) error {
	if !cb.CanProceed() {
		return ErrOpen
	}
	if err := fn(); err != nil {
		cb.RecordFailure(err)
		return err
	}
	cb.RecordSuccess()
	return nil
}

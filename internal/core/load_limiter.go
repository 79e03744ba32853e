package core

// load_limiter.go bounds how many files are parsed at once.
//
// Loading reads a whole file into memory, so parallel loads are capped with
// a semaphore. When every slot is taken, new requests wait up to maxWait
// before failing with ErrTooManyLoads. WaitForDrain lets shutdown wait for
// in-flight loads.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyLoads is returned when all load slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyLoads = errors.New("too many concurrent loads, please try again later")

// DefaultMaxConcurrentLoads is the default limit for parallel loads.
const DefaultMaxConcurrentLoads = 4

// DefaultMaxLoadWait is how long to wait for a slot before rejecting.
const DefaultMaxLoadWait = 10 * time.Second

// LoadLimiter controls concurrent load processing using a semaphore.
type LoadLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLoadLimiter creates a limiter that allows at most maxConcurrent
// simultaneous loads. Non-positive arguments select the defaults.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxLoadWait
	}

	return &LoadLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a load slot.
// Returns nil on success, ErrTooManyLoads if the wait expires, or the
// context's error if ctx ends first. The caller MUST call Release on success.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.track(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyLoads
	}
}

// TryAcquire takes a slot without blocking.
func (l *LoadLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.track(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *LoadLimiter) Release() {
	l.track(-1)
	<-l.semaphore
}

func (l *LoadLimiter) track(delta int) {
	l.mu.Lock()
	l.active += delta
	l.mu.Unlock()
}

// ActiveCount returns the number of loads in progress.
func (l *LoadLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no loads are active or ctx ends.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LoadLimiterStatus is a snapshot of the limiter.
type LoadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *LoadLimiter) Status() LoadLimiterStatus {
	return LoadLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}

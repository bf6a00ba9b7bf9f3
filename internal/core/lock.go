package core

import (
	"context"
)

// RequestLock provides context-aware locking for serializing request processing
type RequestLock struct {
	sem chan struct{}
}

// NewRequestLock creates a new request lock
func NewRequestLock() *RequestLock {
	return &RequestLock{
		sem: make(chan struct{}, 1),
	}
}

// LockWithContext attempts to acquire the lock, respecting context cancellation
func (c *RequestLock) LockWithContext(ctx context.Context) bool {
	select {
	case c.sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// TryLock acquires the lock only if it is free
func (c *RequestLock) TryLock() bool {
	select {
	case c.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock releases the lock
func (c *RequestLock) Unlock() {
	select {
	case <-c.sem:
	default:
		// already unlocked
	}
}

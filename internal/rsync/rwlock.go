package rsync

import "sync"

// RWLock is a conventional exclusive-writer/shared-reader lock. It makes no
// fairness guarantees: writer starvation avoidance is not a contract of this
// package.
type RWLock struct {
	mu sync.RWMutex
}

// RLock acquires the lock for reading.
func (l *RWLock) RLock() { l.mu.RLock() }

// RUnlock releases a read lock.
func (l *RWLock) RUnlock() { l.mu.RUnlock() }

// Lock acquires the lock for writing.
func (l *RWLock) Lock() { l.mu.Lock() }

// Unlock releases a write lock.
func (l *RWLock) Unlock() { l.mu.Unlock() }

// Package rsync provides the synchronization primitives the storage core
// builds on: a spin lock for very short critical sections, a plain
// read/write lock, and an optimistic read/write lock with version-stamped
// reader leases.
package rsync

import (
	"runtime"
	"sync/atomic"
)

// Spin is a simple exclusive lock backed by a single atomic flag. It is
// meant for critical sections a few instructions long, where parking a
// goroutine would cost more than spinning briefly.
type Spin struct {
	state uint32
}

// Lock spins until the lock is acquired.
func (s *Spin) Lock() {
	for !s.TryLock() {
		runtime.Gosched()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (s *Spin) TryLock() bool {
	return atomic.CompareAndSwapUint32(&s.state, 0, 1)
}

// Unlock releases the lock. Unlocking an unlocked Spin is a programming
// error and is not checked in release builds.
func (s *Spin) Unlock() {
	atomic.StoreUint32(&s.state, 0)
}

package rsync

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Lease is a snapshot of an Optimistic lock's version counter, taken by
// StartRead and later checked by EndRead/Validate.
type Lease uint64

// Optimistic is a version-stamped reader/writer lock in the style used by
// the concurrent B-tree and sparse array: readers never block writers, they
// instead take an unsynchronized snapshot of the version and validate it
// against the live version afterward. Writers serialize against each other
// through an underlying mutex and bump the version once on acquire and once
// on release, so an odd version always means "a writer is active."
//
// A concurrent reader that observes a half-completed write either fails
// validation or never dereferences a freed pointer, provided writer-side
// mutations are published (via atomic stores/CAS) before the release bump
// is made visible.
type Optimistic struct {
	version uint64
	_       cpu.CacheLinePad
	mu      sync.Mutex
}

// StartRead waits out any writer currently holding the lock (readers do not
// block on other readers, and never block future writers) and returns a
// lease capturing the version at that instant.
func (o *Optimistic) StartRead() Lease {
	for {
		v := atomic.LoadUint64(&o.version)
		if v&1 == 0 {
			return Lease(v)
		}
		runtime.Gosched()
	}
}

// EndRead reports whether no writer has acquired the lock since lease was
// taken. Callers must discard anything read under an invalid lease and
// retry from scratch.
func (o *Optimistic) EndRead(lease Lease) bool {
	return atomic.LoadUint64(&o.version) == uint64(lease)
}

// Validate is an alias for EndRead used mid-traversal, before a reader
// dereferences a pointer obtained while holding lease.
func (o *Optimistic) Validate(lease Lease) bool {
	return o.EndRead(lease)
}

// StartWrite blocks until the lock is free and marks it write-locked.
func (o *Optimistic) StartWrite() {
	o.mu.Lock()
	atomic.AddUint64(&o.version, 1)
}

// TryStartWrite attempts to acquire the write lock without blocking.
func (o *Optimistic) TryStartWrite() bool {
	if !o.mu.TryLock() {
		return false
	}
	atomic.AddUint64(&o.version, 1)
	return true
}

// TryUpgradeToWrite attempts to convert a still-valid read lease directly
// into a write lock. It succeeds only if the lease is still valid and no
// other writer is active; on failure the lock is left untouched.
func (o *Optimistic) TryUpgradeToWrite(lease Lease) bool {
	if atomic.LoadUint64(&o.version) != uint64(lease) {
		return false
	}
	if !o.mu.TryLock() {
		return false
	}
	if atomic.LoadUint64(&o.version) != uint64(lease) {
		o.mu.Unlock()
		return false
	}
	atomic.AddUint64(&o.version, 1)
	return true
}

// EndWrite publishes the writer's changes: bumps the version to the next
// even number and releases the lock. Callers must have made all mutated
// state visible (via atomic stores or plain stores preceding this call)
// before invoking EndWrite, since release-before-version-bump is what lets
// readers validate safely.
func (o *Optimistic) EndWrite() {
	atomic.AddUint64(&o.version, 1)
	o.mu.Unlock()
}

// AbortWrite releases the write lock without having published any change.
// The version still advances (to a fresh even number) so concurrent readers
// that failed validation during the attempted write simply retry against
// current state rather than being told anything changed.
func (o *Optimistic) AbortWrite() {
	atomic.AddUint64(&o.version, 1)
	o.mu.Unlock()
}

// IsWriteLocked reports whether a writer currently holds the lock.
func (o *Optimistic) IsWriteLocked() bool {
	return atomic.LoadUint64(&o.version)&1 == 1
}

// Version returns the raw version counter, for callers that want to
// detect "nothing changed" without a full start/end-read pair. No package
// in this module calls it; the B-tree's hints use StartRead/Validate.
func (o *Optimistic) Version() uint64 {
	return atomic.LoadUint64(&o.version)
}

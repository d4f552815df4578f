package ingest

import "sync/atomic"

// runLock provides non-blocking lock semantics using atomic operations.
// A second ingestion attempt fails fast instead of queueing behind the
// first.
type runLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *runLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *runLock) Release() {
	l.state.Store(0)
}

// Locked reports whether the lock is currently held.
func (l *runLock) Locked() bool {
	return l.state.Load() == 1
}

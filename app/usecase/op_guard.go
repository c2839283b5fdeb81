package usecase

import "sync/atomic"

// OpGuard is the process-wide mutual exclusion flag serializing identity
// operations. At most one resolution or sign-in/sign-up/sign-out runs at a
// time; a caller observing a held guard fails fast instead of queueing.
type OpGuard struct {
	held atomic.Bool
}

// NewOpGuard creates a released guard
func NewOpGuard() *OpGuard {
	return &OpGuard{}
}

// TryAcquire takes the guard atomically. Returns false when already held.
func (g *OpGuard) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release frees the guard
func (g *OpGuard) Release() {
	g.held.Store(false)
}

// Held reports whether an identity operation is in flight
func (g *OpGuard) Held() bool {
	return g.held.Load()
}

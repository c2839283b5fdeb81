package usecase

import (
	"sync"
	"time"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

// Staged loading deadlines: a spinner is only worth showing after 200ms, and
// after 5s the UI falls back to a "taking longer than usual" view.
const (
	spinnerDelay    = 200 * time.Millisecond
	stalledDeadline = 5 * time.Second
)

// loadingTracker owns the two cancellable timers that stage the loading
// experience of an identity operation. Both timers are always stopped when
// the operation settles, whatever path it took.
type loadingTracker struct {
	mu           sync.Mutex
	phase        domain.LoadingPhase
	spinnerTimer *time.Timer
	stalledTimer *time.Timer
}

func newLoadingTracker() *loadingTracker {
	return &loadingTracker{phase: domain.PhaseIdle}
}

// begin marks an operation start and returns its settle function. The settle
// function is idempotent and must run when the operation finishes.
func (t *loadingTracker) begin() func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopTimersLocked()
	t.phase = domain.PhasePending
	t.spinnerTimer = time.AfterFunc(spinnerDelay, func() { t.advance(domain.PhaseSpinner) })
	t.stalledTimer = time.AfterFunc(stalledDeadline, func() { t.advance(domain.PhaseStalled) })

	return t.settle
}

// Phase returns the current loading phase
func (t *loadingTracker) Phase() domain.LoadingPhase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Loading reports whether an operation is pending
func (t *loadingTracker) Loading() bool {
	return t.Phase() != domain.PhaseIdle
}

func (t *loadingTracker) advance(phase domain.LoadingPhase) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// The operation may have settled between the timer firing and this lock.
	if t.phase == domain.PhaseIdle {
		return
	}
	t.phase = phase
}

func (t *loadingTracker) settle() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopTimersLocked()
	t.phase = domain.PhaseIdle
}

func (t *loadingTracker) stopTimersLocked() {
	if t.spinnerTimer != nil {
		t.spinnerTimer.Stop()
		t.spinnerTimer = nil
	}
	if t.stalledTimer != nil {
		t.stalledTimer.Stop()
		t.stalledTimer = nil
	}
}

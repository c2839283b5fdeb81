package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

func TestLoadingTracker_Phases(t *testing.T) {
	tracker := newLoadingTracker()
	assert.Equal(t, domain.PhaseIdle, tracker.Phase())
	assert.False(t, tracker.Loading())

	settle := tracker.begin()
	assert.Equal(t, domain.PhasePending, tracker.Phase())
	assert.True(t, tracker.Loading())

	// Past the spinner debounce but before the stall deadline.
	assert.Eventually(t, func() bool {
		return tracker.Phase() == domain.PhaseSpinner
	}, time.Second, 10*time.Millisecond)

	settle()
	assert.Equal(t, domain.PhaseIdle, tracker.Phase())
	assert.False(t, tracker.Loading())
}

func TestLoadingTracker_FastSettleSkipsSpinner(t *testing.T) {
	tracker := newLoadingTracker()

	settle := tracker.begin()
	settle()

	// The spinner timer was cancelled; the phase must stay idle even after
	// the debounce would have elapsed.
	time.Sleep(spinnerDelay + 100*time.Millisecond)
	assert.Equal(t, domain.PhaseIdle, tracker.Phase())
}

func TestLoadingTracker_SettleIsIdempotent(t *testing.T) {
	tracker := newLoadingTracker()

	settle := tracker.begin()
	settle()
	settle()

	assert.Equal(t, domain.PhaseIdle, tracker.Phase())
}

func TestLoadingTracker_StalledAfterDeadline(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the stall deadline")
	}

	tracker := newLoadingTracker()
	settle := tracker.begin()
	defer settle()

	assert.Eventually(t, func() bool {
		return tracker.Phase() == domain.PhaseStalled
	}, stalledDeadline+time.Second, 50*time.Millisecond)
}

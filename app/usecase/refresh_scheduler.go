package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

// RefreshThreshold is how long before expiry a session is proactively renewed.
const RefreshThreshold = 4 * time.Minute

// RefreshScheduler owns the single pending timer that renews the session
// before it expires. Each successful refresh re-arms the timer with the new
// expiry, producing a self-perpetuating chain for the life of the process.
type RefreshScheduler struct {
	refresh   func(ctx context.Context) (*domain.Session, error)
	onFailure func(ctx context.Context)
	logger    *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewRefreshScheduler creates a scheduler. refresh asks the backend for a
// renewed session; onFailure is invoked when the backend refuses, which means
// the credential has been invalidated.
func NewRefreshScheduler(
	refresh func(ctx context.Context) (*domain.Session, error),
	onFailure func(ctx context.Context),
	logger *slog.Logger,
) *RefreshScheduler {
	return &RefreshScheduler{
		refresh:   refresh,
		onFailure: onFailure,
		logger:    logger.With("component", "refresh_scheduler"),
	}
}

// Arm schedules a refresh for the session, replacing any pending timer.
// Cancelling the previous timer first is mandatory: a leftover timer after a
// sign-in-while-authenticated would start a duplicate refresh chain.
func (s *RefreshScheduler) Arm(session *domain.Session) {
	delay := RefreshDelay(session.Expiry(), time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(delay, s.fire)

	s.logger.Debug("refresh timer armed",
		"subject_id", session.SubjectID,
		"delay_ms", delay.Milliseconds())
}

// Cancel stops the pending timer, if any
func (s *RefreshScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *RefreshScheduler) fire() {
	ctx := context.Background()

	session, err := s.refresh(ctx)
	if err != nil || session == nil {
		// A failed refresh means the backend invalidated the credential.
		// Not retried; the session is over.
		s.logger.Warn("session refresh failed", "error", err)
		s.onFailure(ctx)
		return
	}

	s.logger.Debug("session refreshed",
		"subject_id", session.SubjectID,
		"expires_at", session.ExpiresAt)
	s.Arm(session)
}

// RefreshDelay computes how long to wait before refreshing a session that
// expires at the given instant, clamped at zero.
func RefreshDelay(expiry, now time.Time) time.Duration {
	delay := expiry.Sub(now) - RefreshThreshold
	if delay < 0 {
		return 0
	}
	return delay
}

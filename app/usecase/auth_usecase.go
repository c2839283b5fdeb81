package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/port"
)

// resolveTimeout bounds resolutions driven by timers and push notifications,
// which have no caller-supplied context.
const resolveTimeout = 30 * time.Second

// LifecycleUseCase implements the session and identity lifecycle. It owns the
// current identity, the operation guard, the refresh scheduler and the session
// cache; external consumers only ever see read-only snapshots.
type LifecycleUseCase struct {
	gateway port.IdentityGateway
	cache   port.SessionCache
	guard   *OpGuard
	loading *loadingTracker
	logger  *slog.Logger

	scheduler        *RefreshScheduler
	resetRedirectURL string

	mu       sync.RWMutex
	identity *domain.Identity

	// checked flips once the startup session check has completed; only then
	// may the state-change stream drive resolution, so the startup check and
	// an immediately-fired notification never race.
	checked   atomic.Bool
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewLifecycleUseCase creates the lifecycle manager. resetRedirectURL is
// where the backend sends users after completing a password reset.
func NewLifecycleUseCase(
	gateway port.IdentityGateway,
	cache port.SessionCache,
	resetRedirectURL string,
	logger *slog.Logger,
) *LifecycleUseCase {
	uc := &LifecycleUseCase{
		gateway:          gateway,
		cache:            cache,
		guard:            NewOpGuard(),
		loading:          newLoadingTracker(),
		resetRedirectURL: resetRedirectURL,
		logger:           logger.With("component", "auth_lifecycle"),
		done:             make(chan struct{}),
	}

	uc.scheduler = NewRefreshScheduler(gateway.RefreshSession, uc.handleRefreshFailure, logger)

	return uc
}

// Start performs the startup session check: ask the backend for an existing
// session, falling back to the cached identity when the backend itself is
// unreachable. Completing the check activates the state-change subscription.
func (uc *LifecycleUseCase) Start(ctx context.Context) error {
	if !uc.guard.TryAcquire() {
		return domain.ErrOperationInProgress
	}

	settle := uc.loading.begin()

	func() {
		defer uc.guard.Release()
		defer settle()

		session, err := uc.gateway.GetSession(ctx)
		switch {
		case err != nil:
			// Network failure, not "no session": bridge with the cached
			// identity if one is fresh enough, without contacting the backend.
			uc.logger.Warn("session check failed, consulting cache", "error", err)
			if record := uc.cache.Get(); record != nil {
				uc.setIdentity(record.Identity)
			} else {
				uc.setIdentity(nil)
			}
		case session == nil:
			uc.logger.Info("no existing session")
			uc.clearLocal()
		default:
			uc.resolve(ctx, session)
		}
	}()

	if uc.checked.CompareAndSwap(false, true) {
		uc.wg.Add(1)
		go uc.drainStateChanges()
	}

	return nil
}

// SignIn delegates the credential check to the backend. It does not resolve
// the identity itself: the backend's state-change notification drives the
// single resolution path.
func (uc *LifecycleUseCase) SignIn(ctx context.Context, email, password string) error {
	if !uc.guard.TryAcquire() {
		return domain.ErrOperationInProgress
	}
	defer uc.guard.Release()

	settle := uc.loading.begin()
	defer settle()

	if _, err := uc.gateway.SignInWithPassword(ctx, email, password); err != nil {
		uc.logger.Warn("sign-in rejected", "error", err)
		return err
	}

	uc.logger.Info("sign-in accepted")
	return nil
}

// SignUp creates a backend credential and its profile row. If the profile
// row cannot be created, the credential is deleted again (best effort) so no
// orphaned credential-without-profile remains, and the profile error is
// returned to the caller.
func (uc *LifecycleUseCase) SignUp(ctx context.Context, email, password, displayName string) (*domain.Identity, error) {
	if !uc.guard.TryAcquire() {
		return nil, domain.ErrOperationInProgress
	}
	defer uc.guard.Release()

	settle := uc.loading.begin()
	defer settle()

	subjectID, err := uc.gateway.SignUp(ctx, email, password, map[string]interface{}{
		"display_name": displayName,
	})
	if err != nil {
		uc.logger.Warn("credential creation rejected", "error", err)
		return nil, err
	}

	identity, err := domain.NewIdentity(subjectID, email, displayName, domain.RoleContributor)
	if err != nil {
		uc.rollbackCredential(ctx, subjectID)
		return nil, err
	}

	if err := uc.gateway.CreateProfile(ctx, identity); err != nil {
		uc.logger.Error("profile creation failed", "subject_id", subjectID, "error", err)
		uc.rollbackCredential(ctx, subjectID)
		return nil, err
	}

	uc.logger.Info("sign-up completed", "subject_id", subjectID)
	return identity, nil
}

// SignOut cancels the refresh timer, clears the identity and cache
// optimistically, then asks the backend to invalidate the session. A no-op
// when another identity operation is in flight.
func (uc *LifecycleUseCase) SignOut(ctx context.Context) {
	if !uc.guard.TryAcquire() {
		uc.logger.Debug("sign-out skipped, operation in flight")
		return
	}
	defer uc.guard.Release()

	uc.scheduler.Cancel()
	uc.clearLocal()

	if err := uc.gateway.SignOut(ctx); err != nil {
		// Local state is already cleared; the backend error is not surfaced.
		uc.logger.Warn("backend sign-out failed", "error", err)
	}

	uc.logger.Info("signed out")
}

// ResetPassword is a stateless passthrough to the backend
func (uc *LifecycleUseCase) ResetPassword(ctx context.Context, email string) error {
	return uc.gateway.ResetPasswordForEmail(ctx, email, uc.resetRedirectURL)
}

// Current returns the read-only snapshot consumed by the route guard and UI
func (uc *LifecycleUseCase) Current() domain.AuthState {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	var identity *domain.Identity
	if uc.identity != nil {
		copied := *uc.identity
		identity = &copied
	}

	phase := uc.loading.Phase()
	return domain.AuthState{
		Identity: identity,
		Loading:  phase != domain.PhaseIdle,
		Phase:    phase,
	}
}

// Close tears the manager down: the event drain stops and pending timers are
// cancelled. Safe to call more than once.
func (uc *LifecycleUseCase) Close() {
	uc.closeOnce.Do(func() {
		close(uc.done)
	})
	uc.wg.Wait()
	uc.scheduler.Cancel()
	uc.loading.settle()
}

// resolve is the single resolution routine: arm the refresh timer, look up
// the profile, fall back to a reduced-privilege identity when the lookup
// fails, and write through to the cache either way.
func (uc *LifecycleUseCase) resolve(ctx context.Context, session *domain.Session) {
	uc.scheduler.Arm(session)

	identity, err := uc.gateway.GetProfile(ctx, session.SubjectID)
	if err != nil || identity == nil {
		// Availability over strictness: the backend authenticated this
		// subject, so a transient profile failure must not lock them out.
		uc.logger.Warn("profile lookup failed, using fallback identity",
			"subject_id", session.SubjectID, "error", err)
		identity = domain.NewFallbackIdentity(session.SubjectID)
	}

	uc.setIdentity(identity)

	if err := uc.cache.Put(domain.NewCachedRecord(identity, time.Now())); err != nil {
		uc.logger.Warn("cache write failed", "error", err)
	}
}

func (uc *LifecycleUseCase) drainStateChanges() {
	defer uc.wg.Done()

	events := uc.gateway.StateChanges()
	for {
		select {
		case <-uc.done:
			return
		case session, ok := <-events:
			if !ok {
				return
			}
			uc.handleStateChange(session)
		}
	}
}

func (uc *LifecycleUseCase) handleStateChange(session *domain.Session) {
	if !uc.guard.TryAcquire() {
		// Dropped, not queued: the in-flight operation's own resolution
		// reflects the latest backend state.
		uc.logger.Debug("state change dropped, operation in flight")
		return
	}
	defer uc.guard.Release()

	settle := uc.loading.begin()
	defer settle()

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	if session == nil {
		uc.logger.Info("session revoked by backend")
		uc.scheduler.Cancel()
		uc.clearLocal()
		return
	}

	uc.resolve(ctx, session)
}

// handleRefreshFailure forces a sign-out: a refresh the backend refused means
// the credential is gone, and retrying would only hammer a dead session.
func (uc *LifecycleUseCase) handleRefreshFailure(ctx context.Context) {
	uc.logger.Warn("forcing sign-out after refresh failure")

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()
	uc.SignOut(ctx)
}

func (uc *LifecycleUseCase) rollbackCredential(ctx context.Context, subjectID string) {
	// Best effort: a failed rollback is logged, never surfaced, so the caller
	// still sees the original profile error.
	if err := uc.gateway.DeleteCredential(ctx, subjectID); err != nil {
		uc.logger.Error("credential rollback failed", "subject_id", subjectID, "error", err)
	}
}

func (uc *LifecycleUseCase) setIdentity(identity *domain.Identity) {
	uc.mu.Lock()
	uc.identity = identity
	uc.mu.Unlock()
}

func (uc *LifecycleUseCase) clearLocal() {
	uc.setIdentity(nil)
	if err := uc.cache.Clear(); err != nil {
		uc.logger.Warn("cache clear failed", "error", err)
	}
}

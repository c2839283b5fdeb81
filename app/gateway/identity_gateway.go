package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/port"
)

// eventBuffer bounds the state-change stream. The lifecycle manager drops
// notifications it cannot act on anyway, so a small buffer is enough.
const eventBuffer = 8

// IdentityGateway implements port.IdentityGateway. It is the anti-corruption
// layer between the lifecycle manager and the identity backend: credentials
// and sessions live behind the credential client, profile rows behind the
// repository, and backend-side transitions surface on the state-change stream.
type IdentityGateway struct {
	client   port.CredentialClient
	profiles port.ProfileRepository
	logger   *slog.Logger
	events   chan *domain.Session
}

// NewIdentityGateway creates a new IdentityGateway instance
func NewIdentityGateway(client port.CredentialClient, profiles port.ProfileRepository, logger *slog.Logger) *IdentityGateway {
	return &IdentityGateway{
		client:   client,
		profiles: profiles,
		logger:   logger.With("component", "identity_gateway"),
		events:   make(chan *domain.Session, eventBuffer),
	}
}

// SignInWithPassword authenticates credentials and announces the new session
func (g *IdentityGateway) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := g.client.PasswordLogin(ctx, email, password)
	if err != nil {
		g.logger.Warn("password login failed", "error", err)
		return nil, err
	}

	g.logger.Info("credential established", "subject_id", session.SubjectID)
	g.emit(session)
	return session, nil
}

// SignUp creates a backend credential and returns the new subject id. No
// state change is announced yet: the profile row does not exist until
// CreateProfile succeeds, and resolving before that would only produce a
// fallback identity.
func (g *IdentityGateway) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error) {
	subjectID, err := g.client.Register(ctx, email, password, metadata)
	if err != nil {
		g.logger.Warn("registration failed", "error", err)
		return "", err
	}

	g.logger.Info("credential created", "subject_id", subjectID)
	return subjectID, nil
}

// DeleteCredential removes a credential (sign-up compensation path)
func (g *IdentityGateway) DeleteCredential(ctx context.Context, subjectID string) error {
	if err := g.client.DeleteIdentity(ctx, subjectID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	g.logger.Info("credential deleted", "subject_id", subjectID)
	return nil
}

// ResetPasswordForEmail starts a password recovery flow for the address
func (g *IdentityGateway) ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error {
	return g.client.RecoverByEmail(ctx, email, redirectURL)
}

// GetSession returns the existing session, or nil when there is none
func (g *IdentityGateway) GetSession(ctx context.Context) (*domain.Session, error) {
	return g.client.WhoAmI(ctx)
}

// RefreshSession renews the session and announces the refreshed credential
func (g *IdentityGateway) RefreshSession(ctx context.Context) (*domain.Session, error) {
	session, err := g.client.ExtendSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRefreshFailure, err)
	}

	g.logger.Info("credential refreshed", "subject_id", session.SubjectID)
	g.emit(session)
	return session, nil
}

// SignOut invalidates the session and announces the revocation
func (g *IdentityGateway) SignOut(ctx context.Context) error {
	err := g.client.Logout(ctx)
	g.emit(nil)
	return err
}

// GetProfile resolves a profile row by subject id
func (g *IdentityGateway) GetProfile(ctx context.Context, subjectID string) (*domain.Identity, error) {
	return g.profiles.GetBySubjectID(ctx, subjectID)
}

// CreateProfile inserts a profile row for a new subject
func (g *IdentityGateway) CreateProfile(ctx context.Context, identity *domain.Identity) error {
	return g.profiles.Create(ctx, identity)
}

// StateChanges returns the push notification stream
func (g *IdentityGateway) StateChanges() <-chan *domain.Session {
	return g.events
}

func (g *IdentityGateway) emit(session *domain.Session) {
	select {
	case g.events <- session:
	default:
		// A full buffer means nobody is draining; stale notifications are
		// dropped rather than queued.
		g.logger.Warn("state change dropped, buffer full")
	}
}

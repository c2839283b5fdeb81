package port

//go:generate mockgen -source=auth_port.go -destination=../mocks/mock_auth_port.go

import (
	"context"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

// AuthLifecycle defines the session and identity lifecycle business logic
// interface consumed by the REST layer and the route guard.
type AuthLifecycle interface {
	// Lifecycle
	Start(ctx context.Context) error
	Close()

	// Identity operations
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, displayName string) (*domain.Identity, error)
	SignOut(ctx context.Context)
	ResetPassword(ctx context.Context, email string) error

	// Snapshot
	Current() domain.AuthState
}

// IdentityGateway defines the identity backend contract. It owns sessions
// and credentials; the lifecycle manager only consumes its results and its
// state-change stream.
type IdentityGateway interface {
	// Credentials
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error)
	DeleteCredential(ctx context.Context, subjectID string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error

	// Sessions
	GetSession(ctx context.Context) (*domain.Session, error)
	RefreshSession(ctx context.Context) (*domain.Session, error)
	SignOut(ctx context.Context) error

	// Profiles
	GetProfile(ctx context.Context, subjectID string) (*domain.Identity, error)
	CreateProfile(ctx context.Context, identity *domain.Identity) error

	// StateChanges returns the push notification stream: a session payload on
	// credential established or refreshed, nil on revocation. The channel is
	// bounded; a single consumer must drain it.
	StateChanges() <-chan *domain.Session
}

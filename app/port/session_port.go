package port

//go:generate mockgen -source=session_port.go -destination=../mocks/mock_session_port.go

import (
	"context"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

// SessionCache defines the durable best-effort store for the last-known
// resolved identity. Read failures are cache misses, never errors.
type SessionCache interface {
	// Put persists the record, replacing any previous one (write-through)
	Put(record *domain.CachedRecord) error
	// Get returns the stored record, or nil on miss. Records older than
	// domain.MaxCacheAge are treated as absent.
	Get() *domain.CachedRecord
	// Clear removes the stored record
	Clear() error
}

// CredentialClient defines the identity backend driver interface the gateway
// builds on. It maps one-to-one onto the backend's credential and session
// endpoints and keeps custody of the session token.
type CredentialClient interface {
	PasswordLogin(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, email, password string, traits map[string]interface{}) (string, error)
	DeleteIdentity(ctx context.Context, subjectID string) error
	WhoAmI(ctx context.Context) (*domain.Session, error)
	ExtendSession(ctx context.Context) (*domain.Session, error)
	Logout(ctx context.Context) error
	RecoverByEmail(ctx context.Context, email, returnTo string) error
}

// ProfileRepository defines profile row data access
type ProfileRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetBySubjectID(ctx context.Context, subjectID string) (*domain.Identity, error)
}

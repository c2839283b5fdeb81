package domain

import (
	"fmt"
	"time"
)

// Session is the opaque credential bundle issued by the identity backend.
// The backend owns it; the core holds a reference only long enough to
// schedule a refresh and extract the subject ID.
type Session struct {
	SubjectID string `json:"subject_id"`
	ExpiresAt int64  `json:"expires_at"` // epoch seconds
}

// NewSession creates a session reference with validation
func NewSession(subjectID string, expiresAt int64) (*Session, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("subject ID is required")
	}

	if expiresAt <= 0 {
		return nil, fmt.Errorf("expiry must be positive")
	}

	return &Session{
		SubjectID: subjectID,
		ExpiresAt: expiresAt,
	}, nil
}

// Expiry returns the session expiry as a time.Time
func (s *Session) Expiry() time.Time {
	return time.Unix(s.ExpiresAt, 0)
}

// IsExpired returns true if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.Expiry())
}

// MaxCacheAge bounds how long a cached record may authorize access.
const MaxCacheAge = 24 * time.Hour

// CachedRecord is the locally persisted last-known identity, used to bridge
// backend unavailability. Persisted as {"identity": ..., "timestamp": ...}.
type CachedRecord struct {
	Identity  *Identity `json:"identity"`
	Timestamp int64     `json:"timestamp"` // epoch millis
}

// NewCachedRecord creates a cached record stamped at the given time
func NewCachedRecord(identity *Identity, at time.Time) *CachedRecord {
	return &CachedRecord{
		Identity:  identity,
		Timestamp: at.UnixMilli(),
	}
}

// FreshAt returns true if the record is younger than MaxCacheAge at the
// given instant. Stale records are treated as absent by every reader.
func (r *CachedRecord) FreshAt(now time.Time) bool {
	if r.Identity == nil {
		return false
	}
	age := now.Sub(time.UnixMilli(r.Timestamp))
	return age >= 0 && age < MaxCacheAge
}

// LoadingPhase describes how long an identity operation has been pending
type LoadingPhase string

const (
	// PhaseIdle - no operation pending
	PhaseIdle LoadingPhase = "idle"
	// PhasePending - operation started, below the spinner debounce
	PhasePending LoadingPhase = "pending"
	// PhaseSpinner - pending longer than the spinner debounce
	PhaseSpinner LoadingPhase = "spinner"
	// PhaseStalled - pending longer than the hard fallback deadline
	PhaseStalled LoadingPhase = "stalled"
)

// AuthState is the read-only snapshot consumed by the route guard and UI
type AuthState struct {
	Identity *Identity    `json:"identity"`
	Loading  bool         `json:"loading"`
	Phase    LoadingPhase `json:"phase"`
}

// Authenticated returns true if a resolved identity is present
func (s AuthState) Authenticated() bool {
	return s.Identity != nil
}

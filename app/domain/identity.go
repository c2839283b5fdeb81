package domain

import (
	"fmt"
	"net/mail"
	"time"
)

// Role represents the application-level role of an identity
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleContributor Role = "contributor"
)

// Fallback identity defaults used when profile resolution fails but the
// backend authenticated the subject.
const (
	FallbackDisplayName = "User"
	FallbackRole        = RoleContributor
)

// Identity represents the resolved application-level user record
type Identity struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

// NewIdentity creates a new identity with validation
func NewIdentity(subjectID, email, displayName string, role Role) (*Identity, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("subject ID is required")
	}

	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", err)
	}

	if displayName == "" {
		return nil, fmt.Errorf("display name is required")
	}

	if !role.Valid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	return &Identity{
		ID:          subjectID,
		DisplayName: displayName,
		Email:       email,
		Role:        role,
		CreatedAt:   time.Now(),
	}, nil
}

// NewFallbackIdentity creates a minimally-populated identity for a subject
// whose profile lookup failed. The caller is authenticated, so it gets
// reduced-privilege defaults instead of being locked out.
func NewFallbackIdentity(subjectID string) *Identity {
	return &Identity{
		ID:          subjectID,
		DisplayName: FallbackDisplayName,
		Role:        FallbackRole,
		CreatedAt:   time.Now(),
	}
}

// Valid returns true if the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleContributor:
		return true
	}
	return false
}

// IsAdmin returns true if the identity has admin role
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanManage returns true if the identity may manage campaigns and briefs
func (i *Identity) CanManage() bool {
	return i.Role == RoleAdmin || i.Role == RoleManager
}

// ChangeRole changes the identity's role with validation
func (i *Identity) ChangeRole(role Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %s", role)
	}
	i.Role = role
	return nil
}

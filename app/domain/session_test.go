package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	tests := []struct {
		name      string
		subjectID string
		expiresAt int64
		expectErr bool
	}{
		{
			name:      "valid session",
			subjectID: "subject-123",
			expiresAt: time.Now().Add(time.Hour).Unix(),
			expectErr: false,
		},
		{
			name:      "missing subject ID",
			subjectID: "",
			expiresAt: time.Now().Add(time.Hour).Unix(),
			expectErr: true,
		},
		{
			name:      "non-positive expiry",
			subjectID: "subject-123",
			expiresAt: 0,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := NewSession(tt.subjectID, tt.expiresAt)

			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, session)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.subjectID, session.SubjectID)
				assert.Equal(t, tt.expiresAt, session.Expiry().Unix())
			}
		})
	}
}

func TestSession_IsExpired(t *testing.T) {
	live := &Session{SubjectID: "subject-123", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	assert.False(t, live.IsExpired())

	expired := &Session{SubjectID: "subject-123", ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	assert.True(t, expired.IsExpired())
}

func TestCachedRecord_FreshAt(t *testing.T) {
	now := time.Now()
	identity := &Identity{ID: "subject-123", DisplayName: "Test User", Role: RoleManager}

	tests := []struct {
		name  string
		at    time.Time
		fresh bool
	}{
		{name: "just written", at: now, fresh: true},
		{name: "23 hours old", at: now.Add(23 * time.Hour), fresh: true},
		{name: "exactly at the age limit", at: now.Add(MaxCacheAge), fresh: false},
		{name: "25 hours old", at: now.Add(25 * time.Hour), fresh: false},
		{name: "written in the future", at: now.Add(-time.Minute), fresh: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewCachedRecord(identity, now)
			assert.Equal(t, tt.fresh, record.FreshAt(tt.at))
		})
	}
}

func TestCachedRecord_FreshAt_NilIdentity(t *testing.T) {
	record := &CachedRecord{Identity: nil, Timestamp: time.Now().UnixMilli()}
	assert.False(t, record.FreshAt(time.Now()))
}

func TestAuthState_Authenticated(t *testing.T) {
	assert.False(t, AuthState{Phase: PhaseIdle}.Authenticated())
	assert.True(t, AuthState{Identity: &Identity{ID: "subject-123"}, Phase: PhaseIdle}.Authenticated())
}

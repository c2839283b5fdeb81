package gateway

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
	mock_port "github.com/aisandler/marketing-calendar-saas-sub001/app/mocks"
)

func newTestGateway(t *testing.T) (*IdentityGateway, *mock_port.MockCredentialClient, *mock_port.MockProfileRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mock_port.NewMockCredentialClient(ctrl)
	profiles := mock_port.NewMockProfileRepository(ctrl)

	return NewIdentityGateway(client, profiles, slog.Default()), client, profiles
}

func liveSession() *domain.Session {
	return &domain.Session{
		SubjectID: "subject-123",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
}

func TestIdentityGateway_SignInWithPassword(t *testing.T) {
	t.Run("success announces the session", func(t *testing.T) {
		gw, client, _ := newTestGateway(t)

		client.EXPECT().
			PasswordLogin(gomock.Any(), "test@example.com", "Sup3rSecret").
			Return(liveSession(), nil)

		session, err := gw.SignInWithPassword(context.Background(), "test@example.com", "Sup3rSecret")
		require.NoError(t, err)
		assert.Equal(t, "subject-123", session.SubjectID)

		select {
		case event := <-gw.StateChanges():
			require.NotNil(t, event)
			assert.Equal(t, "subject-123", event.SubjectID)
		default:
			t.Fatal("expected a state-change event")
		}
	})

	t.Run("failure announces nothing", func(t *testing.T) {
		gw, client, _ := newTestGateway(t)

		client.EXPECT().
			PasswordLogin(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, domain.ErrInvalidCredentials)

		_, err := gw.SignInWithPassword(context.Background(), "test@example.com", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		select {
		case <-gw.StateChanges():
			t.Fatal("no event expected on a failed sign-in")
		default:
		}
	})
}

func TestIdentityGateway_SignUp_DoesNotAnnounce(t *testing.T) {
	gw, client, _ := newTestGateway(t)

	client.EXPECT().
		Register(gomock.Any(), "new@example.com", "Sup3rSecret", gomock.Any()).
		Return("subject-456", nil)

	subjectID, err := gw.SignUp(context.Background(), "new@example.com", "Sup3rSecret", map[string]interface{}{
		"display_name": "New User",
	})
	require.NoError(t, err)
	assert.Equal(t, "subject-456", subjectID)

	// The profile row does not exist yet; a resolution now would only
	// produce a fallback identity.
	select {
	case <-gw.StateChanges():
		t.Fatal("no event expected on sign-up")
	default:
	}
}

func TestIdentityGateway_RefreshSession(t *testing.T) {
	t.Run("success announces the renewed session", func(t *testing.T) {
		gw, client, _ := newTestGateway(t)

		client.EXPECT().ExtendSession(gomock.Any()).Return(liveSession(), nil)

		session, err := gw.RefreshSession(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "subject-123", session.SubjectID)

		select {
		case event := <-gw.StateChanges():
			require.NotNil(t, event)
		default:
			t.Fatal("expected a state-change event")
		}
	})

	t.Run("failure wraps the refresh sentinel", func(t *testing.T) {
		gw, client, _ := newTestGateway(t)

		client.EXPECT().ExtendSession(gomock.Any()).Return(nil, assert.AnError)

		_, err := gw.RefreshSession(context.Background())
		assert.ErrorIs(t, err, domain.ErrRefreshFailure)

		select {
		case <-gw.StateChanges():
			t.Fatal("no event expected on a failed refresh")
		default:
		}
	})
}

func TestIdentityGateway_SignOut(t *testing.T) {
	t.Run("announces revocation", func(t *testing.T) {
		gw, client, _ := newTestGateway(t)

		client.EXPECT().Logout(gomock.Any()).Return(nil)

		require.NoError(t, gw.SignOut(context.Background()))

		select {
		case event := <-gw.StateChanges():
			assert.Nil(t, event, "revocation is announced as a nil session")
		default:
			t.Fatal("expected a revocation event")
		}
	})

	t.Run("announces revocation even when the backend errors", func(t *testing.T) {
		gw, client, _ := newTestGateway(t)

		client.EXPECT().Logout(gomock.Any()).Return(assert.AnError)

		assert.Error(t, gw.SignOut(context.Background()))

		select {
		case event := <-gw.StateChanges():
			assert.Nil(t, event)
		default:
			t.Fatal("expected a revocation event")
		}
	})
}

func TestIdentityGateway_Profiles(t *testing.T) {
	gw, _, profiles := newTestGateway(t)

	identity := &domain.Identity{ID: "subject-123", DisplayName: "Test User", Role: domain.RoleManager}

	profiles.EXPECT().GetBySubjectID(gomock.Any(), "subject-123").Return(identity, nil)
	profiles.EXPECT().Create(gomock.Any(), identity).Return(nil)

	got, err := gw.GetProfile(context.Background(), "subject-123")
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	assert.NoError(t, gw.CreateProfile(context.Background(), identity))
}

func TestIdentityGateway_EmitDropsWhenBufferFull(t *testing.T) {
	gw, client, _ := newTestGateway(t)

	client.EXPECT().ExtendSession(gomock.Any()).Return(liveSession(), nil).AnyTimes()

	// Nobody drains: emits past the buffer must drop instead of blocking.
	for i := 0; i < eventBuffer+4; i++ {
		_, err := gw.RefreshSession(context.Background())
		require.NoError(t, err)
	}

	drained := 0
	for {
		select {
		case <-gw.StateChanges():
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, eventBuffer, drained)
}

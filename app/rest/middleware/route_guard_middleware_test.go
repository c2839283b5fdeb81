package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
	mock_port "github.com/aisandler/marketing-calendar-saas-sub001/app/mocks"
)

func newTestGuard(t *testing.T) (*RouteGuard, *mock_port.MockAuthLifecycle, *mock_port.MockSessionCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	lifecycle := mock_port.NewMockAuthLifecycle(ctrl)
	cache := mock_port.NewMockSessionCache(ctrl)

	return NewRouteGuard(lifecycle, cache, slog.Default()), lifecycle, cache
}

func runGuarded(mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/app/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func managerIdentity() *domain.Identity {
	return &domain.Identity{
		ID:    "subject-123",
		Email: "test@example.com",
		Role:  domain.RoleManager,
	}
}

func TestRouteGuard_RequireIdentity(t *testing.T) {
	t.Run("resolved identity passes and is exposed to handlers", func(t *testing.T) {
		guard, lifecycle, _ := newTestGuard(t)

		lifecycle.EXPECT().Current().Return(domain.AuthState{
			Identity: managerIdentity(),
			Phase:    domain.PhaseIdle,
		})

		rec, c, err := runGuarded(guard.RequireIdentity())
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "subject-123", c.Get("subject_id"))
		assert.Equal(t, "manager", c.Get("identity_role"))
		assert.Equal(t, "test@example.com", c.Get("identity_email"))
	})

	t.Run("pending resolution answers 503 with retry hint", func(t *testing.T) {
		guard, lifecycle, _ := newTestGuard(t)

		lifecycle.EXPECT().Current().Return(domain.AuthState{
			Loading: true,
			Phase:   domain.PhaseSpinner,
		})

		rec, _, err := runGuarded(guard.RequireIdentity())
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "resolving")
	})

	t.Run("stalled resolution with a cached record reports reconnecting", func(t *testing.T) {
		guard, lifecycle, cache := newTestGuard(t)

		lifecycle.EXPECT().Current().Return(domain.AuthState{
			Loading: true,
			Phase:   domain.PhaseStalled,
		})
		cache.EXPECT().Get().Return(domain.NewCachedRecord(managerIdentity(), time.Now()))

		rec, _, err := runGuarded(guard.RequireIdentity())
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "reconnecting")
	})

	t.Run("stalled resolution without a cached record keeps resolving", func(t *testing.T) {
		guard, lifecycle, cache := newTestGuard(t)

		lifecycle.EXPECT().Current().Return(domain.AuthState{
			Loading: true,
			Phase:   domain.PhaseStalled,
		})
		cache.EXPECT().Get().Return(nil)

		rec, _, err := runGuarded(guard.RequireIdentity())
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "resolving")
	})

	t.Run("no identity and not loading answers 401", func(t *testing.T) {
		guard, lifecycle, _ := newTestGuard(t)

		lifecycle.EXPECT().Current().Return(domain.AuthState{Phase: domain.PhaseIdle})

		_, _, err := runGuarded(guard.RequireIdentity())
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestRouteGuard_RequireRole(t *testing.T) {
	tests := []struct {
		name       string
		state      domain.AuthState
		roles      []domain.Role
		expectCode int
	}{
		{
			name:       "matching role passes",
			state:      domain.AuthState{Identity: managerIdentity()},
			roles:      []domain.Role{domain.RoleAdmin, domain.RoleManager},
			expectCode: http.StatusOK,
		},
		{
			name:       "insufficient role is forbidden",
			state:      domain.AuthState{Identity: &domain.Identity{ID: "subject-123", Role: domain.RoleContributor}},
			roles:      []domain.Role{domain.RoleAdmin},
			expectCode: http.StatusForbidden,
		},
		{
			name:       "unauthenticated is rejected",
			state:      domain.AuthState{},
			roles:      []domain.Role{domain.RoleAdmin},
			expectCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, lifecycle, _ := newTestGuard(t)
			lifecycle.EXPECT().Current().Return(tt.state)

			rec, _, err := runGuarded(guard.RequireRole(tt.roles...))
			if tt.expectCode == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
			} else {
				httpErr, ok := err.(*echo.HTTPError)
				require.True(t, ok)
				assert.Equal(t, tt.expectCode, httpErr.Code)
			}
		})
	}
}

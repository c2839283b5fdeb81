package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/port"
)

// RouteGuard gates screen access on the {identity, loading} snapshot. It
// never mutates lifecycle state: the cache read it performs while the
// backend is slow is a pure read.
type RouteGuard struct {
	lifecycle port.AuthLifecycle
	cache     port.SessionCache
	logger    *slog.Logger
}

// NewRouteGuard creates a new route guard
func NewRouteGuard(lifecycle port.AuthLifecycle, cache port.SessionCache, logger *slog.Logger) *RouteGuard {
	return &RouteGuard{
		lifecycle: lifecycle,
		cache:     cache,
		logger:    logger.With("component", "route_guard"),
	}
}

// RequireIdentity admits requests with a resolved identity. While an identity
// operation is pending the guard answers 503; once the operation has stalled
// past the hard deadline it distinguishes "reconnecting" (a plausibly valid
// session exists in the cache) from plain unauthenticated.
func (g *RouteGuard) RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := g.lifecycle.Current()

			if state.Authenticated() {
				c.Set("subject_id", state.Identity.ID)
				c.Set("identity_role", string(state.Identity.Role))
				c.Set("identity_email", state.Identity.Email)
				return next(c)
			}

			if state.Loading {
				if state.Phase == domain.PhaseStalled && g.cache.Get() != nil {
					// The backend is slow but the cached record suggests a
					// live session: tell the client to keep waiting.
					return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
						"status": "reconnecting",
					})
				}
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
					"status": "resolving",
				})
			}

			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
	}
}

// RequireRole admits only identities holding one of the given roles
func (g *RouteGuard) RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := g.lifecycle.Current()
			if !state.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			for _, role := range roles {
				if state.Identity.Role == role {
					return next(c)
				}
			}

			g.logger.Warn("access denied",
				"subject_id", state.Identity.ID,
				"role", state.Identity.Role)
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

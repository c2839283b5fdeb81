package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker func(ctx context.Context) error

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	logger   *slog.Logger
	checkers map[string]HealthChecker
}

// NewHealthHandler creates a new health handler with named dependency checks
func NewHealthHandler(logger *slog.Logger, checkers map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{
		logger:   logger.With("component", "health_handler"),
		checkers: checkers,
	}
}

// HealthCheck handles GET /v1/health
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "marketing-calendar-auth",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck handles GET /v1/ready: all dependencies must answer
func (h *HealthHandler) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			h.logger.Warn("readiness check failed", "dependency", name, "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not_ready",
				"failed": name,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ready"})
}

// LivenessCheck handles GET /v1/live
func (h *HealthHandler) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "alive"})
}

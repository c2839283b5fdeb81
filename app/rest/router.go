package rest

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/port"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/rest/handlers"
	custommw "github.com/aisandler/marketing-calendar-saas-sub001/app/rest/middleware"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger         *slog.Logger
	Lifecycle      port.AuthLifecycle
	Cache          port.SessionCache
	HealthCheckers map[string]handlers.HealthChecker
	AllowedOrigins []string
	EnableDebug    bool
}

// NewRouter creates and configures the Echo router
func NewRouter(config RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Debug = config.EnableDebug

	authHandler := handlers.NewAuthHandler(config.Lifecycle, config.Logger)
	healthHandler := handlers.NewHealthHandler(config.Logger, config.HealthCheckers)

	routeGuard := custommw.NewRouteGuard(config.Lifecycle, config.Cache, config.Logger)
	rateLimiter := custommw.NewRateLimiter()

	// Global middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(custommw.CORS(config.AllowedOrigins))
	e.Use(custommw.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())

	v1 := e.Group("/v1")

	// Health endpoints (no auth required)
	v1.GET("/health", healthHandler.HealthCheck)
	v1.GET("/ready", healthHandler.ReadinessCheck)
	v1.GET("/live", healthHandler.LivenessCheck)

	// Auth lifecycle endpoints
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/password/reset", authHandler.ResetPassword)
	auth.GET("/me", authHandler.Me)

	// Guarded surface: the domain screens (campaigns, briefs, resources)
	// mount here behind the route guard.
	guarded := v1.Group("/app", routeGuard.RequireIdentity())
	guarded.GET("/session", authHandler.Me)

	return e
}

package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/config"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/driver/kratos"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/driver/localstore"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/driver/postgres"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/gateway"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/port"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/rest"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/rest/handlers"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/usecase"
)

// Container holds all dependencies for the application
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Drivers
	DB           *postgres.DB
	KratosClient *kratos.Client
	Cache        port.SessionCache

	// Gateways
	IdentityGateway port.IdentityGateway

	// Usecases
	Lifecycle *usecase.LifecycleUseCase
}

// NewContainer creates and initializes a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	var err error

	container.DB, err = postgres.NewConnection(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	container.KratosClient, err = kratos.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Kratos client: %w", err)
	}

	container.Cache, err = localstore.New(cfg.CacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session cache: %w", err)
	}

	profileRepository := postgres.NewProfileRepository(container.DB.Pool(), logger)

	container.IdentityGateway = gateway.NewIdentityGateway(container.KratosClient, profileRepository, logger)

	container.Lifecycle = usecase.NewLifecycleUseCase(
		container.IdentityGateway,
		container.Cache,
		cfg.ResetRedirectURL,
		logger,
	)

	logger.Info("container initialized")

	return container, nil
}

// Start runs the startup session check and activates the state-change drain
func (c *Container) Start(ctx context.Context) error {
	return c.Lifecycle.Start(ctx)
}

// CreateRouter creates and returns a fully configured Echo router
func (c *Container) CreateRouter() *echo.Echo {
	routerConfig := rest.RouterConfig{
		Logger:    c.Logger,
		Lifecycle: c.Lifecycle,
		Cache:     c.Cache,
		HealthCheckers: map[string]handlers.HealthChecker{
			"database": c.DB.HealthCheck,
			"kratos":   c.KratosClient.HealthCheck,
		},
		AllowedOrigins: c.Config.AllowedOrigins,
		EnableDebug:    c.Config.LogLevel == "debug",
	}

	return rest.NewRouter(routerConfig)
}

// Close closes all resources
func (c *Container) Close() error {
	if c.Lifecycle != nil {
		c.Lifecycle.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}

	c.Logger.Info("container closed")
	return nil
}

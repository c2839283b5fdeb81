package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service
type Config struct {
	// Server
	Port     string `yaml:"port"`
	Host     string `yaml:"host"`
	LogLevel string `yaml:"log_level"`

	// Identity backend
	KratosPublicURL string `yaml:"kratos_public_url"`
	KratosAdminURL  string `yaml:"kratos_admin_url"`

	// Profile database
	DatabaseHost     string `yaml:"db_host"`
	DatabasePort     string `yaml:"db_port"`
	DatabaseName     string `yaml:"db_name"`
	DatabaseUser     string `yaml:"db_user"`
	DatabasePassword string `yaml:"-"`
	DatabaseSSLMode  string `yaml:"db_ssl_mode"`

	// Session cache
	CacheDir string `yaml:"cache_dir"`

	// Password reset
	ResetRedirectURL string `yaml:"reset_redirect_url"`

	// CORS
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) with
// environment variables taking precedence
func Load() (*Config, error) {
	config := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	config.applyEnv()

	if config.DatabasePassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if config.KratosPublicURL == "" {
		return nil, fmt.Errorf("KRATOS_PUBLIC_URL is required")
	}
	if config.KratosAdminURL == "" {
		return nil, fmt.Errorf("KRATOS_ADMIN_URL is required")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Port:             "9500",
		Host:             "0.0.0.0",
		LogLevel:         "info",
		DatabaseHost:     "profiles-postgres",
		DatabasePort:     "5432",
		DatabaseName:     "profiles_db",
		DatabaseUser:     "profiles_user",
		DatabaseSSLMode:  "require",
		CacheDir:         "/var/lib/marketing-calendar/session-cache",
		ResetRedirectURL: "/reset-password",
		AllowedOrigins:   []string{"http://localhost:5173"},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	setIfPresent(&c.Port, "PORT")
	setIfPresent(&c.Host, "HOST")
	setIfPresent(&c.LogLevel, "LOG_LEVEL")
	setIfPresent(&c.KratosPublicURL, "KRATOS_PUBLIC_URL")
	setIfPresent(&c.KratosAdminURL, "KRATOS_ADMIN_URL")
	setIfPresent(&c.DatabaseHost, "DB_HOST")
	setIfPresent(&c.DatabasePort, "DB_PORT")
	setIfPresent(&c.DatabaseName, "DB_NAME")
	setIfPresent(&c.DatabaseUser, "DB_USER")
	setIfPresent(&c.DatabasePassword, "DB_PASSWORD")
	setIfPresent(&c.DatabaseSSLMode, "DB_SSL_MODE")
	setIfPresent(&c.CacheDir, "CACHE_DIR")
	setIfPresent(&c.ResetRedirectURL, "RESET_REDIRECT_URL")

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitAndTrim(origins)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.CacheDir == "" {
		return fmt.Errorf("cache directory is required")
	}

	return nil
}

// ServerAddr returns the host:port address to bind
func (c *Config) ServerAddr() string {
	return c.Host + ":" + c.Port
}

// ShutdownTimeout is how long a graceful shutdown may take
const ShutdownTimeout = 30 * time.Second

// Helper functions

func setIfPresent(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

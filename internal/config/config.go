package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv      string `env:"GO_ENV" envDefault:"development"`
	Platform   string `env:"PLATFORM" envDefault:"android"`
	AppVersion string `env:"APP_VERSION" envDefault:"1.0.0"`

	// Service Ports (TCP_PORT=0 disables the dev transport)
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`
	TCPPort  int `env:"TCP_PORT" envDefault:"8081"`

	// Content attach tokens
	AttachSecret   string        `env:"ATTACH_SECRET,required"`
	AttachTokenTTL time.Duration `env:"ATTACH_TOKEN_TTL" envDefault:"24h"`

	// Settings storage
	SettingsBackend   string `env:"SETTINGS_BACKEND" envDefault:"sqlite"`
	SettingsNamespace string `env:"SETTINGS_NAMESPACE"`
	SQLitePath        string `env:"SQLITE_PATH" envDefault:"./data/bridge.db"`

	// Redis
	RedisURL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Receipt ledger (optional)
	DatabaseURL string `env:"DATABASE_URL"`

	// Capability bus
	NATSURL           string        `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSubjectPrefix string        `env:"NATS_SUBJECT_PREFIX" envDefault:"coquiz"`
	CapabilityTimeout time.Duration `env:"CAPABILITY_TIMEOUT" envDefault:"2s"`

	// App profile
	ProfilePath string `env:"PROFILE_PATH" envDefault:"./profile.yaml"`

	// Development
	LogLevel  string `env:"LOG_LEVEL" envDefault:"debug"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// a missing .env is fine, system env vars still apply
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Platform = strings.ToLower(cfg.Platform)
	cfg.SettingsBackend = strings.ToLower(cfg.SettingsBackend)
	return cfg, nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errs []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, "HTTP_PORT must be between 1 and 65535")
	}
	if c.TCPPort < 0 || c.TCPPort > 65535 {
		errs = append(errs, "TCP_PORT must be between 0 and 65535")
	}
	if c.TCPPort != 0 && c.TCPPort == c.HTTPPort {
		errs = append(errs, "TCP_PORT must differ from HTTP_PORT")
	}

	validPlatforms := []string{"android", "ios"}
	if !slices.Contains(validPlatforms, c.Platform) {
		errs = append(errs, fmt.Sprintf("PLATFORM must be one of: %s", strings.Join(validPlatforms, ", ")))
	}

	validBackends := []string{"sqlite", "redis", "memory"}
	if !slices.Contains(validBackends, c.SettingsBackend) {
		errs = append(errs, fmt.Sprintf("SETTINGS_BACKEND must be one of: %s", strings.Join(validBackends, ", ")))
	}
	if c.SettingsBackend == "sqlite" && c.SQLitePath == "" {
		errs = append(errs, "SQLITE_PATH is required for the sqlite settings backend")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	// attach tokens are HS256, at least 32 bytes of secret
	if len(c.AttachSecret) < 32 {
		errs = append(errs, "ATTACH_SECRET should be at least 32 characters long")
	}
	if c.AttachTokenTTL <= 0 {
		errs = append(errs, "ATTACH_TOKEN_TTL must be positive")
	}
	if c.CapabilityTimeout <= 0 {
		errs = append(errs, "CAPABILITY_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned when no AI credential is configured.
var ErrMissingAPIKey = errors.New("AI_API_KEY must be set")

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel string // "debug", "info", "warn", "error"

	// Valkey (Redis-compatible) for sessions and the advisory cache.
	// An empty host keeps both in process memory.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI provider settings
	AIProvider  string // "gemini", "openai"
	AIAPIKey    string
	AIModel     string // empty selects the provider default
	AIBaseURL   string // empty selects the public endpoint
	AITimeout   time.Duration
	AIRateLimit int // advisory requests per client per minute
	AICacheTTL  time.Duration

	// Admin area. A bcrypt hash of the shared admin password.
	AdminPasswordHash string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if the AI credential
// is missing, a value is malformed, or production mode lacks an admin
// password.
func Load() (*Config, error) {
	cfg := &Config{
		Host:     envOrDefault("APP_HOST", "0.0.0.0"),
		Port:     envOrDefault("APP_PORT", "8080"),
		Env:      envOrDefault("APP_ENV", "development"),
		LogLevel: strings.ToLower(envOrDefault("LOG_LEVEL", "info")),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider: strings.ToLower(envOrDefault("AI_PROVIDER", "gemini")),
		AIAPIKey:   os.Getenv("AI_API_KEY"),
		AIModel:    os.Getenv("AI_MODEL"),
		AIBaseURL:  os.Getenv("AI_BASE_URL"),

		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}

	var err error
	if cfg.AITimeout, err = durationOrDefault("AI_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.AICacheTTL, err = durationOrDefault("AI_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.AIRateLimit, err = intOrDefault("AI_RATE_LIMIT", 10); err != nil {
		return nil, err
	}

	if cfg.AIAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch cfg.AIProvider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("AI_PROVIDER %q is not supported (gemini, openai)", cfg.AIProvider)
	}

	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return nil, fmt.Errorf("LOG_LEVEL %q is not supported (debug, info, warn, error)", cfg.LogLevel)
	}

	if cfg.Env == "production" && cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UseValkey reports whether sessions and the advisory cache live in Valkey.
func (c *Config) UseValkey() bool {
	return c.ValkeyHost != ""
}

// AdminOpen reports whether the admin area is reachable without a login.
// Only development mode without a configured password qualifies.
func (c *Config) AdminOpen() bool {
	return c.IsDev() && c.AdminPasswordHash == ""
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func intOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

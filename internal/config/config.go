// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/settleup/internal/calculator"
)

const devJWTSecret = "dev-only-change-me"

type Config struct {
	// Web Server
	Port               int
	CORSAllowedOrigins []string

	// Database
	DBPath string

	// Session
	JWTSecret string
	TokenTTL  time.Duration

	// Logging
	LogLevel string

	// Summaries
	MaxExpensesPerSummary int
	SummaryCacheTTL       time.Duration
}

// Load reads the configuration from the environment, after loading a .env
// file from the working directory when one exists.
func Load() (*Config, error) {
	// Non-fatal if missing
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:             getEnvDefault("DB_PATH", "./data/settleup.db"),
		JWTSecret:          getEnvDefault("JWT_SECRET", devJWTSecret),
		LogLevel:           getEnvDefault("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitList(getEnvDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.MaxExpensesPerSummary, err = getEnvInt("MAX_EXPENSES_PER_SUMMARY", calculator.DefaultMaxExpenses); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SummaryCacheTTL, err = getEnvDuration("SUMMARY_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.MaxExpensesPerSummary < 0 {
		return nil, fmt.Errorf("MAX_EXPENSES_PER_SUMMARY must not be negative")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}

	return cfg, nil
}

// UsesDevSecret reports whether the JWT secret was left at its development default.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultVoterHashSalt is only acceptable outside production
const DefaultVoterHashSalt = "dev-salt-change-me"

// Supported DATABASE_TYPE values
const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

// Config holds all configuration values for the application
type Config struct {
	Port              string
	AllowedOrigins    []string
	LogLevel          string
	Environment       string
	DatabaseType      string
	DatabaseURL       string
	SQLitePath        string
	RedisURL          string
	VoterHashSalt     string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	SidebarCacheTTL   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		AllowedOrigins:    parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Environment:       getEnv("ENVIRONMENT", "production"),
		DatabaseType:      strings.ToLower(getEnv("DATABASE_TYPE", DatabasePostgres)),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "data/decisions.db"),
		RedisURL:          getEnv("REDIS_URL", ""),
		VoterHashSalt:     getEnv("VOTER_HASH_SALT", DefaultVoterHashSalt),
		RateLimitEnabled:  getBoolEnv("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Hour),
		SidebarCacheTTL:   getDurationEnv("SIDEBAR_CACHE_TTL", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot work at runtime
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATABASE_TYPE=%s", DatabasePostgres)
		}
	case DatabaseSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DATABASE_TYPE=%s", DatabaseSQLite)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE %q (use %s or %s)", c.DatabaseType, DatabasePostgres, DatabaseSQLite)
	}

	if c.IsProduction() && (c.VoterHashSalt == "" || c.VoterHashSalt == DefaultVoterHashSalt) {
		return fmt.Errorf("VOTER_HASH_SALT must be set to a secret value in production")
	}

	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDurationEnv parses values like "30s" or "1h"
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

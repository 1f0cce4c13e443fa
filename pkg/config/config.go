// Package config provides application configuration management from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all audit trail service configuration
type Config struct {
	Server Server
	Logs   Logs
	Cache  Cache
	// PostgresURL connects the directory lookups; empty selects the
	// in-memory directory (development and tests)
	PostgresURL string
	LogLevel    string
}

// Server holds HTTP server configuration
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Logs holds audit log storage configuration
type Logs struct {
	// Folder is the directory the platform's audit writer appends into
	Folder string
	// Prefix matches the live log file and its rotated siblings
	Prefix string
	// MaxConcurrentReads bounds parallel file scans per export
	MaxConcurrentReads int
}

// Cache holds parse cache configuration
type Cache struct {
	Enabled bool
	// MaxFiles bounds how many parsed files are retained
	MaxFiles int
	TTL      time.Duration
	// PurgeSchedule is a cron expression for the periodic full purge
	PurgeSchedule string
}

// Load reads configuration from AUDIT_-prefixed environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: Server{
			Addr:            getEnv("AUDIT_HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvDuration("AUDIT_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("AUDIT_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvDuration("AUDIT_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("AUDIT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Logs: Logs{
			Folder:             getEnv("AUDIT_LOG_FOLDER", "/var/log/platform/audit"),
			Prefix:             getEnv("AUDIT_LOG_PREFIX", "audit"),
			MaxConcurrentReads: getEnvInt("AUDIT_MAX_CONCURRENT_READS", 4),
		},
		Cache: Cache{
			Enabled:       getEnvBool("AUDIT_CACHE_ENABLED", true),
			MaxFiles:      getEnvInt("AUDIT_CACHE_MAX_FILES", 32),
			TTL:           getEnvDuration("AUDIT_CACHE_TTL", 5*time.Minute),
			PurgeSchedule: getEnv("AUDIT_CACHE_PURGE_SCHEDULE", "@hourly"),
		},
		PostgresURL: getEnv("AUDIT_POSTGRES_URL", ""),
		LogLevel:    getEnv("AUDIT_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Logs.Folder == "" {
		return fmt.Errorf("audit log folder is required")
	}
	if c.Logs.Prefix == "" {
		return fmt.Errorf("audit log prefix is required")
	}
	if c.Logs.MaxConcurrentReads < 1 {
		return fmt.Errorf("max concurrent reads must be at least 1")
	}
	if c.Cache.Enabled && c.Cache.MaxFiles < 1 {
		return fmt.Errorf("cache max files must be at least 1 when the cache is enabled")
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

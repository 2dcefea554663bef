package config

import (
	"os"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	DatabaseURL string

	// RetentionDays is how long ingested events are kept before the
	// retention sweeper deletes them.
	RetentionDays int

	ListenAddr string
}

// Load reads configuration from environment variables and applies
func Load() *Config {
	cfg := &Config{
		DatabaseURL:   os.Getenv("APP_DATABASE_URL"),
		ListenAddr:    getenv("APP_LISTEN_ADDR", ":3030"),
		RetentionDays: 7,
	}

	if v := os.Getenv("APP_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.RetentionDays = days
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

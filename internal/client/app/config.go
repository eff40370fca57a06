package app

import (
	"os"
	"time"
)

type Config struct {
	APIURL       string // Optional: backend base URL (default: http://localhost:8000)
	DatabaseFile string // Optional: path to SQLite client state file (default: ./coincraft.db)

	HTTPTimeout      time.Duration // Optional: per-request timeout (default: 10s)
	CacheTTL         time.Duration // Optional: freshness window for cached data (default: 5m)
	GuardTimeout     time.Duration // Optional: deadline on the guard's freshness check (default: 5s)
	ValidateInterval time.Duration // Optional: how often the session revalidates (default: 30s)

	CredentialKey string // Optional: extra material for sealing child passwords

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
}

func LoadConfig() Config {
	return Config{
		APIURL:       getEnvOrDefault("COINCRAFT_API_URL", "http://localhost:8000"),
		DatabaseFile: getEnvOrDefault("COINCRAFT_DATABASE_FILE", "coincraft.db"),

		HTTPTimeout:      getEnvDurationOrDefault("COINCRAFT_HTTP_TIMEOUT", 10*time.Second),
		CacheTTL:         getEnvDurationOrDefault("COINCRAFT_CACHE_TTL", 5*time.Minute),
		GuardTimeout:     getEnvDurationOrDefault("COINCRAFT_GUARD_TIMEOUT", 5*time.Second),
		ValidateInterval: getEnvDurationOrDefault("COINCRAFT_VALIDATE_INTERVAL", 30*time.Second),

		CredentialKey: os.Getenv("COINCRAFT_CREDENTIAL_KEY"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

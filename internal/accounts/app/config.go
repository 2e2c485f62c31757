package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile string // Path to the SQLite database file (default: ./accounts.db)
	PepperFile   string // Optional: file holding the password-hash pepper; empty disables peppering

	SessionDuration time.Duration // Optional: session lifetime; 0 means sessions never expire
	LoginAttempts   int           // Login attempts allowed per window per email (default: 5)
	LoginWindow     time.Duration // Window for the login throttle (default: 1m)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:    getEnvOrDefault("ACCOUNTD_DATABASE_FILE", "accounts.db"),
		PepperFile:      os.Getenv("ACCOUNTD_PEPPER_FILE"),
		SessionDuration: getEnvDurationOrDefault("SESSION_DURATION", 0),
		LoginAttempts:   getEnvIntOrDefault("LOGIN_ATTEMPTS", 5),
		LoginWindow:     getEnvDurationOrDefault("LOGIN_WINDOW", time.Minute),
		Env:             getEnvOrDefault("ENV", "dev"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as a duration (e.g. "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Fall back to integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

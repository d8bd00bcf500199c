// Package config provides configuration for the Pracare backend.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// AI completion endpoint
	AIBaseURL string
	AIModel   string
	AIAPIKey  string
	AITimeout time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8000),
		DatabaseURL: getEnv("DATABASE_URL", "file:pracare.db?cache=shared&mode=rwc"),
		AIBaseURL:   getEnv("AI_BASE_URL", "http://localhost:11434"),
		AIModel:     getEnv("AI_MODEL", "pracare"),
		AIAPIKey:    getEnv("AI_API_KEY", ""),
		AITimeout:   time.Duration(getEnvInt("AI_TIMEOUT_MS", 120000)) * time.Millisecond,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// Package config provides configuration loading and management for the application.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Base URL of the opportunities backend
	BackendURL string

	// Interval between automatic re-fetches of the current filter key
	PollInterval time.Duration

	// How long a cached response is served without a network call
	FreshnessWindow time.Duration

	// Automatic retries per fetch before a failure is surfaced
	FetchRetries int

	// Per-request timeout
	RequestTimeout time.Duration

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// Port for the /metrics and /healthz listener
	MetricsPort string

	// Fetch admission rate limit (guards keystroke-driven bursts)
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load creates a new Config from environment variables
func Load() Config {
	return Config{
		BackendURL:      GetEnvOrDefault("BACKEND_URL", "http://localhost:8080"),
		PollInterval:    GetEnvAsDuration("POLL_INTERVAL", 30*time.Second),
		FreshnessWindow: GetEnvAsDuration("FRESHNESS_WINDOW", 5*time.Minute),
		FetchRetries:    GetEnvAsInt("FETCH_RETRIES", 2),
		RequestTimeout:  GetEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		OtelEndpoint:    GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		MetricsPort:     GetEnvOrDefault("METRICS_PORT", "9100"),
		RateLimitRPS:    GetEnvAsFloat("RATE_LIMIT_RPS", 25.0),
		RateLimitBurst:  GetEnvAsInt("RATE_LIMIT_BURST", 50),
	}
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

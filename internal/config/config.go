package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

// Config holds all configuration for the MCP server
type Config struct {
	// Server configuration
	Mode     string // "stdio" or "http"
	Profile  string // Profile to expose: "core", "workouts", "heart_rate" or "all"
	LogLevel string // "debug", "info", "warn", "error"

	// HTTP server configuration
	HTTPPort           int      // HTTP server port
	CORSAllowedOrigins []string // Allowed CORS origins

	// Health data API
	APIBaseURL  string        // Root URL of the external API, without /api/v1
	APITimeout  time.Duration // Bound on each upstream request
	PagingLimit int           // Default page size when a caller omits limit

	// Optional features
	MetricsEnabled bool
}

// Load loads configuration from environment variables
// Priority: environment variables > defaults
func Load() (*Config, error) {
	timeout, err := getTimeoutEnv("EXTERNAL_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	port, err := getIntEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	pagingLimit, err := getIntEnv("PAGING_LIMIT", tools.DefaultLimit)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Mode:     getEnv("MCP_MODE", "stdio"),
		Profile:  getEnv("MCP_PROFILE", "all"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// HTTP server configuration
		HTTPPort:           port,
		CORSAllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{}),

		// Health data API
		APIBaseURL:  getEnv("EXTERNAL_API_BASE_URL", "http://localhost:8000"),
		APITimeout:  timeout,
		PagingLimit: pagingLimit,

		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),
	}

	// Validate mode
	if cfg.Mode != "stdio" && cfg.Mode != "http" {
		return nil, fmt.Errorf("invalid MCP_MODE: %s (must be 'stdio' or 'http')", cfg.Mode)
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getBoolEnv gets a boolean environment variable
func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// getIntEnv gets an integer environment variable; a malformed value is an error
func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, value)
	}
	return intValue, nil
}

// getTimeoutEnv reads a timeout given either as a Go duration ("30s") or as seconds ("2.5")
func getTimeoutEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := ParseTimeout(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// ParseTimeout parses a Go duration ("30s", "1m") or a number of seconds ("30", "2.5")
func ParseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a duration nor a number of seconds", value)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// getSliceEnv gets a comma-separated list environment variable
func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Mode != "stdio" && c.Mode != "http" {
		return fmt.Errorf("invalid mode: %s (must be 'stdio' or 'http')", c.Mode)
	}

	if !tools.IsValidProfile(c.Profile) {
		return fmt.Errorf("invalid profile: %s", c.Profile)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.Mode == "http" && (c.HTTPPort < 1 || c.HTTPPort > 65535) {
		return fmt.Errorf("invalid port: %d", c.HTTPPort)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid external API base URL: %q (must be an absolute http or https URL)", c.APIBaseURL)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("invalid external API timeout: %s (must be positive)", c.APITimeout)
	}

	if c.PagingLimit < 1 || c.PagingLimit > tools.MaxLimit {
		return fmt.Errorf("invalid paging limit: %d (must be between 1 and %d)", c.PagingLimit, tools.MaxLimit)
	}

	return nil
}

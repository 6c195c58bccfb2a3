package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Sync      SyncConfig      `yaml:"sync"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// DatabaseConfig contains database settings.
// Type is "mysql", "postgres" or "none" for a local-only store.
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// SyncConfig controls remote mirroring
type SyncConfig struct {
	// OwnerID is the fallback identity when a request carries none
	OwnerID        string `yaml:"owner_id"`
	HydrateOnStart bool   `yaml:"hydrate_on_start"`
	// Schedule is a cron spec for periodic hydration; empty disables it
	Schedule             string `yaml:"schedule"`
	RemoteTimeoutSeconds int    `yaml:"remote_timeout_seconds"`
	ShutdownWaitSeconds  int    `yaml:"shutdown_wait_seconds"`
	// BreakerThreshold is the consecutive failure count that stops remote calls; 0 disables the breaker
	BreakerThreshold    int `yaml:"breaker_threshold"`
	BreakerResetSeconds int `yaml:"breaker_reset_seconds"`
}

// RateLimitConfig limits the bulk push endpoint
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type: "postgres",
		},
		Search: SearchConfig{
			Enabled: false,
			Meilisearch: MeilisearchConfig{
				Index: "properties",
			},
		},
		Sync: SyncConfig{
			HydrateOnStart:       true,
			Schedule:             "",
			RemoteTimeoutSeconds: 15,
			ShutdownWaitSeconds:  10,
			BreakerThreshold:     5,
			BreakerResetSeconds:  60,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 2,
			RequestsPerHour:   20,
			RequestsPerDay:    100,
		},
		Server: ServerConfig{
			Port:           "8084",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	// Read file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetRemoteTimeout returns the per-call remote timeout as a duration
func (c *SyncConfig) GetRemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutSeconds) * time.Second
}

// GetShutdownWait returns how long shutdown waits for in-flight remote calls
func (c *SyncConfig) GetShutdownWait() time.Duration {
	return time.Duration(c.ShutdownWaitSeconds) * time.Second
}

// GetBreakerReset returns how long an open breaker waits before retrying
func (c *SyncConfig) GetBreakerReset() time.Duration {
	return time.Duration(c.BreakerResetSeconds) * time.Second
}

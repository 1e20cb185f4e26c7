package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"township-rental-portal/internal/payments"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig          `yaml:"database"`
	Search    SearchConfig            `yaml:"search"`
	Gateway   payments.GatewayConfig  `yaml:"gateway"`
	RateLimit RateLimitConfig         `yaml:"rate_limit"`
	Scheduler SchedulerConfig         `yaml:"scheduler"`
	Cleanup   CleanupConfig           `yaml:"cleanup"`
	Logging   LoggingConfig           `yaml:"logging"`
	Timezone  string                  `yaml:"timezone"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	// MirrorListings enables the Postgres listing mirror read path.
	MirrorListings bool `yaml:"mirror_listings"`
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
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	APIKey  string `yaml:"api_key"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// SchedulerConfig contains background job settings
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`
	// DailyRunTime is when the daily billing pass runs, "HH:MM".
	DailyRunTime string `yaml:"daily_run_time"`
	// VerifyIntervalSeconds is how often the payment verification worker
	// polls for due payments.
	VerifyIntervalSeconds int `yaml:"verify_interval_seconds"`
}

// CleanupConfig contains data retention settings
type CleanupConfig struct {
	Enabled                   bool `yaml:"enabled"`
	ViewingRetentionDays      int  `yaml:"viewing_retention_days"`
	NotificationRetentionDays int  `yaml:"notification_retention_days"`
	MaxDeletesPerRun          int  `yaml:"max_deletes_per_run"`
	DryRun                    bool `yaml:"dry_run"`
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
			Type: "mysql",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			RequestsPerHour:   1200,
		},
		Scheduler: SchedulerConfig{
			Enabled:               true,
			DailyRunTime:          "02:00",
			VerifyIntervalSeconds: 60,
		},
		Cleanup: CleanupConfig{
			Enabled:                   false,
			ViewingRetentionDays:      180,
			NotificationRetentionDays: 90,
			MaxDeletesPerRun:          500,
			DryRun:                    false,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
		Timezone: "Africa/Johannesburg",
	}
}

// LoadConfig loads configuration from a YAML file, then applies gateway
// environment overrides (OZOW_* and APP_URL) on top.
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	if _, err := os.Stat(filepath); !os.IsNotExist(err) {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvOverrides()

	return config, nil
}

// applyEnvOverrides lets deployments inject gateway credentials without
// writing them into the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OZOW_SITE_CODE"); v != "" {
		c.Gateway.SiteCode = v
	}
	if v := os.Getenv("OZOW_PRIVATE_KEY"); v != "" {
		c.Gateway.PrivateKey = v
	}
	if v := os.Getenv("OZOW_API_KEY"); v != "" {
		c.Gateway.APIKey = v
	}
	if v := os.Getenv("OZOW_API_URL"); v != "" {
		c.Gateway.CheckoutURL = v
	}
	if v := os.Getenv("APP_URL"); v != "" {
		c.Gateway.AppURL = v
	}
	if v := os.Getenv("OZOW_ENABLED"); v != "" {
		c.Gateway.Enabled = v == "true"
	}
	if v := os.Getenv("OZOW_IS_TEST"); v != "" {
		c.Gateway.IsTest = v == "true"
	}
}

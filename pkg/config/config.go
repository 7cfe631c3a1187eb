package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrConfigurationMissing is returned by Validate when a required key is absent.
var ErrConfigurationMissing = errors.New("required configuration missing")

// ErrConfigurationInvalid is returned by Validate when a key holds an unusable value.
var ErrConfigurationInvalid = errors.New("invalid configuration")

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	FirecrawlAPIKey       string `mapstructure:"FIRECRAWL_API_KEY"`
	FirecrawlBaseURL      string `mapstructure:"FIRECRAWL_BASE_URL"`
	ExtractTimeoutSeconds int    `mapstructure:"EXTRACT_TIMEOUT_SECONDS"`

	RefreshIntervalMinutes int     `mapstructure:"REFRESH_INTERVAL_MINUTES"`
	RefreshConcurrency     int     `mapstructure:"REFRESH_CONCURRENCY"`
	RefreshRatePerSecond   float64 `mapstructure:"REFRESH_RATE_PER_SECOND"`
	RefreshLockTTLMinutes  int     `mapstructure:"REFRESH_LOCK_TTL_MINUTES"`
}

var defaults = map[string]any{
	"SERVER_PORT":              "8080",
	"LOG_LEVEL":                "info",
	"POSTGRES_URL":             "",
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"FIRECRAWL_API_KEY":        "",
	"FIRECRAWL_BASE_URL":       "https://api.firecrawl.dev",
	"EXTRACT_TIMEOUT_SECONDS":  60,
	"REFRESH_INTERVAL_MINUTES": 60,
	"REFRESH_CONCURRENCY":      1,
	"REFRESH_RATE_PER_SECOND":  2.0,
	"REFRESH_LOCK_TTL_MINUTES": 30,
}

// Load reads configuration from an optional .env file and environment variables.
// Environment variables take precedence over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The file is optional; production is configured purely through the environment.
	_ = v.ReadInConfig()

	// Every key needs a default so that Unmarshal sees values coming only from the environment.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every required key is present.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.PostgresURL) == "" {
		missing = append(missing, "POSTGRES_URL")
	}
	if strings.TrimSpace(c.FirecrawlAPIKey) == "" {
		missing = append(missing, "FIRECRAWL_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}

	// Both durations bound blocking work, so zero cannot mean "unlimited".
	var invalid []string
	if c.ExtractTimeoutSeconds <= 0 {
		invalid = append(invalid, fmt.Sprintf("EXTRACT_TIMEOUT_SECONDS=%d must be positive", c.ExtractTimeoutSeconds))
	}
	if c.RefreshLockTTLMinutes <= 0 {
		invalid = append(invalid, fmt.Sprintf("REFRESH_LOCK_TTL_MINUTES=%d must be positive", c.RefreshLockTTLMinutes))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationInvalid, strings.Join(invalid, "; "))
	}
	return nil
}

func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.ExtractTimeoutSeconds) * time.Second
}

// RefreshInterval is zero when scheduled refreshing is disabled.
func (c *Config) RefreshInterval() time.Duration {
	if c.RefreshIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

func (c *Config) RefreshLockTTL() time.Duration {
	return time.Duration(c.RefreshLockTTLMinutes) * time.Minute
}

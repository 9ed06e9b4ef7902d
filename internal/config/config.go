// Package config provides configuration management for bookbatch using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultMaxOpenConns      = 25
	defaultMaxIdleConns      = 10
	defaultConnMaxIdleTime   = 30 * time.Minute
	defaultChunkSize         = 500
	defaultSeriesLimit       = 50
	defaultSeriesThreshold   = 0.90
	defaultRunRetentionDays  = 30
	defaultHTTPTimeout       = 60 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryDelay        = 5 * time.Second
	defaultPageSize          = 100
	defaultCollectWindowPast = 30
	defaultCollectWindowNext = 60
)

// Config holds all configuration for the application.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// BatchConfig holds batch execution configuration.
type BatchConfig struct {
	// ChunkSize is the number of processed items handed to a writer at once.
	ChunkSize int `mapstructure:"chunk_size"`
	// SeriesLimit caps how many unorganized books one series run loads.
	SeriesLimit int `mapstructure:"series_limit"`
	// SeriesThreshold is the minimum similarity score for an existing
	// series match.
	SeriesThreshold float64 `mapstructure:"series_threshold"`
	// RunRetention is how long finished job run rows are kept.
	RunRetention time.Duration `mapstructure:"run_retention"`
	// CollectWindowPastDays and CollectWindowNextDays define the default
	// publication date window when a run gives no explicit from/to.
	CollectWindowPastDays int `mapstructure:"collect_window_past_days"`
	CollectWindowNextDays int `mapstructure:"collect_window_next_days"`
}

// BridgeConfig holds the text-bridge sidecar configuration. The bridge
// exposes title normalization and embedding over HTTP.
type BridgeConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// OpenAIConfig holds the OpenAI-backed prompt client configuration, used
// when no bridge is configured.
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key" masq:"secret"`
	ChatModel      string `mapstructure:"chat_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// SourcesConfig holds per-site collection endpoints.
type SourcesConfig struct {
	NLGO   SourceConfig  `mapstructure:"nlgo"`
	Naver  SourceConfig  `mapstructure:"naver"`
	Aladin SourceConfig  `mapstructure:"aladin"`
	Kyobo  SourceConfig  `mapstructure:"kyobo"`
	HTTP   SourceNetwork `mapstructure:"http"`
}

// SourceConfig holds one site's endpoint and credentials.
type SourceConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key" masq:"secret"`
	Secret   string `mapstructure:"secret" masq:"secret"`
	PageSize int    `mapstructure:"page_size"`
}

// SourceNetwork holds HTTP behaviour shared by all site clients.
type SourceNetwork struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// ScheduleConfig holds the cron schedule per catalog job name.
type ScheduleConfig struct {
	// Jobs maps a job name to a cron expression. Empty means the job is
	// not scheduled.
	Jobs map[string]string `mapstructure:"jobs"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with BOOKBATCH_ and use underscores
// for nesting. Example: BOOKBATCH_DATABASE_DSN=books.db.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/bookbatch")
		v.AddConfigPath("$HOME/.bookbatch")
	}

	v.SetEnvPrefix("BOOKBATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults
// are in place.
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "bookbatch.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Batch defaults
	v.SetDefault("batch.chunk_size", defaultChunkSize)
	v.SetDefault("batch.series_limit", defaultSeriesLimit)
	v.SetDefault("batch.series_threshold", defaultSeriesThreshold)
	v.SetDefault("batch.run_retention", defaultRunRetentionDays*24*time.Hour)
	v.SetDefault("batch.collect_window_past_days", defaultCollectWindowPast)
	v.SetDefault("batch.collect_window_next_days", defaultCollectWindowNext)

	// Bridge defaults
	v.SetDefault("bridge.base_url", "")
	v.SetDefault("bridge.timeout", defaultHTTPTimeout)
	v.SetDefault("bridge.retry_attempts", defaultRetryAttempts)
	v.SetDefault("bridge.retry_delay", defaultRetryDelay)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")

	// Source defaults
	for _, site := range []string{"nlgo", "naver", "aladin", "kyobo"} {
		v.SetDefault("sources."+site+".base_url", "")
		v.SetDefault("sources."+site+".api_key", "")
		v.SetDefault("sources."+site+".secret", "")
		v.SetDefault("sources."+site+".page_size", defaultPageSize)
	}
	v.SetDefault("sources.http.timeout", defaultHTTPTimeout)
	v.SetDefault("sources.http.retry_attempts", defaultRetryAttempts)
	v.SetDefault("sources.http.retry_delay", defaultRetryDelay)

	// Schedule defaults
	v.SetDefault("schedule.jobs", map[string]string{})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Database validation
	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	// Batch validation
	if c.Batch.ChunkSize < 1 {
		return fmt.Errorf("batch.chunk_size must be at least 1")
	}
	if c.Batch.SeriesLimit < 1 {
		return fmt.Errorf("batch.series_limit must be at least 1")
	}
	if c.Batch.SeriesThreshold <= 0 || c.Batch.SeriesThreshold > 1 {
		return fmt.Errorf("batch.series_threshold must be in (0, 1]")
	}

	return nil
}

// PromptBackend names the prompt implementation this configuration selects.
// The bridge takes precedence when both are configured.
func (c *Config) PromptBackend() string {
	if c.Bridge.BaseURL != "" {
		return "bridge"
	}
	if c.OpenAI.APIKey != "" {
		return "openai"
	}
	return "none"
}

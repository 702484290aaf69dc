// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Chunk    ChunkConfig    `mapstructure:"chunk"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CrawlerConfig governs discovery budgets and politeness.
type CrawlerConfig struct {
	UserAgent             string `mapstructure:"user_agent"`
	MaxPagesDefault       int    `mapstructure:"max_pages_default"`
	MaxDepthDefault       int    `mapstructure:"max_depth_default"`
	FetchTimeoutSeconds   int    `mapstructure:"fetch_timeout_seconds"`
	ExtractTimeoutSeconds int    `mapstructure:"extract_timeout_seconds"`
}

// FetchTimeout is the per-request timeout for discovery fetches.
func (c CrawlerConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// ExtractTimeout is the per-request timeout for full content extraction.
func (c CrawlerConfig) ExtractTimeout() time.Duration {
	return time.Duration(c.ExtractTimeoutSeconds) * time.Second
}

// ChunkConfig bounds document chunking.
type ChunkConfig struct {
	MinSize int `mapstructure:"min_size"`
	MaxSize int `mapstructure:"max_size"`
	Overlap int `mapstructure:"overlap"`
}

// DatabaseConfig selects and configures the knowledge-base store.
type DatabaseConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
}

// StorageConfig selects and configures the raw snapshot archive.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// QueueConfig selects and configures the ingestion notification publisher.
type QueueConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from an optional file plus the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITEINGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.user_agent", "coraldesk-siteingest/0.1")
	v.SetDefault("crawler.max_pages_default", 100)
	v.SetDefault("crawler.max_depth_default", 3)
	v.SetDefault("crawler.fetch_timeout_seconds", 5)
	v.SetDefault("crawler.extract_timeout_seconds", 10)
	v.SetDefault("chunk.min_size", 2000)
	v.SetDefault("chunk.max_size", 5000)
	v.SetDefault("chunk.overlap", 200)
	v.SetDefault("database.provider", "noop")
	v.SetDefault("database.table", "chunks")
	v.SetDefault("storage.provider", "noop")
	v.SetDefault("queue.provider", "noop")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Crawler.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.fetch_timeout_seconds must be > 0")
	}
	if c.Crawler.ExtractTimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.extract_timeout_seconds must be > 0")
	}
	if c.Chunk.MinSize <= 0 {
		return fmt.Errorf("chunk.min_size must be > 0")
	}
	if c.Chunk.MaxSize < c.Chunk.MinSize {
		return fmt.Errorf("chunk.max_size must be >= chunk.min_size")
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.MinSize {
		return fmt.Errorf("chunk.overlap must be in [0, chunk.min_size)")
	}
	if c.Database.Provider == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must be set when database.provider is postgres")
	}
	if c.Storage.Provider == "gcs" && c.Storage.GCSBucket == "" {
		return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is gcs")
	}
	if c.Queue.Provider == "pubsub" && (c.Queue.ProjectID == "" || c.Queue.TopicID == "") {
		return fmt.Errorf("queue.project_id and queue.topic_id must be set when queue.provider is pubsub")
	}
	return nil
}

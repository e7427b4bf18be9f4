// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

// Package config loads Cinefeed configuration from defaults, an optional YAML
// file and environment variables (in increasing priority) using koanf.
package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Catalog   CatalogConfig   `koanf:"catalog"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	NATS      NATSConfig      `koanf:"nats"`
	Batch     BatchConfig     `koanf:"batch"`
	Mail      MailConfig      `koanf:"mail"`
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// CatalogConfig configures the external movie catalog client.
type CatalogConfig struct {
	// BaseURL is the catalog API root, without the /api/v2.2 suffix.
	BaseURL string `koanf:"base_url"`

	// APIKey is sent as the X-API-KEY header.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single HTTP request.
	Timeout time.Duration `koanf:"timeout"`

	// DetailDelay is the pause enforced between consecutive detail lookups.
	DetailDelay time.Duration `koanf:"detail_delay"`

	// BreakerEnabled wraps catalog calls in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// SchedulerConfig configures the daily genre ingestion run.
type SchedulerConfig struct {
	Enabled bool `koanf:"enabled"`

	// Cron is a five-field cron expression evaluated in Timezone.
	Cron string `koanf:"cron"`

	// Timezone is an IANA zone name used for the cron and weekday lookup.
	Timezone string `koanf:"timezone"`

	// DefaultGenre is used when the weekday has no mapping.
	DefaultGenre string `koanf:"default_genre"`

	// MinRating is the ratingFrom floor applied to scheduled searches.
	MinRating float64 `koanf:"min_rating"`

	// WeekdayGenres maps lowercase English weekday names to a genre name.
	WeekdayGenres map[string]string `koanf:"weekday_genres"`

	// RunTimeout bounds a single run.
	RunTimeout time.Duration `koanf:"run_timeout"`
}

// NATSConfig configures the message bus.
type NATSConfig struct {
	// Enabled selects NATS JetStream as the bus. When false an in-process
	// channel bus is used and messages do not survive restarts.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer starts a NATS server inside the process.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `koanf:"store_dir"`

	MaxMemory int64 `koanf:"max_memory"`
	MaxStore  int64 `koanf:"max_store"`

	// StreamName is the JetStream stream carrying movie messages.
	StreamName string `koanf:"stream_name"`

	// Topic is the subject movie messages are published on.
	Topic string `koanf:"topic"`

	// StreamRetentionDays is how long JetStream keeps messages.
	StreamRetentionDays int `koanf:"stream_retention_days"`

	// DurableName and QueueGroup identify the report consumer.
	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`

	// SubscribersCount is the number of concurrent delivery workers.
	SubscribersCount int `koanf:"subscribers_count"`

	// DedupWindow is the JetStream duplicate-publish window.
	DedupWindow time.Duration `koanf:"dedup_window"`

	RouterCloseTimeout time.Duration `koanf:"router_close_timeout"`
}

// BatchConfig configures the report batching consumer.
type BatchConfig struct {
	// Size is the buffer length that triggers a flush.
	Size int `koanf:"size"`

	// Recipient receives every flushed report.
	Recipient string `koanf:"recipient"`

	// SubjectPrefix is prepended to the report date in the mail subject.
	SubjectPrefix string `koanf:"subject_prefix"`
}

// MailConfig configures report delivery. An empty Host selects simulated
// delivery, which only logs.
type MailConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	FromName string        `koanf:"from_name"`
	UseTLS   bool          `koanf:"use_tls"`
	Timeout  time.Duration `koanf:"timeout"`
}

// DatabaseConfig configures the DuckDB movie store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// SeedGenres inserts the catalog's genre table on startup.
	SeedGenres bool `koanf:"seed_genres"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinefeed/config.yaml",
	"/etc/cinefeed/config.yml",
}

// weekdayGenresKey is the koanf path of the weekday rotation.
const weekdayGenresKey = "scheduler.weekday_genres"

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultWeekdayGenres is the built-in weekday rotation.
func DefaultWeekdayGenres() map[string]string {
	return map[string]string{
		"monday":    "драма",
		"tuesday":   "комедия",
		"wednesday": "боевик",
		"thursday":  "фантастика",
		"friday":    "триллер",
		"saturday":  "приключения",
		"sunday":    "мультфильм",
	}
}

func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:        "https://kinopoiskapiunofficial.tech",
			APIKey:         "",
			Timeout:        30 * time.Second,
			DetailDelay:    100 * time.Millisecond,
			BreakerEnabled: true,
			BreakerTimeout: 60 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			Cron:          "0 7 * * *",
			Timezone:      "UTC",
			DefaultGenre:  "драма",
			MinRating:     7.0,
			WeekdayGenres: DefaultWeekdayGenres(),
			RunTimeout:    30 * time.Minute,
		},
		NATS: NATSConfig{
			Enabled:             true,
			URL:                 "nats://127.0.0.1:4222",
			EmbeddedServer:      true,
			StoreDir:            "/data/nats/jetstream",
			MaxMemory:           256 << 20,
			MaxStore:            1 << 30,
			StreamName:          "MOVIES",
			Topic:               "movie-topic",
			StreamRetentionDays: 7,
			DurableName:         "movie-email-consumer-group",
			QueueGroup:          "movie-email-consumers",
			SubscribersCount:    2,
			DedupWindow:         2 * time.Minute,
			RouterCloseTimeout:  30 * time.Second,
		},
		Batch: BatchConfig{
			Size:          50,
			Recipient:     "",
			SubjectPrefix: "Daily movies",
		},
		Mail: MailConfig{
			Host:     "",
			Port:     587,
			FromName: "Kinopoisk API Service",
			UseTLS:   true,
			Timeout:  30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:       "/data/cinefeed.duckdb",
			MaxMemory:  "1GB",
			Threads:    0,
			SeedGenres: true,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with the precedence ENV > file > defaults
// and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDefaults loads the built-in defaults. The structs provider keeps
// weekday_genres as a map[string]string, which a later layer would replace
// wholesale, so the map is re-set one weekday key at a time so that file and
// env layers merge per day.
func loadDefaults(k *koanf.Koanf) error {
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	k.Delete(weekdayGenresKey)
	for day, genre := range defaults.Scheduler.WeekdayGenres {
		if err := k.Set(weekdayGenresKey+"."+day, genre); err != nil {
			return fmt.Errorf("failed to load default genre for %s: %w", day, err)
		}
	}
	return nil
}

// normalize lowercases weekday keys so YAML authors can write "Monday".
// A capitalised key from the file wins over the lowercase built-in default.
func (c *Config) normalize() {
	if len(c.Scheduler.WeekdayGenres) == 0 {
		return
	}
	normalized := make(map[string]string, len(c.Scheduler.WeekdayGenres))
	for day, genre := range c.Scheduler.WeekdayGenres {
		key := strings.ToLower(strings.TrimSpace(day))
		if _, seen := normalized[key]; seen && key == day {
			continue
		}
		normalized[key] = strings.TrimSpace(genre)
	}
	c.Scheduler.WeekdayGenres = normalized
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	"kinopoisk_api_url":         "catalog.base_url",
	"kinopoisk_api_key":         "catalog.api_key",
	"catalog_timeout":           "catalog.timeout",
	"catalog_detail_delay":      "catalog.detail_delay",
	"catalog_breaker_enabled":   "catalog.breaker_enabled",
	"catalog_breaker_timeout":   "catalog.breaker_timeout",
	"scheduler_enabled":         "scheduler.enabled",
	"scheduler_cron":            "scheduler.cron",
	"scheduler_timezone":        "scheduler.timezone",
	"scheduler_default_genre":   "scheduler.default_genre",
	"scheduler_min_rating":      "scheduler.min_rating",
	"scheduler_run_timeout":     "scheduler.run_timeout",
	"scheduler_monday_genre":    "scheduler.weekday_genres.monday",
	"scheduler_tuesday_genre":   "scheduler.weekday_genres.tuesday",
	"scheduler_wednesday_genre": "scheduler.weekday_genres.wednesday",
	"scheduler_thursday_genre":  "scheduler.weekday_genres.thursday",
	"scheduler_friday_genre":    "scheduler.weekday_genres.friday",
	"scheduler_saturday_genre":  "scheduler.weekday_genres.saturday",
	"scheduler_sunday_genre":    "scheduler.weekday_genres.sunday",
	"nats_enabled":              "nats.enabled",
	"nats_url":                  "nats.url",
	"nats_embedded":             "nats.embedded_server",
	"nats_store_dir":            "nats.store_dir",
	"nats_max_memory":           "nats.max_memory",
	"nats_max_store":            "nats.max_store",
	"nats_stream_name":          "nats.stream_name",
	"movie_topic":               "nats.topic",
	"nats_retention_days":       "nats.stream_retention_days",
	"nats_durable_name":         "nats.durable_name",
	"nats_queue_group":          "nats.queue_group",
	"nats_subscribers":          "nats.subscribers_count",
	"nats_dedup_window":         "nats.dedup_window",
	"batch_size":                "batch.size",
	"report_recipient":          "batch.recipient",
	"report_subject_prefix":     "batch.subject_prefix",
	"smtp_host":                 "mail.host",
	"smtp_port":                 "mail.port",
	"smtp_username":             "mail.username",
	"smtp_password":             "mail.password",
	"smtp_from_name":            "mail.from_name",
	"smtp_use_tls":              "mail.use_tls",
	"smtp_timeout":              "mail.timeout",
	"duckdb_path":               "database.path",
	"duckdb_max_memory":         "database.max_memory",
	"duckdb_threads":            "database.threads",
	"seed_genres":               "database.seed_genres",
	"http_port":                 "server.port",
	"http_host":                 "server.host",
	"server_timeout":            "server.timeout",
	"rate_limit_requests":       "server.rate_limit_reqs",
	"rate_limit_window":         "server.rate_limit_window",
	"log_level":                 "logging.level",
	"log_format":                "logging.format",
	"log_caller":                "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// "" to skip it.
//
//   - KINOPOISK_API_KEY -> catalog.api_key
//   - BATCH_SIZE -> batch.size
//   - SMTP_HOST -> mail.host
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package main is the entry point for the Cinefeed server.

Cinefeed pulls movies from an external film catalog into a DuckDB store,
publishes a daily genre selection onto a message bus, and mails the
collected movies as CSV reports once enough of them have arrived.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("cinefeed")
	├── MessagingSupervisor ("messaging-layer")
	│   └── Message bus (embedded NATS or in-process channels, router, batch consumer)
	├── SchedulingSupervisor ("scheduling-layer")
	│   └── Genre scheduler (cron loop, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi router)

Component initialization order:

 1. Configuration: koanf with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON or console output
 3. Database: DuckDB store, genre table seeded from the catalog's genre list
 4. Catalog client: HTTP client behind a gobreaker circuit breaker
 5. Ingestion coordinator and mailer (SMTP, or simulated when SMTP_HOST is empty)
 6. Message bus with the batch report consumer
 7. Genre scheduler publishing through the bus
 8. Supervisor tree and HTTP server

# Configuration

Priority: environment variables > config file > defaults.

	KINOPOISK_API_KEY=<key>          # catalog API key
	SCHEDULER_CRON="0 7 * * *"       # daily run, evaluated in SCHEDULER_TIMEZONE
	SCHEDULER_TIMEZONE=Europe/Moscow
	SCHEDULER_MONDAY_GENRE=боевик    # per-weekday genre overrides
	NATS_ENABLED=true                # false selects the in-process bus
	NATS_EMBEDDED=true
	MOVIE_TOPIC=movie-topic
	BATCH_SIZE=50
	REPORT_RECIPIENT=reports@example.com
	SMTP_HOST=smtp.yandex.ru SMTP_PORT=587 SMTP_USERNAME=sender SMTP_PASSWORD=<secret>
	DUCKDB_PATH=/data/cinefeed.duckdb
	HTTP_PORT=8080
	LOG_LEVEL=info LOG_FORMAT=json

CONFIG_PATH points at a YAML file with the same keys (see internal/config).

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up to
10 seconds, the scheduler finishes or abandons its run, the bus router closes
and the database is checkpointed. Movies still buffered by the batch consumer
are logged; they are not mailed.

# See Also

  - internal/api: HTTP routes
  - internal/scheduler: cron parsing and weekday genres
  - internal/batch: report batching
  - internal/eventprocessor: bus wiring
*/
package main

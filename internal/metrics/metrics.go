// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

// Package metrics declares the Prometheus instrumentation for Cinefeed.
// Collectors are registered on the default registry via promauto and exposed
// on /metrics by the HTTP server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Catalog API Metrics
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of catalog API requests",
		},
		[]string{"endpoint", "result"}, // endpoint: search, detail; result: success, error
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Catalog API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// Ingestion Metrics
	IngestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Total number of ingestion runs",
		},
		[]string{"result"}, // ok, search_failed
	)

	IngestItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_items_total",
			Help: "Candidates processed by ingestion, by outcome",
		},
		[]string{"status"},
	)

	IngestDegradedDetails = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_degraded_details_total",
			Help: "Candidates saved with summary data because the detail lookup failed",
		},
	)

	// Scheduler Metrics
	SchedulerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_runs_total",
			Help: "Total number of scheduled genre runs",
		},
		[]string{"result"}, // completed, empty, skipped_overlap
	)

	SchedulerLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed scheduler run",
		},
	)

	// Bus Metrics
	BusMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bus_messages_published_total",
			Help: "Movie messages handed to the bus, by result",
		},
		[]string{"result"}, // success, error
	)

	BusMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bus_messages_consumed_total",
			Help: "Movie messages delivered to the report consumer",
		},
	)

	BusMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bus_messages_dropped_total",
			Help: "Movie messages dropped because they could not be parsed",
		},
	)

	// Batch Metrics
	BatchBufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_buffer_size",
			Help: "Current number of movies waiting in the report buffer",
		},
	)

	BatchFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_flushes_total",
			Help: "Report flush attempts, by result",
		},
		[]string{"result"}, // success, error
	)

	BatchFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_flush_duration_seconds",
			Help:    "Duration of report render and dispatch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// Mail Metrics
	MailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_deliveries_total",
			Help: "Report mails, by transport and result",
		},
		[]string{"transport", "result"}, // transport: smtp, simulated
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordCatalogRequest records one catalog API call.
func RecordCatalogRequest(endpoint string, duration time.Duration, err error) {
	CatalogRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "error"
	}
	CatalogRequests.WithLabelValues(endpoint, result).Inc()
}

// RecordPublish records one bus publish attempt.
func RecordPublish(err error) {
	if err != nil {
		BusMessagesPublished.WithLabelValues("error").Inc()
		return
	}
	BusMessagesPublished.WithLabelValues("success").Inc()
}

// RecordFlush records one report flush attempt.
func RecordFlush(duration time.Duration, err error) {
	BatchFlushDuration.Observe(duration.Seconds())
	if err != nil {
		BatchFlushes.WithLabelValues("error").Inc()
		return
	}
	BatchFlushes.WithLabelValues("success").Inc()
}

// RecordMail records one report delivery.
func RecordMail(transport string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	MailDeliveries.WithLabelValues(transport, result).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

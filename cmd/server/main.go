// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cinefeed/internal/api"
	"github.com/tomtom215/cinefeed/internal/batch"
	"github.com/tomtom215/cinefeed/internal/catalog"
	"github.com/tomtom215/cinefeed/internal/config"
	"github.com/tomtom215/cinefeed/internal/database"
	"github.com/tomtom215/cinefeed/internal/eventprocessor"
	"github.com/tomtom215/cinefeed/internal/ingest"
	"github.com/tomtom215/cinefeed/internal/logging"
	"github.com/tomtom215/cinefeed/internal/mail"
	"github.com/tomtom215/cinefeed/internal/scheduler"
	"github.com/tomtom215/cinefeed/internal/supervisor"
	"github.com/tomtom215/cinefeed/internal/supervisor/services"
)

// consumerName identifies the batch report handler on the bus router.
const consumerName = "movie-email-consumer"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Str("catalog_api_key", logging.SanitizeToken(cfg.Catalog.APIKey)).
		Str("smtp_password", logging.SanitizeToken(cfg.Mail.Password)).
		Msg("Starting Cinefeed with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedGenres {
		if err := seedGenres(ctx, db); err != nil {
			logging.Error().Err(err).Msg("Failed to seed genres")
		}
	}

	// Catalog client, optionally behind a circuit breaker.
	var catalogAPI catalog.API = catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.Timeout)
	var breaker *catalog.BreakerClient
	if cfg.Catalog.BreakerEnabled {
		bc := catalog.DefaultBreakerConfig()
		bc.Timeout = cfg.Catalog.BreakerTimeout
		breaker = catalog.NewBreakerClient(catalogAPI, bc)
		catalogAPI = breaker
		logging.Info().Dur("open_timeout", cfg.Catalog.BreakerTimeout).Msg("Catalog circuit breaker enabled")
	}

	coordinator := ingest.NewCoordinator(catalogAPI, db.Movies(), db.Genres(), cfg.Catalog.DetailDelay)

	mailer := mail.New(&cfg.Mail)

	batchCfg := cfg.Batch
	if batchCfg.Recipient == "" {
		batchCfg.Recipient = mail.FromAddress(cfg.Mail.Username)
		logging.Info().
			Str("recipient", logging.SanitizeEmail(batchCfg.Recipient)).
			Msg("No report recipient configured, sending batch reports to the sender address")
	}
	collector, err := batch.NewCollector(&batchCfg, mailer)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create batch collector")
	}

	busCfg, err := eventprocessor.BusConfigFromApp(&cfg.NATS)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid bus configuration")
	}
	bus, err := eventprocessor.NewBus(ctx, busCfg, eventprocessor.NewDefaultLogger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize message bus")
	}
	bus.AddConsumer(consumerName, collector)
	logging.Info().Str("topic", bus.Topic()).Str("consumer", consumerName).Msg("Message bus initialized")

	var genreScheduler *scheduler.GenreScheduler
	if cfg.Scheduler.Enabled {
		schedCfg, err := scheduler.ConfigFromApp(&cfg.Scheduler, bus.Topic())
		if err != nil {
			logging.Fatal().Err(err).Msg("Invalid scheduler configuration")
		}
		genreScheduler, err = scheduler.New(coordinator, bus.Publisher(), schedCfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create genre scheduler")
		}
		logging.Info().
			Str("cron", cfg.Scheduler.Cron).
			Time("next_run", genreScheduler.NextRun(time.Now())).
			Msg("Genre scheduler configured")
	} else {
		logging.Info().Msg("Genre scheduler disabled (SCHEDULER_ENABLED=false)")
	}

	deps := api.Deps{
		Ingester: coordinator,
		Movies:   db.Movies(),
		Genres:   db.Genres(),
		Mailer:   mailer,
		DB:       db,
		Bus:      bus,
	}
	// Interface fields stay nil rather than holding typed nil pointers.
	if genreScheduler != nil {
		deps.Scheduler = genreScheduler
	}
	if breaker != nil {
		deps.Breaker = breaker
	}
	handler, err := api.NewHandler(deps)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	routerCfg := api.RouterConfigFromApp(&cfg.Server)
	if routerCfg.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_REQUESTS=0)")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, routerCfg),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMessagingService(services.NewBusService(bus))
	if genreScheduler != nil {
		tree.AddSchedulingService(services.NewSchedulerService(genreScheduler))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if pending := collector.Len(); pending > 0 {
		logging.Warn().Int("pending", pending).Msg("Buffered movies were not reported before shutdown")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// seedGenres inserts the catalog genre table so lookup-only genre
// resolution has names to match.
func seedGenres(ctx context.Context, db *database.DB) error {
	table := catalog.Genres()
	names := make([]string, 0, len(table))
	for _, g := range table {
		names = append(names, g.Name)
	}
	_, err := db.Genres().Seed(ctx, names)
	return err
}

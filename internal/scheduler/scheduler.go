// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

// Package scheduler runs the daily genre ingestion.
//
// Each run picks the genre mapped to the current weekday, ingests catalog
// films of that genre above a rating floor, and publishes every newly stored
// movie to the bus. Runs never overlap: a trigger that fires while a run is
// in progress is skipped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinefeed/internal/config"
	"github.com/tomtom215/cinefeed/internal/ingest"
	"github.com/tomtom215/cinefeed/internal/logging"
	"github.com/tomtom215/cinefeed/internal/metrics"
	"github.com/tomtom215/cinefeed/internal/models"
	"github.com/tomtom215/cinefeed/internal/report"
)

// ErrRunInProgress is returned by Run when another run has not finished.
var ErrRunInProgress = errors.New("genre run already in progress")

// publishTimeout bounds each bus publish once ingestion is done. Stored films
// are published even when the run context was canceled meanwhile.
const publishTimeout = 10 * time.Second

// Ingester stores new catalog films matching filters.
type Ingester interface {
	IngestFilms(ctx context.Context, filters models.SearchFilters) (*ingest.Report, error)
}

// MoviePublisher hands a stored movie to the bus.
type MoviePublisher interface {
	PublishMovie(ctx context.Context, topic string, movie *models.MovieMessage, runDate time.Time) error
}

// Config controls what a run ingests and when the loop fires.
type Config struct {
	Cron          string
	Location      *time.Location
	DefaultGenre  string
	MinRating     float64
	WeekdayGenres map[time.Weekday]string
	Topic         string
	RunTimeout    time.Duration
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ConfigFromApp converts application settings. Weekday keys are English
// day names in any case.
func ConfigFromApp(cfg *config.SchedulerConfig, topic string) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("scheduler config is nil")
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	mapping := make(map[time.Weekday]string, len(cfg.WeekdayGenres))
	for name, genre := range cfg.WeekdayGenres {
		day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return Config{}, fmt.Errorf("unknown weekday %q", name)
		}
		mapping[day] = strings.TrimSpace(genre)
	}

	return Config{
		Cron:          cfg.Cron,
		Location:      loc,
		DefaultGenre:  cfg.DefaultGenre,
		MinRating:     cfg.MinRating,
		WeekdayGenres: mapping,
		Topic:         topic,
		RunTimeout:    cfg.RunTimeout,
	}, nil
}

// RunResult summarizes one run.
type RunResult struct {
	Genre     string    `json:"genre"`
	RunDate   time.Time `json:"runDate"`
	Ingested  int       `json:"ingested"`
	Published int       `json:"published"`
	Failed    int       `json:"failed"`

	// SearchError is set when the catalog search failed and nothing was ingested.
	SearchError string `json:"searchError,omitempty"`

	// Report is the ingestion report; nil when the search failed.
	Report *ingest.Report `json:"-"`
}

// GenreScheduler triggers genre runs on a cron schedule.
type GenreScheduler struct {
	ingester  Ingester
	publisher MoviePublisher
	config    Config
	cron      *CronExpression
	logger    zerolog.Logger
	now       func() time.Time

	inFlight atomic.Bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New returns a scheduler. The cron expression is validated here.
func New(ingester Ingester, publisher MoviePublisher, cfg Config) (*GenreScheduler, error) {
	if ingester == nil || publisher == nil {
		return nil, errors.New("scheduler needs an ingester and a publisher")
	}
	cron, err := ParseCron(cfg.Cron)
	if err != nil {
		return nil, err
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if strings.TrimSpace(cfg.DefaultGenre) == "" {
		return nil, errors.New("default genre is required")
	}
	return &GenreScheduler{
		ingester:  ingester,
		publisher: publisher,
		config:    cfg,
		cron:      cron,
		logger:    logging.WithComponent("genre-scheduler"),
		now:       time.Now,
	}, nil
}

// GenreFor returns the genre configured for t's weekday in the scheduler's
// location, or the default genre when that day has no mapping.
func (s *GenreScheduler) GenreFor(t time.Time) string {
	day := t.In(s.config.Location).Weekday()
	if genre := strings.TrimSpace(s.config.WeekdayGenres[day]); genre != "" {
		return genre
	}
	return s.config.DefaultGenre
}

// NextRun returns the next trigger time after t.
func (s *GenreScheduler) NextRun(t time.Time) time.Time {
	return s.cron.NextRun(t, s.config.Location)
}

// IsRunning reports whether a run is in progress.
func (s *GenreScheduler) IsRunning() bool {
	return s.inFlight.Load()
}

// Run performs one genre run now. It returns ErrRunInProgress without doing
// anything if another run is active. Publish failures are counted in the
// result and do not stop the run.
func (s *GenreScheduler) Run(ctx context.Context) (RunResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.SchedulerRuns.WithLabelValues("skipped_overlap").Inc()
		logging.Ctx(ctx).Warn().Msg("Genre run skipped, previous run still in progress")
		return RunResult{}, ErrRunInProgress
	}
	defer s.inFlight.Store(false)

	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	now := s.now().In(s.config.Location)
	result := RunResult{Genre: s.GenreFor(now), RunDate: now}
	log := logging.Ctx(ctx).With().Str("genre", result.Genre).Logger()

	minRating := s.config.MinRating
	rep, err := s.ingester.IngestFilms(ctx, models.SearchFilters{
		Genre:      result.Genre,
		RatingFrom: &minRating,
	})
	if err != nil {
		metrics.SchedulerRuns.WithLabelValues("search_failed").Inc()
		log.Error().Err(err).Msg("Genre run found nothing, catalog search failed")
		result.SearchError = err.Error()
		return result, nil
	}
	result.Report = rep
	result.Ingested = len(rep.Saved)

	if result.Ingested == 0 {
		metrics.SchedulerRuns.WithLabelValues("empty").Inc()
		log.Info().Msg("No new films for genre")
		return result, nil
	}

	publishCtx := context.WithoutCancel(ctx)
	for _, movie := range rep.Saved {
		msg := models.NewMovieMessage(movie, report.FormatRating)
		if err := s.publish(publishCtx, &msg, now); err != nil {
			result.Failed++
			log.Error().Err(err).
				Int64("film_id", movie.FilmID).
				Str("stage", "publish").
				Msg("Failed to publish film")
			continue
		}
		result.Published++
	}

	metrics.SchedulerRuns.WithLabelValues("completed").Inc()
	metrics.SchedulerLastRun.Set(float64(s.now().Unix()))
	log.Info().
		Int("ingested", result.Ingested).
		Int("published", result.Published).
		Int("failed", result.Failed).
		Msg("Genre run finished")
	return result, nil
}

func (s *GenreScheduler) publish(ctx context.Context, msg *models.MovieMessage, runDate time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return s.publisher.PublishMovie(ctx, s.config.Topic, msg, runDate)
}

// Start launches the cron loop.
func (s *GenreScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	s.logger.Info().
		Str("cron", s.config.Cron).
		Str("timezone", s.config.Location.String()).
		Time("next_run", s.NextRun(s.now())).
		Msg("Starting genre scheduler")

	go s.loop(ctx, s.stopCh, s.doneCh)
	return nil
}

// Stop ends the loop and waits for an in-progress run to return.
func (s *GenreScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.logger.Info().Msg("Genre scheduler stopped")
	return nil
}

func (s *GenreScheduler) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	for {
		next := s.NextRun(s.now())
		if next.IsZero() {
			s.logger.Error().Str("cron", s.config.Cron).Msg("Cron expression never fires, scheduler idle")
			<-runCtx.Done()
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-runCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		triggerCtx := logging.ContextWithNewCorrelationID(runCtx)
		triggerCtx = logging.ContextWithLogger(triggerCtx, s.logger)
		// Overlap is reported inside Run; nothing else to do here.
		_, _ = s.Run(triggerCtx)
	}
}

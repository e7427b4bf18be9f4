// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/cinefeed/internal/ingest"
	"github.com/tomtom215/cinefeed/internal/mail"
	"github.com/tomtom215/cinefeed/internal/models"
	"github.com/tomtom215/cinefeed/internal/scheduler"
)

// Ingester runs an on-demand catalog ingestion.
type Ingester interface {
	IngestFilms(ctx context.Context, filters models.SearchFilters) (*ingest.Report, error)
}

// MovieReader is the read side of the movie store.
type MovieReader interface {
	FindByID(ctx context.Context, id int64) (*models.MovieRecord, error)
	FindByFilmID(ctx context.Context, filmID int64) (*models.MovieRecord, error)
	List(ctx context.Context, filters models.SearchFilters, opts models.ListOptions) (*models.Page[models.MovieRecord], error)
	Find(ctx context.Context, filters models.SearchFilters) ([]*models.MovieRecord, error)
	SearchByName(ctx context.Context, query string, limit int) ([]*models.MovieRecord, error)
}

// GenreLister lists stored genres.
type GenreLister interface {
	All(ctx context.Context) ([]models.GenreRecord, error)
}

// SchedulerTrigger starts a genre run outside the cron schedule.
type SchedulerTrigger interface {
	Run(ctx context.Context) (scheduler.RunResult, error)
	IsRunning() bool
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunningChecker reports whether a background component is up.
type RunningChecker interface {
	IsRunning() bool
}

// BreakerState reports a circuit breaker's state name.
type BreakerState interface {
	State() string
}

// Deps are the handler's collaborators. Ingester, Movies, Genres and Mailer
// are required; the rest may be nil.
type Deps struct {
	Ingester  Ingester
	Movies    MovieReader
	Genres    GenreLister
	Mailer    mail.Mailer
	Scheduler SchedulerTrigger
	DB        Pinger
	Bus       RunningChecker
	Breaker   BreakerState
}

// Handler serves the HTTP API.
type Handler struct {
	deps      Deps
	startTime time.Time
}

// NewHandler validates deps and returns a Handler.
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.Ingester == nil:
		return nil, errors.New("api: ingester is required")
	case deps.Movies == nil:
		return nil, errors.New("api: movie store is required")
	case deps.Genres == nil:
		return nil, errors.New("api: genre store is required")
	case deps.Mailer == nil:
		return nil, errors.New("api: mailer is required")
	}
	return &Handler{deps: deps, startTime: time.Now()}, nil
}

// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

// Package ingest pulls films from the catalog into the movie store.
//
// A run searches once, drops films already stored, then walks the remaining
// candidates one at a time: a rate-limited detail lookup, genre resolution
// against the stored genre table, and a save. Failures on one candidate are
// recorded in the Report and never stop the run.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/cinefeed/internal/catalog"
	"github.com/tomtom215/cinefeed/internal/logging"
	"github.com/tomtom215/cinefeed/internal/metrics"
	"github.com/tomtom215/cinefeed/internal/models"
)

// DefaultDetailDelay is the pause between consecutive detail lookups.
const DefaultDetailDelay = 200 * time.Millisecond

// MovieStore is the persistence the coordinator needs.
type MovieStore interface {
	ExistsByFilmID(ctx context.Context, filmID int64) (bool, error)
	Save(ctx context.Context, m *models.MovieRecord) error
}

// GenreStore resolves genre names to stored genres. FindByName returns
// models.ErrNotFound for unknown names.
type GenreStore interface {
	FindByName(ctx context.Context, name string) (*models.GenreRecord, error)
}

// Coordinator runs ingestion. IngestFilms may be called concurrently; the
// store's unique film id is what keeps concurrent runs from double-saving.
type Coordinator struct {
	catalog catalog.API
	movies  MovieStore
	genres  GenreStore
	limiter *rate.Limiter
}

// NewCoordinator returns a coordinator that waits detailDelay between detail
// lookups. A zero delay disables the wait.
func NewCoordinator(api catalog.API, movies MovieStore, genres GenreStore, detailDelay time.Duration) *Coordinator {
	limit := rate.Inf
	if detailDelay > 0 {
		limit = rate.Every(detailDelay)
	}
	return &Coordinator{
		catalog: api,
		movies:  movies,
		genres:  genres,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// IngestFilms searches the catalog with filters and stores every film not
// already present.
//
// The returned Report is never nil. An error is returned only when the
// search itself fails, in which case the report is empty.
//
// Cancelling ctx interrupts the pause between detail lookups; the remaining
// candidates are still processed, without pauses.
func (c *Coordinator) IngestFilms(ctx context.Context, filters models.SearchFilters) (*Report, error) {
	log := logging.Ctx(ctx)
	rep := &Report{Saved: []*models.MovieRecord{}, Outcomes: []Outcome{}}

	candidates, err := c.catalog.Search(ctx, filters)
	if err != nil {
		metrics.IngestRuns.WithLabelValues("search_failed").Inc()
		log.Error().Err(err).
			Str("stage", "search").
			Str("genre", filters.Genre).
			Str("keyword", filters.Keyword).
			Msg("Catalog search failed, nothing ingested")
		return rep, fmt.Errorf("search catalog: %w", err)
	}

	fresh := make([]models.CandidateRecord, 0, len(candidates))
	for i := range candidates {
		cand := candidates[i]
		exists, err := c.movies.ExistsByFilmID(ctx, cand.FilmID)
		switch {
		case err != nil:
			c.record(ctx, rep, "exists", Outcome{FilmID: cand.FilmID, Title: cand.Title, Status: StatusFailed,
				Reason: "existence check: " + err.Error()})
		case exists:
			c.record(ctx, rep, "exists", Outcome{FilmID: cand.FilmID, Title: cand.Title, Status: StatusSkippedExisting})
		default:
			fresh = append(fresh, cand)
		}
	}

	// Items keep going after cancellation; only the pauses stop.
	itemCtx := context.WithoutCancel(ctx)
	throttle := true
	for i := range fresh {
		if throttle {
			if err := c.limiter.Wait(ctx); err != nil {
				throttle = false
				log.Warn().Err(err).
					Int("remaining", len(fresh)-i).
					Msg("Detail delay interrupted, continuing without delay")
			}
		}
		c.ingestOne(itemCtx, rep, &fresh[i])
	}

	metrics.IngestRuns.WithLabelValues("ok").Inc()
	log.Info().
		Int("candidates", len(candidates)).
		Int("saved", len(rep.Saved)).
		Int("skipped_existing", rep.Count(StatusSkippedExisting)).
		Int("skipped_duplicate", rep.Count(StatusSkippedDuplicate)).
		Int("failed", rep.Count(StatusFailed)).
		Int("degraded", rep.Degraded()).
		Msg("Ingestion finished")
	return rep, nil
}

func (c *Coordinator) ingestOne(ctx context.Context, rep *Report, cand *models.CandidateRecord) {
	outcome := Outcome{FilmID: cand.FilmID, Title: cand.Title}

	record := *cand
	detail, err := c.catalog.FetchDetail(ctx, cand.FilmID)
	if err != nil || detail == nil {
		outcome.DetailDegraded = true
		metrics.IngestDegradedDetails.Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Int64("film_id", cand.FilmID).
			Str("stage", "detail").
			Msg("Detail lookup failed, using search data")
	} else {
		record = mergeDetail(cand, detail)
	}

	genres, unmatched := c.resolveGenres(ctx, record.Genres)
	outcome.UnmatchedGenres = unmatched

	movie := &models.MovieRecord{
		FilmID:      record.FilmID,
		Title:       record.Title,
		Year:        record.Year,
		Rating:      record.Rating,
		Description: record.Description,
		Genres:      genres,
	}

	if err := c.movies.Save(ctx, movie); err != nil {
		outcome.Reason = err.Error()
		if errors.Is(err, models.ErrDuplicateFilm) {
			outcome.Status = StatusSkippedDuplicate
		} else {
			outcome.Status = StatusFailed
		}
		c.record(ctx, rep, "save", outcome)
		return
	}

	outcome.Status = StatusSaved
	rep.Saved = append(rep.Saved, movie)
	c.record(ctx, rep, "save", outcome)
}

// resolveGenres looks names up without creating missing genres. Unknown
// names are returned separately; repeated genres are kept once.
func (c *Coordinator) resolveGenres(ctx context.Context, names []string) ([]models.GenreRecord, []string) {
	resolved := make([]models.GenreRecord, 0, len(names))
	var unmatched []string
	seen := make(map[int64]bool, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		genre, err := c.genres.FindByName(ctx, name)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				logging.Ctx(ctx).Warn().Err(err).
					Str("genre", name).
					Str("stage", "genres").
					Msg("Genre lookup failed")
			}
			unmatched = append(unmatched, name)
			continue
		}
		if seen[genre.ID] {
			continue
		}
		seen[genre.ID] = true
		resolved = append(resolved, *genre)
	}
	return resolved, unmatched
}

// mergeDetail prefers detail fields, falling back to the summary record for
// anything the detail response left empty.
func mergeDetail(summary, detail *models.CandidateRecord) models.CandidateRecord {
	merged := *detail
	merged.FilmID = summary.FilmID
	if merged.Title == "" {
		merged.Title = summary.Title
	}
	if merged.Year == 0 {
		merged.Year = summary.Year
	}
	if merged.Rating == 0 {
		merged.Rating = summary.Rating
	}
	if merged.Description == "" {
		merged.Description = summary.Description
	}
	if len(merged.Genres) == 0 {
		merged.Genres = summary.Genres
	}
	return merged
}

func (c *Coordinator) record(ctx context.Context, rep *Report, stage string, o Outcome) {
	rep.Outcomes = append(rep.Outcomes, o)
	metrics.IngestItems.WithLabelValues(string(o.Status)).Inc()

	switch o.Status {
	case StatusFailed:
		logging.Ctx(ctx).Error().
			Int64("film_id", o.FilmID).
			Str("stage", stage).
			Str("reason", o.Reason).
			Msg("Failed to store film")
	case StatusSkippedDuplicate:
		logging.Ctx(ctx).Info().
			Int64("film_id", o.FilmID).
			Msg("Film stored concurrently by another run, skipping")
	case StatusSaved:
		logging.Ctx(ctx).Debug().
			Int64("film_id", o.FilmID).
			Bool("degraded", o.DetailDegraded).
			Strs("unmatched_genres", o.UnmatchedGenres).
			Msg("Film stored")
	}
}

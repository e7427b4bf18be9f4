// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinefeed/internal/config"
	"github.com/tomtom215/cinefeed/internal/middleware"
)

// RouterConfig controls the per-IP rate limit on /api routes.
type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultRouterConfig allows 100 requests per minute per client IP.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{RateLimitRequests: 100, RateLimitWindow: time.Minute}
}

// RouterConfigFromApp maps server settings. A non-positive request count
// disables rate limiting.
func RouterConfigFromApp(cfg *config.ServerConfig) RouterConfig {
	rc := DefaultRouterConfig()
	if cfg == nil {
		return rc
	}
	if cfg.RateLimitReqs <= 0 {
		rc.RateLimitDisabled = true
	} else {
		rc.RateLimitRequests = cfg.RateLimitReqs
	}
	if cfg.RateLimitWindow > 0 {
		rc.RateLimitWindow = cfg.RateLimitWindow
	}
	return rc
}

// rateLimit returns an httprate per-IP limiter, or a pass-through when disabled.
func (c RouterConfig) rateLimit() func(http.Handler) http.Handler {
	if c.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		c.RateLimitRequests,
		c.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded", nil)
		}),
	)
}

// NewRouter mounts every route on a chi router.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.rateLimit())

		r.Get("/v2/films", h.SaveFilms)

		r.Get("/films", h.ListFilms)
		r.Get("/films/{id}/response", h.GetFilm)
		r.Get("/films/film-id/{filmId}/response", h.GetFilmByFilmID)
		r.Get("/movies/search", h.SearchMovies)
		r.Get("/genres", h.ListGenres)

		r.Get("/reports/csv", h.ReportCSV)
		r.Get("/reports/xml", h.ReportXML)
		r.Post("/reports/send", h.SendReport)

		r.Post("/scheduler/run", h.RunScheduler)
	})

	return r
}

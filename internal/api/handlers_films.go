// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/cinefeed/internal/logging"
	"github.com/tomtom215/cinefeed/internal/models"
)

// SaveFilms searches the catalog with the request filters and stores every
// film not stored yet.
//
// GET /api/v2/films?keyword&genre&yearFrom&yearTo&ratingFrom&ratingTo
func (h *Handler) SaveFilms(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		respondValidationError(w, r, err)
		return
	}

	rep, err := h.deps.Ingester.IngestFilms(r.Context(), filters)
	if err != nil {
		respondError(w, r, http.StatusBadGateway, ErrCodeExternalService, "Catalog search failed", err)
		return
	}

	saved := make([]models.MovieResponse, 0, len(rep.Saved))
	for _, m := range rep.Saved {
		saved = append(saved, models.NewMovieResponse(m))
	}
	logging.Ctx(r.Context()).Info().
		Int("saved", len(saved)).
		Int("candidates", len(rep.Outcomes)).
		Msg("On-demand ingestion finished")

	respondJSON(w, http.StatusOK, &models.SaveFilmsResponse{
		Message:    fmt.Sprintf("Successfully saved %d new films", len(saved)),
		SavedFilms: saved,
	})
}

// ListFilms pages through stored films.
//
// GET /api/films?keyword&genre&yearFrom&yearTo&ratingFrom&ratingTo&page&size&sortBy&direction
func (h *Handler) ListFilms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := parseFilters(q)
	if err != nil {
		respondValidationError(w, r, err)
		return
	}
	opts, err := parseListOptions(q)
	if err != nil {
		respondValidationError(w, r, err)
		return
	}

	page, err := h.deps.Movies.List(r.Context(), filters, opts)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to list films", err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GetFilm returns one stored film by store id.
//
// GET /api/films/{id}/response
func (h *Handler) GetFilm(w http.ResponseWriter, r *http.Request) {
	h.getOne(w, r, "id", h.deps.Movies.FindByID)
}

// GetFilmByFilmID returns one stored film by catalog film id.
//
// GET /api/films/film-id/{filmId}/response
func (h *Handler) GetFilmByFilmID(w http.ResponseWriter, r *http.Request) {
	h.getOne(w, r, "filmId", h.deps.Movies.FindByFilmID)
}

func (h *Handler) getOne(w http.ResponseWriter, r *http.Request, param string,
	find func(context.Context, int64) (*models.MovieRecord, error)) {
	id, err := pathID(r, param)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	movie, err := find(r.Context(), id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Film not found", nil)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load film", err)
	default:
		respondJSON(w, http.StatusOK, models.NewMovieResponse(movie))
	}
}

// SearchMovies matches stored titles by prefix or word start.
//
// GET /api/movies/search?query=
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "query is required", nil)
		return
	}

	movies, err := h.deps.Movies.SearchByName(r.Context(), query, searchLimit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Search failed", err)
		return
	}

	results := make([]models.MovieSearchResult, 0, len(movies))
	for _, m := range movies {
		genres := m.Genres
		if genres == nil {
			genres = []models.GenreRecord{}
		}
		results = append(results, models.MovieSearchResult{
			ID:     m.ID,
			Name:   m.Title,
			Year:   m.Year,
			Genres: genres,
		})
	}
	respondJSON(w, http.StatusOK, results)
}

// ListGenres returns every stored genre.
//
// GET /api/genres
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.deps.Genres.All(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to list genres", err)
		return
	}
	respondJSON(w, http.StatusOK, genres)
}

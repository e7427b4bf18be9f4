// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package models

import "errors"

// ErrNotFound is returned by stores when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ErrDuplicateFilm is returned by MovieStore.Save when another writer already
// stored a movie with the same external film id.
var ErrDuplicateFilm = errors.New("film already stored")

// CandidateRecord is a catalog search hit before dedup and enrichment.
// Genres is empty for summary-level records and populated by a detail lookup.
type CandidateRecord struct {
	FilmID      int64
	Title       string
	Year        int
	Rating      float64
	Description string
	Genres      []string
}

// GenreRecord is a stored genre. Names are unique within the store.
type GenreRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieRecord is a persisted movie. FilmID is the catalog's external id and
// is unique within the store.
type MovieRecord struct {
	ID          int64         `json:"id"`
	FilmID      int64         `json:"filmId"`
	Title       string        `json:"filmName"`
	Year        int           `json:"year"`
	Rating      float64       `json:"rating"`
	Description string        `json:"description"`
	Genres      []GenreRecord `json:"-"`
}

// GenreNames returns the names of the resolved genres in stored order.
func (m *MovieRecord) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// MovieResponse is the API view of a stored movie.
type MovieResponse struct {
	ID          int64    `json:"id"`
	FilmID      int64    `json:"filmId"`
	FilmName    string   `json:"filmName"`
	Year        int      `json:"year"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
}

// NewMovieResponse converts a stored movie into its API view.
func NewMovieResponse(m *MovieRecord) MovieResponse {
	return MovieResponse{
		ID:          m.ID,
		FilmID:      m.FilmID,
		FilmName:    m.Title,
		Year:        m.Year,
		Rating:      m.Rating,
		Description: m.Description,
		Genres:      m.GenreNames(),
	}
}

// MovieSearchResult is the compact view returned by title search.
type MovieSearchResult struct {
	ID     int64         `json:"id"`
	Name   string        `json:"name"`
	Year   int           `json:"year"`
	Genres []GenreRecord `json:"genres"`
}

// Page is one page of a paged listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

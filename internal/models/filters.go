// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package models

// SearchFilters narrows a catalog search or a stored-movie query.
// Nil pointers mean "no bound".
type SearchFilters struct {
	Keyword    string   `json:"keyword,omitempty" validate:"max=200"`
	Genre      string   `json:"genre,omitempty" validate:"max=100"`
	YearFrom   *int     `json:"yearFrom,omitempty" validate:"omitempty,gte=1888,lte=2100"`
	YearTo     *int     `json:"yearTo,omitempty" validate:"omitempty,gte=1888,lte=2100"`
	RatingFrom *float64 `json:"ratingFrom,omitempty" validate:"omitempty,gte=0,lte=10"`
	RatingTo   *float64 `json:"ratingTo,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// Sort columns accepted by stored-movie listings.
const (
	SortFilmID   = "filmId"
	SortFilmName = "filmName"
	SortYear     = "year"
	SortRating   = "rating"
)

// ListOptions pages and orders a stored-movie listing.
type ListOptions struct {
	Page      int    `validate:"gte=0"`
	Size      int    `validate:"gte=1,lte=100"`
	SortBy    string `validate:"oneof=filmId filmName year rating"`
	Direction string `validate:"oneof=asc desc"`
}

// DefaultListOptions returns page 0 of 20, ordered by film id ascending.
func DefaultListOptions() ListOptions {
	return ListOptions{Page: 0, Size: 20, SortBy: SortFilmID, Direction: "asc"}
}

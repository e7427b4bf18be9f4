// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package models

import "strconv"

// RatingUnavailable is the rating text used when a message carries no usable rating.
const RatingUnavailable = "N/A"

// UnknownFilmName replaces a blank film name on the consumer side.
const UnknownFilmName = "Unknown"

// MovieMessage is the bus payload announcing a newly stored movie.
//
// Rating is text: producers send the one-decimal rating, consumers keep
// whatever trimmed text arrived (or RatingUnavailable). FilmID and Year are
// optional on the wire.
type MovieMessage struct {
	ID          *int64   `json:"id,omitempty"`
	FilmID      *int64   `json:"filmId"`
	FilmName    string   `json:"filmName"`
	Year        *int     `json:"year"`
	Rating      string   `json:"rating"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
}

// NewMovieMessage builds the bus payload for a stored movie. formatRating
// renders the numeric rating.
func NewMovieMessage(m *MovieRecord, formatRating func(float64) string) MovieMessage {
	id, filmID, year := m.ID, m.FilmID, m.Year
	return MovieMessage{
		ID:          &id,
		FilmID:      &filmID,
		FilmName:    m.Title,
		Year:        &year,
		Rating:      formatRating(m.Rating),
		Description: m.Description,
		Genres:      m.GenreNames(),
	}
}

// FilmIDString renders FilmID, or "" when absent.
func (m *MovieMessage) FilmIDString() string {
	if m.FilmID == nil {
		return ""
	}
	return strconv.FormatInt(*m.FilmID, 10)
}

// YearString renders Year, or "" when absent.
func (m *MovieMessage) YearString() string {
	if m.Year == nil {
		return ""
	}
	return strconv.Itoa(*m.Year)
}

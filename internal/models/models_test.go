// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func oneDecimal(f float64) string {
	if f == 8.04 {
		return "8.0"
	}
	return "x"
}

func TestNewMovieMessage(t *testing.T) {
	t.Parallel()

	rec := &MovieRecord{
		ID: 7, FilmID: 301, Title: "Солярис", Year: 1972, Rating: 8.04, Description: "space",
		Genres: []GenreRecord{{ID: 1, Name: "драма"}, {ID: 3, Name: "фантастика"}},
	}
	msg := NewMovieMessage(rec, oneDecimal)

	if *msg.ID != 7 || *msg.FilmID != 301 || *msg.Year != 1972 {
		t.Errorf("ids = %d/%d/%d", *msg.ID, *msg.FilmID, *msg.Year)
	}
	if msg.Rating != "8.0" || msg.FilmName != "Солярис" || msg.Description != "space" {
		t.Errorf("message = %+v", msg)
	}
	if strings.Join(msg.Genres, ",") != "драма,фантастика" {
		t.Errorf("genres = %v", msg.Genres)
	}

	// The message must not alias the record.
	rec.FilmID = 999
	if *msg.FilmID != 301 {
		t.Error("message FilmID follows the record")
	}
}

func TestMovieMessage_OptionalFields(t *testing.T) {
	t.Parallel()

	var msg MovieMessage
	if msg.FilmIDString() != "" || msg.YearString() != "" {
		t.Errorf("absent fields render %q / %q", msg.FilmIDString(), msg.YearString())
	}

	id, year := int64(42), 2001
	msg.FilmID, msg.Year = &id, &year
	if msg.FilmIDString() != "42" || msg.YearString() != "2001" {
		t.Errorf("fields render %q / %q", msg.FilmIDString(), msg.YearString())
	}
}

func TestMovieRecord_JSONHidesGenres(t *testing.T) {
	t.Parallel()

	rec := MovieRecord{ID: 1, FilmID: 2, Title: "T", Genres: []GenreRecord{{ID: 1, Name: "драма"}}}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "драма") || !strings.Contains(string(data), `"filmName":"T"`) {
		t.Errorf("json = %s", data)
	}
}

func TestNewMovieResponse(t *testing.T) {
	t.Parallel()

	resp := NewMovieResponse(&MovieRecord{ID: 1, FilmID: 2, Title: "T", Year: 2000, Rating: 7.5})
	if resp.FilmName != "T" || resp.Genres == nil || len(resp.Genres) != 0 {
		t.Errorf("response = %+v", resp)
	}
}

func TestDefaultListOptions(t *testing.T) {
	t.Parallel()

	got := DefaultListOptions()
	want := ListOptions{Page: 0, Size: 20, SortBy: SortFilmID, Direction: "asc"}
	if got != want {
		t.Errorf("DefaultListOptions() = %+v, want %+v", got, want)
	}
}

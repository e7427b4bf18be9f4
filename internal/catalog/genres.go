// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package catalog

import (
	"sort"
	"strings"
)

// genreIDs maps lowercase genre names to the catalog's numeric genre ids.
// It is populated once at package init and never mutated.
var genreIDs = map[string]int{
	"триллер":         1,
	"драма":           2,
	"криминал":        3,
	"мелодрама":       4,
	"детектив":        5,
	"фантастика":      6,
	"приключения":     7,
	"боевик":          8,
	"фэнтези":         9,
	"комедия":         10,
	"военный":         11,
	"история":         12,
	"музыка":          13,
	"ужасы":           14,
	"семейный":        15,
	"мультфильм":      16,
	"мюзикл":          17,
	"спорт":           18,
	"документальный":  19,
	"короткометражка": 20,
	"аниме":           21,
	"биография":       22,
	"вестерн":         23,
	"фильм-нуар":      24,
	"церемония":       25,
	"реальное тв":     26,
	"ток-шоу":         27,
	"игра":            28,
	"новости":         29,
	"концерт":         30,
	"для взрослых":    31,
	"детский":         32,
}

// GenreID returns the catalog id for a genre name. Matching ignores case and
// surrounding whitespace.
func GenreID(name string) (int, bool) {
	id, ok := genreIDs[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Genre is one entry of the catalog's genre table.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Genres returns the full genre table ordered by id.
func Genres() []Genre {
	out := make([]Genre, 0, len(genreIDs))
	for name, id := range genreIDs {
		out = append(out, Genre{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

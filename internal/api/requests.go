// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinefeed/internal/models"
	"github.com/tomtom215/cinefeed/internal/validation"
)

// searchLimit caps title search results.
const searchLimit = 50

// parseFilters reads keyword, genre, yearFrom, yearTo, ratingFrom and
// ratingTo. Absent parameters stay unset; malformed numbers and out of range
// values are errors.
func parseFilters(q url.Values) (models.SearchFilters, error) {
	f := models.SearchFilters{
		Keyword: strings.TrimSpace(q.Get("keyword")),
		Genre:   strings.TrimSpace(q.Get("genre")),
	}

	var err error
	if f.YearFrom, err = optionalInt(q, "yearFrom"); err != nil {
		return f, err
	}
	if f.YearTo, err = optionalInt(q, "yearTo"); err != nil {
		return f, err
	}
	if f.RatingFrom, err = optionalFloat(q, "ratingFrom"); err != nil {
		return f, err
	}
	if f.RatingTo, err = optionalFloat(q, "ratingTo"); err != nil {
		return f, err
	}
	if err := validation.ValidateStruct(f); err != nil {
		return f, err
	}
	return f, nil
}

// parseListOptions reads page, size, sortBy and direction with the listing
// defaults page 0, size 20, filmId, asc.
func parseListOptions(q url.Values) (models.ListOptions, error) {
	opts := models.DefaultListOptions()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("page must be an integer, got %q", v)
		}
		opts.Page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("size must be an integer, got %q", v)
		}
		opts.Size = n
	}
	if v := strings.TrimSpace(q.Get("sortBy")); v != "" {
		opts.SortBy = v
	}
	if v := strings.TrimSpace(q.Get("direction")); v != "" {
		opts.Direction = strings.ToLower(v)
	}
	if err := validation.ValidateStruct(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func optionalInt(q url.Values, name string) (*int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer, got %q", name, v)
	}
	return &n, nil
}

func optionalFloat(q url.Values, name string) (*float64, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number, got %q", name, v)
	}
	return &f, nil
}

// pathID parses a positive int64 chi URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

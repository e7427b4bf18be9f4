// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package catalog is the client for the external movie catalog
(kinopoiskapiunofficial.tech, API v2.2).

It offers two calls: a filtered film search ordered by rating, and a per-film
detail lookup that additionally carries genre names. Neither call retries.
Callers that must not fail on upstream trouble treat the returned error as
"no data": Search always returns a non-nil (possibly empty) slice and
FetchDetail returns nil on any error.
*/
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinefeed/internal/metrics"
	"github.com/tomtom215/cinefeed/internal/models"
)

// DefaultBaseURL is the public catalog host.
const DefaultBaseURL = "https://kinopoiskapiunofficial.tech"

const filmsPath = "/api/v2.2/films"

// ErrUnexpectedStatus is wrapped by errors for non-200 catalog responses.
var ErrUnexpectedStatus = errors.New("unexpected catalog status")

// API is the catalog surface used by ingestion. Both Client and
// BreakerClient implement it.
type API interface {
	Search(ctx context.Context, filters models.SearchFilters) ([]models.CandidateRecord, error)
	FetchDetail(ctx context.Context, filmID int64) (*models.CandidateRecord, error)
}

var _ API = (*Client)(nil)

// Client talks to the catalog REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a catalog client. A zero timeout selects 30 seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// searchResponse is the body of GET /api/v2.2/films.
type searchResponse struct {
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	Items      []film `json:"items"`
}

// film is one catalog item; the detail endpoint returns the same shape.
type film struct {
	KinopoiskID     int64       `json:"kinopoiskId"`
	NameRu          *string     `json:"nameRu"`
	NameEn          *string     `json:"nameEn"`
	NameOriginal    *string     `json:"nameOriginal"`
	Year            *int        `json:"year"`
	RatingKinopoisk *float64    `json:"ratingKinopoisk"`
	Description     *string     `json:"description"`
	Genres          []genreItem `json:"genres"`
}

type genreItem struct {
	Genre string `json:"genre"`
}

// toCandidate flattens a catalog item. The title prefers the Russian name,
// then the English one; a missing rating becomes 0.
func (f *film) toCandidate() models.CandidateRecord {
	c := models.CandidateRecord{FilmID: f.KinopoiskID}
	switch {
	case f.NameRu != nil:
		c.Title = *f.NameRu
	case f.NameEn != nil:
		c.Title = *f.NameEn
	case f.NameOriginal != nil:
		c.Title = *f.NameOriginal
	}
	if f.Year != nil {
		c.Year = *f.Year
	}
	if f.RatingKinopoisk != nil {
		c.Rating = *f.RatingKinopoisk
	}
	if f.Description != nil {
		c.Description = *f.Description
	}
	if len(f.Genres) > 0 {
		c.Genres = make([]string, 0, len(f.Genres))
		for _, g := range f.Genres {
			c.Genres = append(c.Genres, g.Genre)
		}
	}
	return c
}

// SearchQuery builds the query string for a film search.
//
// A genre found in the catalog genre table is sent as "genres[]"; an unknown
// genre is used as the keyword when no keyword was given. Results are always
// ordered by rating and span all film types.
func SearchQuery(filters models.SearchFilters) url.Values {
	q := url.Values{}
	keyword := strings.TrimSpace(filters.Keyword)

	if genre := strings.TrimSpace(filters.Genre); genre != "" {
		if id, ok := GenreID(genre); ok {
			q.Set("genres[]", strconv.Itoa(id))
		} else if keyword == "" {
			keyword = genre
		}
	}
	if keyword != "" {
		q.Set("keyword", keyword)
	}
	if filters.YearFrom != nil {
		q.Set("yearFrom", strconv.Itoa(*filters.YearFrom))
	}
	if filters.YearTo != nil {
		q.Set("yearTo", strconv.Itoa(*filters.YearTo))
	}
	if filters.RatingFrom != nil {
		q.Set("ratingFrom", strconv.FormatFloat(*filters.RatingFrom, 'f', -1, 64))
	}
	if filters.RatingTo != nil {
		q.Set("ratingTo", strconv.FormatFloat(*filters.RatingTo, 'f', -1, 64))
	}
	q.Set("order", "RATING")
	q.Set("type", "ALL")
	return q
}

// Search runs a filtered film search. On any error it returns an empty,
// non-nil slice together with the error.
func (c *Client) Search(ctx context.Context, filters models.SearchFilters) ([]models.CandidateRecord, error) {
	start := time.Now()
	var body searchResponse
	err := c.getJSON(ctx, filmsPath+"?"+SearchQuery(filters).Encode(), &body)
	metrics.RecordCatalogRequest("search", time.Since(start), err)
	if err != nil {
		return []models.CandidateRecord{}, fmt.Errorf("catalog search: %w", err)
	}

	out := make([]models.CandidateRecord, 0, len(body.Items))
	for i := range body.Items {
		out = append(out, body.Items[i].toCandidate())
	}
	return out, nil
}

// FetchDetail loads one film including its genres. It returns nil and the
// error when the lookup fails for any reason.
func (c *Client) FetchDetail(ctx context.Context, filmID int64) (*models.CandidateRecord, error) {
	start := time.Now()
	var body film
	err := c.getJSON(ctx, filmsPath+"/"+strconv.FormatInt(filmID, 10), &body)
	metrics.RecordCatalogRequest("detail", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("catalog detail %d: %w", filmID, err)
	}
	if body.KinopoiskID == 0 {
		body.KinopoiskID = filmID
	}
	candidate := body.toCandidate()
	return &candidate, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		if readErr != nil {
			return fmt.Errorf("%w: %d (failed to read body)", ErrUnexpectedStatus, resp.StatusCode)
		}
		return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

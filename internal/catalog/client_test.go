// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/cinefeed/internal/models"
)

const searchResponseBody = `{
  "total": 2,
  "totalPages": 1,
  "items": [
    {"kinopoiskId": 301, "nameRu": "Матрица", "nameEn": "The Matrix", "year": 1999, "ratingKinopoisk": 8.5, "description": "Hacker"},
    {"kinopoiskId": 302, "nameRu": null, "nameEn": "Only English", "year": null, "ratingKinopoisk": null}
  ]
}`

const detailResponseBody = `{
  "kinopoiskId": 301,
  "nameRu": "Матрица",
  "year": 1999,
  "ratingKinopoisk": 8.5,
  "description": "Hacker",
  "genres": [{"genre": "фантастика"}, {"genre": "боевик"}]
}`

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		wantURL string
	}{
		{"trailing slash trimmed", "http://localhost:9000/", "http://localhost:9000"},
		{"plain URL kept", "http://localhost:9000", "http://localhost:9000"},
		{"empty selects default", "", DefaultBaseURL},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClient(tt.baseURL, "key", 0)
			if c.baseURL != tt.wantURL {
				t.Errorf("baseURL = %q, want %q", c.baseURL, tt.wantURL)
			}
			if c.httpClient.Timeout != 30*time.Second {
				t.Errorf("timeout = %v, want 30s", c.httpClient.Timeout)
			}
		})
	}
}

func TestSearchQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		filters models.SearchFilters
		want    map[string]string
		absent  []string
	}{
		{
			name:    "known genre maps to id",
			filters: models.SearchFilters{Genre: "  Драма "},
			want:    map[string]string{"genres[]": "2", "order": "RATING", "type": "ALL"},
			absent:  []string{"keyword"},
		},
		{
			name:    "unknown genre becomes keyword",
			filters: models.SearchFilters{Genre: "киберпанк"},
			want:    map[string]string{"keyword": "киберпанк"},
			absent:  []string{"genres[]"},
		},
		{
			name:    "explicit keyword wins over unknown genre",
			filters: models.SearchFilters{Genre: "киберпанк", Keyword: "matrix"},
			want:    map[string]string{"keyword": "matrix"},
			absent:  []string{"genres[]"},
		},
		{
			name: "ranges",
			filters: models.SearchFilters{
				YearFrom:   intPtr(1990),
				YearTo:     intPtr(2000),
				RatingFrom: floatPtr(7),
				RatingTo:   floatPtr(9.5),
			},
			want: map[string]string{"yearFrom": "1990", "yearTo": "2000", "ratingFrom": "7", "ratingTo": "9.5"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := SearchQuery(tt.filters)
			for k, v := range tt.want {
				if got := q.Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
			for _, k := range tt.absent {
				if q.Has(k) {
					t.Errorf("unexpected parameter %s=%q", k, q.Get(k))
				}
			}
		})
	}
}

func TestClientSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2.2/films" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-API-KEY"); got != "secret" {
			t.Errorf("X-API-KEY = %q", got)
		}
		if got := r.URL.Query().Get("genres[]"); got != "6" {
			t.Errorf("genres[] = %q, want 6", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponseBody))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second)
	items, err := client.Search(context.Background(), models.SearchFilters{Genre: "фантастика"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].FilmID != 301 || items[0].Title != "Матрица" || items[0].Year != 1999 || items[0].Rating != 8.5 {
		t.Errorf("first item = %+v", items[0])
	}
	if items[1].Title != "Only English" {
		t.Errorf("title fallback = %q, want English name", items[1].Title)
	}
	if items[1].Rating != 0 || items[1].Year != 0 {
		t.Errorf("missing rating/year should be zero, got %+v", items[1])
	}
}

func TestClientSearchErrorsReturnEmptySlice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			items, err := NewClient(server.URL, "k", time.Second).Search(context.Background(), models.SearchFilters{})
			if err == nil {
				t.Fatal("expected error")
			}
			if items == nil || len(items) != 0 {
				t.Errorf("items = %#v, want empty non-nil slice", items)
			}
		})
	}
}

func TestClientSearchUnexpectedStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "k", time.Second).Search(context.Background(), models.SearchFilters{})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("err = %v, want ErrUnexpectedStatus", err)
	}
}

func TestClientFetchDetail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2.2/films/301":
			_, _ = w.Write([]byte(detailResponseBody))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)

	detail, err := client.FetchDetail(context.Background(), 301)
	if err != nil {
		t.Fatalf("FetchDetail: %v", err)
	}
	if detail == nil || len(detail.Genres) != 2 || detail.Genres[0] != "фантастика" {
		t.Errorf("detail = %+v", detail)
	}

	missing, err := client.FetchDetail(context.Background(), 999)
	if err == nil {
		t.Error("expected error for unknown film")
	}
	if missing != nil {
		t.Errorf("detail = %+v, want nil", missing)
	}
}

func TestClientCanceledContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(searchResponseBody))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := NewClient(server.URL, "k", time.Second).Search(ctx, models.SearchFilters{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestGenres(t *testing.T) {
	t.Parallel()

	all := Genres()
	if len(all) != 32 {
		t.Fatalf("len = %d, want 32", len(all))
	}
	for i, g := range all {
		if g.ID != i+1 {
			t.Errorf("genres[%d].ID = %d, want %d", i, g.ID, i+1)
		}
	}
	if id, ok := GenreID(" ТРИЛЛЕР"); !ok || id != 1 {
		t.Errorf("GenreID(ТРИЛЛЕР) = %d, %v", id, ok)
	}
	if _, ok := GenreID("unknown"); ok {
		t.Error("unknown genre resolved")
	}
	if all[31].Name != "детский" {
		t.Errorf("genres[31].Name = %q, want детский", all[31].Name)
	}
}

// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinefeed/internal/config"
	"github.com/tomtom215/cinefeed/internal/database"
	"github.com/tomtom215/cinefeed/internal/ingest"
	"github.com/tomtom215/cinefeed/internal/mail"
	"github.com/tomtom215/cinefeed/internal/models"
	"github.com/tomtom215/cinefeed/internal/scheduler"
)

// testDBSemaphore keeps one DuckDB instance open at a time.
var testDBSemaphore = make(chan struct{}, 1)

type fakeIngester struct {
	mu      sync.Mutex
	saved   []*models.MovieRecord
	err     error
	filters []models.SearchFilters
}

func (f *fakeIngester) IngestFilms(_ context.Context, filters models.SearchFilters) (*ingest.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filters)
	if f.err != nil {
		return &ingest.Report{}, f.err
	}
	rep := &ingest.Report{Saved: f.saved}
	for _, m := range f.saved {
		rep.Outcomes = append(rep.Outcomes, ingest.Outcome{FilmID: m.FilmID, Title: m.Title, Status: ingest.StatusSaved})
	}
	return rep, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg *mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, *msg)
	return nil
}

type fakeScheduler struct {
	result  scheduler.RunResult
	err     error
	running bool
}

func (f *fakeScheduler) Run(context.Context) (scheduler.RunResult, error) { return f.result, f.err }
func (f *fakeScheduler) IsRunning() bool                                  { return f.running }

type fakeBus struct{ running bool }

func (f fakeBus) IsRunning() bool { return f.running }

type fakeBreaker struct{ state string }

func (f fakeBreaker) State() string { return f.state }

type testEnv struct {
	db        *database.DB
	ingester  *fakeIngester
	mailer    *fakeMailer
	scheduler *fakeScheduler
	handler   *Handler
	router    http.Handler
	genres    map[string]models.GenreRecord
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:        db,
		ingester:  &fakeIngester{},
		mailer:    &fakeMailer{},
		scheduler: &fakeScheduler{},
		genres:    make(map[string]models.GenreRecord),
	}
	for _, name := range []string{"драма", "комедия", "фантастика"} {
		g, err := db.Genres().FindOrCreate(context.Background(), name)
		if err != nil {
			t.Fatalf("FindOrCreate(%q): %v", name, err)
		}
		env.genres[name] = *g
	}

	env.handler, err = NewHandler(Deps{
		Ingester:  env.ingester,
		Movies:    db.Movies(),
		Genres:    db.Genres(),
		Mailer:    env.mailer,
		Scheduler: env.scheduler,
		DB:        db,
		Bus:       fakeBus{running: true},
		Breaker:   fakeBreaker{state: "closed"},
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	env.router = NewRouter(env.handler, RouterConfig{RateLimitDisabled: true})
	return env
}

func (e *testEnv) saveMovie(t *testing.T, filmID int64, title string, year int, rating float64, genres ...string) *models.MovieRecord {
	t.Helper()
	m := &models.MovieRecord{FilmID: filmID, Title: title, Year: year, Rating: rating, Description: title + " description"}
	for _, g := range genres {
		m.Genres = append(m.Genres, e.genres[g])
	}
	if err := e.db.Movies().Save(context.Background(), m); err != nil {
		t.Fatalf("Save(%d): %v", filmID, err)
	}
	return m
}

func (e *testEnv) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	body := decodeJSON[models.ErrorResponse](t, rec)
	if body.Status != "error" || body.Error == nil || body.Error.Code != code {
		t.Errorf("error body = %s, want code %s", rec.Body.String(), code)
	}
	if body.Metadata.RequestID == "" {
		t.Error("error response has no request id")
	}
}

func TestNewHandler_RequiresDeps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Deps)
	}{
		{"no ingester", func(d *Deps) { d.Ingester = nil }},
		{"no movies", func(d *Deps) { d.Movies = nil }},
		{"no genres", func(d *Deps) { d.Genres = nil }},
		{"no mailer", func(d *Deps) { d.Mailer = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := Deps{Ingester: &fakeIngester{}, Movies: &database.MovieStore{}, Genres: &database.GenreStore{}, Mailer: &fakeMailer{}}
			tt.mutate(&d)
			if _, err := NewHandler(d); err == nil {
				t.Error("NewHandler() error = nil")
			}
		})
	}
}

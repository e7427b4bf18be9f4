// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cinefeed/internal/config"
	"github.com/tomtom215/cinefeed/internal/eventprocessor"
	"github.com/tomtom215/cinefeed/internal/mail"
	"github.com/tomtom215/cinefeed/internal/report"
)

// fakeMailer records sent messages. Failures are consumed one per Send.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []*mail.Message
	failures int
	calls    atomic.Int32
}

var errSMTPDown = errors.New("smtp: connection refused")

func (m *fakeMailer) Send(_ context.Context, msg *mail.Message) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errSMTPDown
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) reports() []*mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mail.Message(nil), m.sent...)
}

func newTestCollector(t *testing.T, size int, mailer mail.Mailer) *Collector {
	t.Helper()
	c, err := NewCollector(&config.BatchConfig{
		Size:          size,
		Recipient:     "reports@example.com",
		SubjectPrefix: "Daily movies",
	}, mailer)
	if err != nil {
		t.Fatalf("NewCollector() error = %v", err)
	}
	c.now = func() time.Time { return time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC) }
	return c
}

func payload(filmID int) []byte {
	return []byte(fmt.Sprintf(`{"id":%d,"filmId":%d,"filmName":"Фильм %d","year":2000,"rating":"8.0","description":"","genres":["драма"]}`, filmID, filmID, filmID))
}

// reportFilmIDs parses a batch CSV report and returns the filmId column.
func reportFilmIDs(t *testing.T, content string) []string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	if err != nil {
		t.Fatalf("report is not valid CSV: %v\n%s", err, content)
	}
	if len(rows) == 0 || strings.Join(rows[0], ",") != "filmId,filmName,year,rating,description,genres" {
		t.Fatalf("unexpected header in report:\n%s", content)
	}
	ids := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ids = append(ids, row[0])
	}
	return ids
}

func TestNewCollector_Invalid(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	tests := []struct {
		name   string
		cfg    *config.BatchConfig
		mailer mail.Mailer
	}{
		{"nil config", nil, mailer},
		{"zero size", &config.BatchConfig{Size: 0, Recipient: "a@b.c"}, mailer},
		{"bad recipient", &config.BatchConfig{Size: 3, Recipient: "nobody"}, mailer},
		{"nil mailer", &config.BatchConfig{Size: 3, Recipient: "a@b.c"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewCollector(tt.cfg, tt.mailer); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewCollector() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestCollector_FlushesAtThreshold(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	c := newTestCollector(t, 3, mailer)
	ctx := context.Background()

	for i, id := range []int{1, 2} {
		r := c.OnMessage(ctx, payload(id))
		if !r.Accepted || r.Flushed || r.Buffered != i+1 {
			t.Fatalf("OnMessage(m%d) = %+v", id, r)
		}
	}
	if mailer.calls.Load() != 0 {
		t.Fatalf("flushed before threshold")
	}

	r := c.OnMessage(ctx, payload(3))
	if !r.Flushed || r.Buffered != 0 || r.FlushErr != nil {
		t.Fatalf("OnMessage(m3) = %+v, want flushed", r)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after flush", c.Len())
	}

	sent := mailer.reports()
	if len(sent) != 1 {
		t.Fatalf("sent %d reports, want 1", len(sent))
	}
	msg := sent[0]
	if msg.To != "reports@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if msg.Subject != "Daily movies - 2026-03-09" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.Type != report.TypeCSV {
		t.Errorf("Type = %q", msg.Type)
	}
	if got := strings.Join(reportFilmIDs(t, msg.Content), ","); got != "1,2,3" {
		t.Errorf("report film ids = %s, want 1,2,3", got)
	}
}

func TestCollector_FailedFlushKeepsBuffer(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{failures: 1}
	c := newTestCollector(t, 3, mailer)
	ctx := context.Background()

	c.OnMessage(ctx, payload(1))
	c.OnMessage(ctx, payload(2))

	r := c.OnMessage(ctx, payload(3))
	if r.Flushed || !errors.Is(r.FlushErr, errSMTPDown) {
		t.Fatalf("OnMessage(m3) = %+v, want dispatch failure", r)
	}
	if r.Buffered != 3 || c.Len() != 3 {
		t.Fatalf("buffer = %d after failed flush, want 3", c.Len())
	}

	r = c.OnMessage(ctx, payload(4))
	if !r.Flushed || r.Buffered != 0 {
		t.Fatalf("OnMessage(m4) = %+v, want successful retry", r)
	}

	sent := mailer.reports()
	if len(sent) != 1 {
		t.Fatalf("sent %d reports, want 1", len(sent))
	}
	if got := strings.Join(reportFilmIDs(t, sent[0].Content), ","); got != "1,2,3,4" {
		t.Errorf("report film ids = %s, want 1,2,3,4", got)
	}
	if mailer.calls.Load() != 2 {
		t.Errorf("mailer calls = %d, want 2", mailer.calls.Load())
	}
}

func TestCollector_MalformedMessageDropped(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	c := newTestCollector(t, 2, mailer)
	ctx := context.Background()

	c.OnMessage(ctx, payload(1))
	for _, bad := range []string{"", "not json", `{"filmId":`, `[1,2]`, "null", " null ", "\ufeffnull"} {
		r := c.OnMessage(ctx, []byte(bad))
		if !r.Dropped || r.Accepted || r.Buffered != 1 {
			t.Errorf("OnMessage(%q) = %+v, want dropped with buffer 1", bad, r)
		}
	}
	if mailer.calls.Load() != 0 {
		t.Error("malformed messages must not count towards the threshold")
	}

	err := c.Consume(ctx, []byte("garbage"))
	if !eventprocessor.IsPermanent(err) {
		t.Errorf("Consume(garbage) error = %v, want permanent", err)
	}
	if err := c.Consume(ctx, payload(2)); err != nil {
		t.Errorf("Consume(valid) error = %v", err)
	}
	if len(mailer.reports()) != 1 {
		t.Errorf("expected the valid message to complete the batch")
	}
}

func TestCollector_ConsumeIgnoresFlushFailure(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{failures: 1}
	c := newTestCollector(t, 1, mailer)

	if err := c.Consume(context.Background(), payload(1)); err != nil {
		t.Errorf("Consume() error = %v, want nil when the flush fails", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCollector_DuplicateDeliveryReportedTwice(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	c := newTestCollector(t, 2, mailer)
	ctx := context.Background()

	c.OnMessage(ctx, payload(7))
	c.OnMessage(ctx, payload(7))

	sent := mailer.reports()
	if len(sent) != 1 {
		t.Fatalf("sent %d reports, want 1", len(sent))
	}
	if got := strings.Join(reportFilmIDs(t, sent[0].Content), ","); got != "7,7" {
		t.Errorf("report film ids = %s, want 7,7", got)
	}
}

func TestCollector_DefaultsInReport(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	c := newTestCollector(t, 1, mailer)

	c.OnMessage(context.Background(), []byte(`{"filmId": 5, "rating": "", "genres": "драма, комедия"}`))

	sent := mailer.reports()
	if len(sent) != 1 {
		t.Fatalf("sent %d reports, want 1", len(sent))
	}
	rows, err := csv.NewReader(strings.NewReader(sent[0].Content)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	want := []string{"5", "Unknown", "", "N/A", "", "драма, комедия"}
	if strings.Join(rows[1], "|") != strings.Join(want, "|") {
		t.Errorf("row = %q, want %q", rows[1], want)
	}
}

func TestCollector_ManualFlush(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	c := newTestCollector(t, 10, mailer)
	ctx := context.Background()

	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush() on empty buffer error = %v", err)
	}
	if mailer.calls.Load() != 0 {
		t.Fatal("empty flush reached the mailer")
	}

	c.OnMessage(ctx, payload(1))
	c.OnMessage(ctx, payload(2))
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if c.Len() != 0 || len(mailer.reports()) != 1 {
		t.Errorf("Len() = %d, reports = %d", c.Len(), len(mailer.reports()))
	}
}

func TestCollector_ConcurrentDeliveries(t *testing.T) {
	t.Parallel()

	const (
		batchSize = 10
		total     = 200
		workers   = 8
	)

	mailer := &fakeMailer{failures: 3}
	c := newTestCollector(t, batchSize, mailer)
	ctx := context.Background()

	ids := make(chan int, total)
	for i := 1; i <= total; i++ {
		ids <- i
	}
	close(ids)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				c.OnMessage(ctx, payload(id))
			}
		}()
	}
	wg.Wait()
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("final Flush() error = %v", err)
	}

	seen := make(map[string]int, total)
	for _, msg := range mailer.reports() {
		rows := reportFilmIDs(t, msg.Content)
		if len(rows) < batchSize {
			// Only the final manual flush may be short.
			if msg != mailer.reports()[len(mailer.reports())-1] {
				t.Errorf("report with %d rows sent before threshold", len(rows))
			}
		}
		for _, id := range rows {
			seen[id]++
		}
	}
	if len(seen) != total {
		t.Errorf("reported %d distinct films, want %d", len(seen), total)
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("film %s reported %d times", id, n)
		}
	}
}

func TestBuffer(t *testing.T) {
	t.Parallel()

	var b Buffer
	if b.Len() != 0 {
		t.Fatalf("Len() = %d on empty buffer", b.Len())
	}

	c := newTestCollector(t, 100, &fakeMailer{})
	c.OnMessage(context.Background(), payload(1))
	c.OnMessage(context.Background(), payload(2))
	for _, m := range c.Pending() {
		b.Append(m)
	}

	snap := b.Snapshot()
	snap[0].FilmName = "changed"
	if b.Snapshot()[0].FilmName == "changed" {
		t.Error("Snapshot() shares storage with the buffer")
	}

	items := b.SwapAndClear()
	if len(items) != 2 || b.Len() != 0 {
		t.Errorf("SwapAndClear() = %d items, Len() = %d", len(items), b.Len())
	}
}

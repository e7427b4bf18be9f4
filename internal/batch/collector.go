// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

// Package batch accumulates movie messages from the bus and mails them as a
// CSV report once enough have arrived.
//
// A single mutex guards the buffer for the whole of append, threshold check
// and flush, so a flush in progress holds back every other delivery. A failed
// flush keeps the buffer; the messages go out with the next successful one.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/cinefeed/internal/config"
	"github.com/tomtom215/cinefeed/internal/eventprocessor"
	"github.com/tomtom215/cinefeed/internal/logging"
	"github.com/tomtom215/cinefeed/internal/mail"
	"github.com/tomtom215/cinefeed/internal/metrics"
	"github.com/tomtom215/cinefeed/internal/models"
	"github.com/tomtom215/cinefeed/internal/report"
)

// ErrInvalidConfig is returned by NewCollector for unusable settings.
var ErrInvalidConfig = errors.New("invalid batch configuration")

// Result describes what OnMessage did with one payload.
type Result struct {
	// Accepted is true when the payload parsed and was buffered.
	Accepted bool

	// Dropped is true when the payload could not be parsed.
	Dropped bool

	// Flushed is true when this message triggered a successful flush.
	Flushed bool

	// Buffered is the buffer length after the call.
	Buffered int

	// FlushErr is set when a flush was attempted and failed.
	FlushErr error
}

// Collector buffers movie messages and flushes them as a report.
type Collector struct {
	mu     sync.Mutex
	buffer Buffer

	size          int
	recipient     string
	subjectPrefix string

	mailer mail.Mailer
	now    func() time.Time
}

var _ eventprocessor.MessageConsumer = (*Collector)(nil)

// NewCollector returns a collector that flushes every cfg.Size messages
// to cfg.Recipient through mailer.
func NewCollector(cfg *config.BatchConfig, mailer mail.Mailer) (*Collector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if cfg.Size < 1 {
		return nil, fmt.Errorf("%w: size must be at least 1, got %d", ErrInvalidConfig, cfg.Size)
	}
	if !strings.Contains(cfg.Recipient, "@") {
		return nil, fmt.Errorf("%w: recipient %q is not an email address", ErrInvalidConfig, cfg.Recipient)
	}
	if mailer == nil {
		return nil, fmt.Errorf("%w: mailer is nil", ErrInvalidConfig)
	}
	return &Collector{
		size:          cfg.Size,
		recipient:     cfg.Recipient,
		subjectPrefix: cfg.SubjectPrefix,
		mailer:        mailer,
		now:           time.Now,
	}, nil
}

// OnMessage parses payload, buffers it and flushes when the buffer reaches
// the configured size. Malformed payloads are logged and dropped.
func (c *Collector) OnMessage(ctx context.Context, payload []byte) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, err := eventprocessor.ParseMovieMessage(payload)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Int("payload_bytes", len(payload)).
			Str("stage", "parse").
			Msg("Dropping unparseable movie message")
		return Result{Dropped: true, Buffered: c.buffer.Len()}
	}

	c.buffer.Append(*msg)
	metrics.BatchBufferSize.Set(float64(c.buffer.Len()))
	logging.Ctx(ctx).Debug().
		Str("film_id", msg.FilmIDString()).
		Int("buffered", c.buffer.Len()).
		Int("batch_size", c.size).
		Msg("Movie message buffered")

	result := Result{Accepted: true}
	if c.buffer.Len() >= c.size {
		if err := c.flushLocked(ctx); err != nil {
			result.FlushErr = err
		} else {
			result.Flushed = true
		}
	}
	result.Buffered = c.buffer.Len()
	return result
}

// Consume adapts OnMessage to the bus. Dropped payloads are reported as
// permanent so they are acked without retry; a failed flush is not an error
// for the message, which is already buffered.
func (c *Collector) Consume(ctx context.Context, payload []byte) error {
	if r := c.OnMessage(ctx, payload); r.Dropped {
		return eventprocessor.NewPermanentError("unparseable movie message", eventprocessor.ErrMalformedMessage)
	}
	return nil
}

// Flush sends whatever is buffered now, regardless of the threshold.
// An empty buffer is a no-op.
func (c *Collector) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffer.Len() == 0 {
		return nil
	}
	return c.flushLocked(ctx)
}

// flushLocked renders the buffer and mails it. The buffer is cleared only
// after the mailer reports success. c.mu must be held.
func (c *Collector) flushLocked(ctx context.Context) error {
	start := time.Now()
	messages := c.buffer.Snapshot()

	err := c.mailer.Send(ctx, &mail.Message{
		To:      c.recipient,
		Subject: c.Subject(),
		Type:    report.TypeCSV,
		Content: report.BatchCSV(messages),
	})
	metrics.RecordFlush(time.Since(start), err)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Int("buffered", len(messages)).
			Str("stage", "dispatch").
			Msg("Report dispatch failed, keeping buffer for the next flush")
		return fmt.Errorf("flush %d movies: %w", len(messages), err)
	}

	c.buffer.SwapAndClear()
	metrics.BatchBufferSize.Set(0)
	logging.Ctx(ctx).Info().
		Int("movies", len(messages)).
		Str("recipient", logging.SanitizeEmail(c.recipient)).
		Dur("duration", time.Since(start)).
		Msg("Movie report sent")
	return nil
}

// Subject is the mail subject for a report sent now.
func (c *Collector) Subject() string {
	return fmt.Sprintf("%s - %s", c.subjectPrefix, c.now().Format("2006-01-02"))
}

// Len returns the number of buffered messages.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Len()
}

// Pending returns a copy of the buffered messages.
func (c *Collector) Pending() []models.MovieMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Snapshot()
}

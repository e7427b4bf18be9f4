// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Collectors are process-global, so tests assert on deltas.

func TestRecordCatalogRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(CatalogRequests.WithLabelValues("detail", "success"))
	errBefore := testutil.ToFloat64(CatalogRequests.WithLabelValues("detail", "error"))

	RecordCatalogRequest("detail", 10*time.Millisecond, nil)
	RecordCatalogRequest("detail", 10*time.Millisecond, errors.New("timeout"))
	RecordCatalogRequest("detail", 10*time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(CatalogRequests.WithLabelValues("detail", "success")) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CatalogRequests.WithLabelValues("detail", "error")) - errBefore; got != 2 {
		t.Errorf("error delta = %v, want 2", got)
	}
}

func TestRecordFlush(t *testing.T) {
	okBefore := testutil.ToFloat64(BatchFlushes.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(BatchFlushes.WithLabelValues("error"))

	RecordFlush(time.Millisecond, errors.New("smtp down"))
	RecordFlush(time.Millisecond, nil)

	if got := testutil.ToFloat64(BatchFlushes.WithLabelValues("success")) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(BatchFlushes.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestRecordPublishAndMail(t *testing.T) {
	pubBefore := testutil.ToFloat64(BusMessagesPublished.WithLabelValues("error"))
	mailBefore := testutil.ToFloat64(MailDeliveries.WithLabelValues("simulated", "success"))

	RecordPublish(errors.New("nats unavailable"))
	RecordMail("simulated", nil)

	if got := testutil.ToFloat64(BusMessagesPublished.WithLabelValues("error")) - pubBefore; got != 1 {
		t.Errorf("publish error delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(MailDeliveries.WithLabelValues("simulated", "success")) - mailBefore; got != 1 {
		t.Errorf("mail delta = %v, want 1", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "movies"))

	RecordDBQuery("INSERT", "movies", time.Millisecond, nil)
	RecordDBQuery("INSERT", "movies", time.Millisecond, errors.New("constraint"))

	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "movies")) - before; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/cinefeed/internal/models"
	"github.com/tomtom215/cinefeed/internal/report"
)

func TestReportDownloads(t *testing.T) {
	t.Parallel()
	env := setupTestEnv(t)
	env.saveMovie(t, 10, `Say "Hi", World`, 2001, 7.25, "комедия")
	env.saveMovie(t, 11, "Old <b>film</b>", 1950, 6.0, "драма")

	rec := env.do(t, http.MethodGet, "/api/reports/csv?yearFrom=2000")
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=UTF-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=movies_report.csv" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	want := "filmId,filmName,year,rating,description\n" +
		`10,"Say ""Hi"", World",2001,7.3,"Say ""Hi"", World description"` + "\n"
	if rec.Body.String() != want {
		t.Errorf("csv body =\n%s\nwant\n%s", rec.Body.String(), want)
	}

	rec = env.do(t, http.MethodGet, "/api/reports/xml?yearTo=1960")
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=movies_report.xml" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?>`) ||
		!strings.Contains(body, "    <filmName>Old &lt;b&gt;film&lt;/b&gt;</filmName>\n") ||
		strings.Contains(body, "<filmId>10</filmId>") {
		t.Errorf("xml body =\n%s", body)
	}
}

func TestSendReport(t *testing.T) {
	t.Parallel()
	env := setupTestEnv(t)
	env.saveMovie(t, 10, "Брат", 1997, 8.3, "драма")

	rec := env.do(t, http.MethodPost, "/api/reports/send?email=user@example.com&reportType=XML")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeJSON[models.MessageResponse](t, rec).Message; got != "Report sent successfully to user@example.com" {
		t.Errorf("message = %q", got)
	}

	if len(env.mailer.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(env.mailer.sent))
	}
	msg := env.mailer.sent[0]
	if msg.To != "user@example.com" || msg.Subject != "Movies Report - xml" || msg.Type != report.TypeXML {
		t.Errorf("message = %+v", msg)
	}
	if !strings.Contains(msg.Content, "<filmName>Брат</filmName>") {
		t.Errorf("content = %s", msg.Content)
	}
}

func TestSendReport_Validation(t *testing.T) {
	t.Parallel()
	env := setupTestEnv(t)

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing email", "reportType=csv", ErrCodeBadRequest},
		{"email without at", "email=user.example.com&reportType=csv", ErrCodeBadRequest},
		{"missing type", "email=a@b.c", ErrCodeBadRequest},
		{"unknown type", "email=a@b.c&reportType=pdf", ErrCodeBadRequest},
		{"bad filter", "email=a@b.c&reportType=csv&yearFrom=soon", ErrCodeValidation},
	}
	for _, tt := range tests {
		rec := env.do(t, http.MethodPost, "/api/reports/send?"+tt.query)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, rec.Code)
			continue
		}
		assertError(t, rec, http.StatusBadRequest, tt.code)
	}
	if len(env.mailer.sent) != 0 {
		t.Errorf("sent %d messages for invalid requests", len(env.mailer.sent))
	}
}

func TestSendReport_MailFailure(t *testing.T) {
	t.Parallel()
	env := setupTestEnv(t)
	env.mailer.err = errors.New("smtp: 550 mailbox unavailable")

	rec := env.do(t, http.MethodPost, "/api/reports/send?email=a@b.c&reportType=csv")
	assertError(t, rec, http.StatusBadGateway, ErrCodeMailDelivery)
}

func TestSendReport_WrongMethod(t *testing.T) {
	t.Parallel()
	env := setupTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/reports/send?email=a@b.c&reportType=csv")
	assertError(t, rec, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed)
}

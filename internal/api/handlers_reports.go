// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/cinefeed/internal/logging"
	"github.com/tomtom215/cinefeed/internal/mail"
	"github.com/tomtom215/cinefeed/internal/models"
	"github.com/tomtom215/cinefeed/internal/report"
)

// reportSubjectPrefix starts the subject of on-demand report mails.
const reportSubjectPrefix = "Movies Report - "

// ReportCSV downloads stored films matching the filters as CSV.
//
// GET /api/reports/csv
func (h *Handler) ReportCSV(w http.ResponseWriter, r *http.Request) {
	h.downloadReport(w, r, report.TypeCSV)
}

// ReportXML downloads stored films matching the filters as XML.
//
// GET /api/reports/xml
func (h *Handler) ReportXML(w http.ResponseWriter, r *http.Request) {
	h.downloadReport(w, r, report.TypeXML)
}

func (h *Handler) downloadReport(w http.ResponseWriter, r *http.Request, t report.Type) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		respondValidationError(w, r, err)
		return
	}
	movies, err := h.deps.Movies.Find(r.Context(), filters)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to generate report", err)
		return
	}
	respondAttachment(w, t.MIMEType(), t.FileName(), report.Render(t, movies))
}

// SendReport mails a stored-film report.
//
// POST /api/reports/send?email&reportType&keyword&genre&yearFrom&yearTo&ratingFrom&ratingTo
func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	email := strings.TrimSpace(q.Get("email"))
	if !strings.Contains(email, "@") {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid email address", nil)
		return
	}
	rawType := strings.TrimSpace(q.Get("reportType"))
	if rawType == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Report type is required", nil)
		return
	}
	t, err := report.ParseType(rawType)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid report type. Use 'csv' or 'xml'", nil)
		return
	}

	filters, err := parseFilters(q)
	if err != nil {
		respondValidationError(w, r, err)
		return
	}
	movies, err := h.deps.Movies.Find(r.Context(), filters)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to generate report", err)
		return
	}

	msg := &mail.Message{
		To:      email,
		Subject: reportSubjectPrefix + string(t),
		Type:    t,
		Content: report.Render(t, movies),
	}
	if err := h.deps.Mailer.Send(r.Context(), msg); err != nil {
		respondError(w, r, http.StatusBadGateway, ErrCodeMailDelivery, "Failed to send report", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("to", logging.SanitizeEmail(email)).
		Str("report_type", string(t)).
		Int("movies", len(movies)).
		Msg("Report sent")
	respondJSON(w, http.StatusOK, &models.MessageResponse{Message: "Report sent successfully to " + email})
}

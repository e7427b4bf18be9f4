// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package models

import "time"

// ErrorResponse is the body of every non-2xx API response.
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "YearTo must be greater than or equal to YearFrom",
//	    "details": {"fields": ["YearTo"]}
//	  },
//	  "metadata": {"timestamp": "2026-03-09T07:00:00Z", "request_id": "..."}
//	}
type ErrorResponse struct {
	Status   string    `json:"status"`
	Error    *APIError `json:"error"`
	Metadata Metadata  `json:"metadata"`
}

// Metadata accompanies error responses.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable code plus a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SaveFilmsResponse answers an on-demand ingestion.
type SaveFilmsResponse struct {
	Message    string          `json:"message"`
	SavedFilms []MovieResponse `json:"savedFilms"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthStatus reports component health for GET /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	BusRunning        bool    `json:"bus_running"`
	RunInProgress     bool    `json:"run_in_progress"`
	CatalogBreaker    string  `json:"catalog_breaker,omitempty"`
	Uptime            float64 `json:"uptime_seconds"`
}

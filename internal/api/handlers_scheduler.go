// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cinefeed/internal/scheduler"
)

// RunScheduler performs a genre run now and returns its summary. A run that
// is already in progress yields 409.
//
// POST /api/scheduler/run
func (h *Handler) RunScheduler(w http.ResponseWriter, r *http.Request) {
	if h.deps.Scheduler == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Scheduler is disabled", nil)
		return
	}

	result, err := h.deps.Scheduler.Run(r.Context())
	switch {
	case errors.Is(err, scheduler.ErrRunInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "A genre run is already in progress", nil)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Genre run failed", err)
	default:
		respondJSON(w, http.StatusOK, result)
	}
}

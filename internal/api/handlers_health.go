// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinefeed/internal/models"
)

// Health reports component status. The service is "degraded" when the
// database does not answer or the bus router is not running; it always
// answers 200 so a load balancer can still reach the details.
//
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status: "healthy",
		Uptime: time.Since(h.startTime).Seconds(),
	}

	if h.deps.DB != nil {
		status.DatabaseConnected = h.deps.DB.Ping(r.Context()) == nil
		if !status.DatabaseConnected {
			status.Status = "degraded"
		}
	}
	if h.deps.Bus != nil {
		status.BusRunning = h.deps.Bus.IsRunning()
		if !status.BusRunning {
			status.Status = "degraded"
		}
	}
	if h.deps.Scheduler != nil {
		status.RunInProgress = h.deps.Scheduler.IsRunning()
	}
	if h.deps.Breaker != nil {
		status.CatalogBreaker = h.deps.Breaker.State()
	}

	respondJSON(w, http.StatusOK, status)
}

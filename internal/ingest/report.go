// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package ingest

import "github.com/tomtom215/cinefeed/internal/models"

// Status is the fate of one search candidate.
type Status string

const (
	// StatusSaved means the candidate was stored as a new movie.
	StatusSaved Status = "saved"

	// StatusSkippedExisting means the film id was already stored before the run.
	StatusSkippedExisting Status = "skipped_existing"

	// StatusSkippedDuplicate means a concurrent writer stored the film first.
	StatusSkippedDuplicate Status = "skipped_duplicate"

	// StatusFailed means the existence check or the save failed.
	StatusFailed Status = "failed"
)

// Outcome records what happened to a single candidate.
type Outcome struct {
	FilmID int64  `json:"filmId"`
	Title  string `json:"title"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`

	// DetailDegraded is set when the detail lookup failed and the summary
	// record from search was stored instead.
	DetailDegraded bool `json:"detailDegraded,omitempty"`

	// UnmatchedGenres lists genre names with no stored genre.
	UnmatchedGenres []string `json:"unmatchedGenres,omitempty"`
}

// Report is the result of one IngestFilms call.
type Report struct {
	// Saved holds the movies stored by this run, in search order.
	Saved []*models.MovieRecord

	// Outcomes has one entry per search candidate. Candidates dropped by the
	// existence check come first, then the rest in search order.
	Outcomes []Outcome
}

// Count returns how many candidates ended with status.
func (r *Report) Count(status Status) int {
	n := 0
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == status {
			n++
		}
	}
	return n
}

// Degraded returns how many stored movies lack detail data.
func (r *Report) Degraded() int {
	n := 0
	for i := range r.Outcomes {
		if r.Outcomes[i].DetailDegraded && r.Outcomes[i].Status == StatusSaved {
			n++
		}
	}
	return n
}

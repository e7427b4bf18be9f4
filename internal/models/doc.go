// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package models defines the data structures shared across Cinefeed.

Key Components:

  - CandidateRecord: a catalog search hit before dedup and enrichment
  - MovieRecord / GenreRecord: persisted rows of the movie store
  - MovieMessage: the bus payload announcing a stored movie
  - SearchFilters / ListOptions: catalog and store query parameters
  - MovieResponse, Page, ErrorResponse: HTTP response bodies

MovieRecord keeps its resolved genres out of its own JSON form; API views
that include genres go through NewMovieResponse or MovieSearchResult.

Errors:

  - ErrNotFound: a store lookup matched nothing
  - ErrDuplicateFilm: a concurrent writer stored the same film id first
*/
package models

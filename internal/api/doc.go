// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package api is cinefeed's HTTP surface, routed with chi.

# Routes

	GET  /health                               component status
	GET  /metrics                              Prometheus exposition
	GET  /api/v2/films                         search the catalog and store new films
	GET  /api/films                            paged listing of stored films
	GET  /api/films/{id}/response              one stored film by store id
	GET  /api/films/film-id/{filmId}/response  one stored film by catalog id
	GET  /api/movies/search?query=             title prefix search
	GET  /api/genres                           stored genres
	GET  /api/reports/csv, /api/reports/xml    report download
	POST /api/reports/send                     mail a report
	POST /api/scheduler/run                    genre run now (409 if one is running)

Filter parameters are keyword, genre, yearFrom, yearTo, ratingFrom and
ratingTo. They are validated with go-playground/validator through
internal/validation; an inverted range is a 400.

# Middleware

Every request gets a request id and a logging correlation id, is recovered
from panics and is counted in api_requests_total by route pattern. Routes
under /api are rate limited per client IP with httprate.

# Errors

Non-2xx responses share one envelope:

	{"status":"error","error":{"code":"NOT_FOUND","message":"Film not found"},
	 "metadata":{"timestamp":"...","request_id":"..."}}
*/
package api

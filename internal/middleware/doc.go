// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package middleware holds the HTTP middleware cinefeed mounts on its chi router.

  - RequestID: reuses or generates X-Request-ID and starts a logging
    correlation id for the request
  - PrometheusMetrics: counts requests and observes latency, labelled by the
    chi route pattern so path parameters do not explode label cardinality

Both have the func(http.Handler) http.Handler shape that chi's Use expects:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware

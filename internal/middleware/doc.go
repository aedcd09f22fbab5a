// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package middleware provides infrastructure HTTP middleware in chi's
func(http.Handler) http.Handler shape.

  - RequestID: keeps or assigns X-Request-ID and seeds the logging context
    with request_id and correlation_id.
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labelled by chi route pattern.
  - Compression: gzip for clients that accept it.

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Group(func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)
		r.Get("/api/v1/content/{kind}", h.ListContent)
	})

Authentication and authorization middleware live in the auth and authz
packages.
*/
package middleware

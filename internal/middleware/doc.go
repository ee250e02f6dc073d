// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

/*
Package middleware provides the HTTP middleware used by the tracker's API
server.

  - RequestID: assigns or propagates X-Request-ID and uses it as the logging
    correlation id for the request.
  - PrometheusMetrics: counts requests and observes latency per chi route
    pattern and status code.

Both have the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package server exposes a small local HTTP API next to the tracker:
//
//	GET  /healthz                     poller, history and webhook state
//	GET  /metrics                     Prometheus metrics
//	GET  /api/visits                  visits reported by the last poll
//	GET  /api/notifications           delivery history (join_id, action, since, limit)
//	GET  /api/notifications/summary   per-action counts
//	POST /api/preview                 compose a snapshot without sending it
//	GET  /api/live                    websocket snapshot feed, when Deps.Live is set
//
// Responses use the models.APIResponse envelope. JSON routes run under
// Deps.Timeout; the live feed does not.
package server

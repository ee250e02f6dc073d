// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package websocket streams roster snapshots to connected clients.
//
// The Hub subscribes to the event bus like the notifier does and pushes
// every snapshot as a {"type": "snapshot", "data": {...}} frame. Clients may
// send {"type": "ping"} and receive {"type": "pong"}; the server also sends
// websocket pings so idle connections stay open.
package websocket

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package history keeps a DuckDB log of every delivery decision the notifier
// makes: created messages, edits, skipped duplicates and failures. The status
// API lists it at /api/notifications.
package history

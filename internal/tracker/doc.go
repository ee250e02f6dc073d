// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package tracker polls the VRCX database and publishes one roster snapshot
// per recent visit of the logged-in user.
//
// A cycle runs on startup, on every PollInterval tick and, when WatchPath is
// set, shortly after VRCX writes to its database. Each cycle carries its own
// correlation id through the logs and the published snapshots.
package tracker

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package vrcx reads VRCX's SQLite database (VRCX.sqlite3) without writing
// to it.
//
// Three queries are used: the last logged-in user id from configs, the
// viewer's recent visits from gamelog_join_leave paired with gamelog_location
// for world names, and the per-visit roster with friend flags from the
// <user>_friend_log_current table.
package vrcx

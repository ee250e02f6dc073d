// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package discord is a minimal Discord webhook client.
//
// It supports exactly what the tracker needs: executing a webhook with
// ?wait=true to learn the new message id, and editing that message later
// through /messages/{id}. Calls are rate limited with golang.org/x/time/rate
// and guarded by a sony/gobreaker circuit breaker.
package discord

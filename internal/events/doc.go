// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package events carries roster snapshots from the tracker to the notifier
// over an in-process watermill GoChannel.
//
// The poller publishes and moves on; the notifier consumes at webhook pace.
// Failed deliveries land on TopicFailedSnapshots and are logged.
package events

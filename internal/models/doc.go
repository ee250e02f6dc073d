// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

/*
Package models defines the data structures shared between the VRCX reader,
the embed composer, the notifier and the HTTP API.

Key types:

  - RosterRecord: one member's presence summary for a visit
  - InstanceContext: the reporting location and the viewer
  - Visit: one of the viewer's own stays, keyed by the join row id
  - Snapshot: the roster of one visit observed in one poll cycle
  - NotificationRecord: one delivery attempt, stored in history
  - APIResponse: the JSON envelope used by the HTTP API

All types carry JSON tags; Snapshot is the wire format of the internal
message bus and of the preview endpoint.
*/
package models

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package notify delivers composed roster embeds to a Discord webhook.
//
// Each visit (VRCX join id) owns exactly one Discord message. The first
// snapshot of a visit posts it and records the message id in the mapping
// store; later snapshots edit that message. When the composed embed has the
// same fingerprint as the last delivered one the edit is skipped. When the
// message was deleted or rejected, a new one is posted and the mapping is
// replaced. Transient webhook failures are returned so the next poll cycle
// retries.
package notify

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package store persists which Discord message reports which visit.
//
// Each visit is identified by the VRCX join id of the viewer's own join
// record. The notifier edits the stored message on later poll cycles and
// replaces the mapping when the message has been deleted. Mappings live in
// BadgerDB under "msg:<join id>" keys; ImportLegacyJSON migrates the flat
// discord-messages.json file once.
package store

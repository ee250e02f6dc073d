// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package cache provides the in-memory LRU cache with TTL used to remember
// the fingerprint of the embed last posted for each visit.
//
// The notifier consults it before hitting Discord so an unchanged roster does
// not produce an edit request:
//
//	last := cache.NewLRU[string](4096, cfg.Discord.DedupeTTL)
//	if fp, ok := last.Get(key); ok && fp == msg.Fingerprint() {
//		return // unchanged
//	}
package cache

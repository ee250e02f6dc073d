// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import "unicode/utf8"

// Limits holds the structural caps of a Discord embed.
type Limits struct {
	Total       int // sum of title, description, author, footer, field names and values
	Fields      int
	FieldValue  int
	FieldName   int
	Title       int
	Description int
	Author      int
	Footer      int
}

// DiscordLimits are the caps enforced by the Discord API.
var DiscordLimits = Limits{
	Total:       6000,
	Fields:      25,
	FieldValue:  1024,
	FieldName:   256,
	Title:       256,
	Description: 4096,
	Author:      256,
	Footer:      2048,
}

// Len returns the length of s in UTF-16 code units.
func Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 && r <= utf8.MaxRune {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// truncate shortens s to at most max UTF-16 code units without splitting a
// surrogate pair.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i, r := range s {
		w := 1
		if r >= 0x10000 {
			w = 2
		}
		if n+w > max {
			return s[:i]
		}
		n += w
	}
	return s
}

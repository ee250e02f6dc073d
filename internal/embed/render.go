// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import (
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/models"
)

// Tier controls how much detail a member line carries.
type Tier int

// Tiers, richest first.
const (
	// TierFull renders glyph, profile link, name and timestamps.
	TierFull Tier = iota
	// TierCompact drops the profile link.
	TierCompact
	// TierMinimal renders glyph and name only.
	TierMinimal
)

func (t Tier) String() string {
	switch t {
	case TierFull:
		return "Full"
	case TierCompact:
		return "Compact"
	case TierMinimal:
		return "Minimal"
	default:
		return "Tier(" + strconv.Itoa(int(t)) + ")"
	}
}

// Status glyphs, in precedence order.
const (
	GlyphOwner   = "👑"
	GlyphSelf    = "👤"
	GlyphFriend  = "⭐️"
	GlyphDefault = "⬜️"
)

// UnknownTime is rendered in place of a missing join timestamp.
const UnknownTime = "unknown"

const profileURL = "https://vrchat.com/home/user/"

// nameReplacer flattens line breaks and swaps backticks, which cannot be
// escaped inside a code span, for U+02CB MODIFIER LETTER GRAVE ACCENT.
var nameReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "`", "\u02cb")

// Glyph returns the status glyph for rec as seen by viewerID.
func Glyph(rec models.RosterRecord, viewerID string) string {
	switch {
	case rec.IsInstanceOwner:
		return GlyphOwner
	case viewerID != "" && rec.UserID == viewerID:
		return GlyphSelf
	case rec.IsFriend:
		return GlyphFriend
	default:
		return GlyphDefault
	}
}

// RenderLine renders one roster record at the given tier. The result never
// contains a newline.
func RenderLine(rec models.RosterRecord, tier Tier, viewerID string) string {
	var b strings.Builder
	b.WriteString(Glyph(rec, viewerID))
	b.WriteByte(' ')

	name := "`" + Sanitize(nameReplacer.Replace(rec.DisplayName)) + "`"

	switch tier {
	case TierFull:
		b.WriteByte('[')
		b.WriteString(name)
		b.WriteString("](")
		b.WriteString(profileURL)
		b.WriteString(rec.UserID)
		b.WriteString("): ")
		b.WriteString(presenceText(rec))
	case TierCompact:
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(presenceText(rec))
	default:
		b.WriteString(name)
	}
	return b.String()
}

// presenceText renders the join/leave annotation of a record.
func presenceText(rec models.RosterRecord) string {
	switch {
	case rec.IsCurrently && rec.LastJoinAt != nil:
		return timestamp(*rec.LastJoinAt, 'f') + " (" + timestamp(*rec.LastJoinAt, 'R') + ")"
	case rec.HasLeft():
		s := joinText(rec) + " - " + timestamp(*rec.LastLeaveAt, 'f')
		if rec.LastJoinAt != nil {
			if d := FormatDuration(rec.LastLeaveAt.Sub(*rec.LastJoinAt)); d != "" {
				s += " (" + d + ")"
			}
		}
		return s
	default:
		return joinText(rec)
	}
}

func joinText(rec models.RosterRecord) string {
	if rec.LastJoinAt == nil {
		return UnknownTime
	}
	return timestamp(*rec.LastJoinAt, 'f')
}

// timestamp renders t as a Discord timestamp token, which clients display in
// the reader's locale and time zone.
func timestamp(t time.Time, style byte) string {
	return "<t:" + strconv.FormatInt(t.Unix(), 10) + ":" + string(style) + ">"
}

// FormatDuration renders d as days, hours, minutes and seconds, omitting
// zero units. A zero duration renders as "0 seconds" and a negative one as
// the empty string. Sub-second precision is discarded.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return ""
	}

	total := int64(d / time.Second)
	units := []struct {
		n    int64
		name string
	}{
		{total / 86400, "day"},
		{total % 86400 / 3600, "hour"},
		{total % 3600 / 60, "minute"},
		{total % 60, "second"},
	}

	parts := make([]string, 0, len(units))
	for _, u := range units {
		if u.n == 0 {
			continue
		}
		p := strconv.FormatInt(u.n, 10) + " " + u.name
		if u.n != 1 {
			p += "s"
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, " ")
}

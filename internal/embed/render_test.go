// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/models"
)

func tp(sec int64) *time.Time {
	t := time.Unix(sec, 0).UTC()
	return &t
}

func TestGlyph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  models.RosterRecord
		want string
	}{
		{"owner wins over self", models.RosterRecord{UserID: "me", IsInstanceOwner: true}, GlyphOwner},
		{"owner wins over friend", models.RosterRecord{UserID: "x", IsInstanceOwner: true, IsFriend: true}, GlyphOwner},
		{"self wins over friend", models.RosterRecord{UserID: "me", IsFriend: true}, GlyphSelf},
		{"friend", models.RosterRecord{UserID: "x", IsFriend: true}, GlyphFriend},
		{"default", models.RosterRecord{UserID: "x"}, GlyphDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Glyph(tt.rec, "me"); got != tt.want {
				t.Errorf("Glyph() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  models.RosterRecord
		tier Tier
		want string
	}{
		{
			name: "full present",
			rec:  models.RosterRecord{UserID: "usr_a", DisplayName: "Alice", LastJoinAt: tp(1700000000), IsCurrently: true, IsFriend: true},
			tier: TierFull,
			want: "⭐️ [`Alice`](https://vrchat.com/home/user/usr_a): <t:1700000000:f> (<t:1700000000:R>)",
		},
		{
			name: "compact left with duration",
			rec:  models.RosterRecord{UserID: "usr_b", DisplayName: "Bob", LastJoinAt: tp(1700000000), LastLeaveAt: tp(1700003723)},
			tier: TierCompact,
			want: "⬜️ `Bob`: <t:1700000000:f> - <t:1700003723:f> (1 hour 2 minutes 3 seconds)",
		},
		{
			name: "backtick in name",
			rec:  models.RosterRecord{UserID: "usr_d", DisplayName: "a`b``c"},
			tier: TierMinimal,
			want: "⬜️ `a\u02cbb\u02cb\u02cbc`",
		},
		{
			name: "left without join",
			rec:  models.RosterRecord{UserID: "usr_b", DisplayName: "Bob", LastLeaveAt: tp(1700003723)},
			tier: TierCompact,
			want: "⬜️ `Bob`: unknown - <t:1700003723:f>",
		},
		{
			name: "present with stale leave",
			rec:  models.RosterRecord{UserID: "usr_c", DisplayName: "Cat", LastJoinAt: tp(1700000000), LastLeaveAt: tp(1699990000), IsCurrently: true},
			tier: TierCompact,
			want: "⬜️ `Cat`: <t:1700000000:f> (<t:1700000000:R>)",
		},
		{
			name: "past with stale leave",
			rec:  models.RosterRecord{UserID: "usr_c", DisplayName: "Cat", LastJoinAt: tp(1700000000), LastLeaveAt: tp(1700000000)},
			tier: TierCompact,
			want: "⬜️ `Cat`: <t:1700000000:f>",
		},
		{
			name: "no timestamps",
			rec:  models.RosterRecord{UserID: "usr_d", DisplayName: "Dee"},
			tier: TierCompact,
			want: "⬜️ `Dee`: unknown",
		},
		{
			name: "minimal self",
			rec:  models.RosterRecord{UserID: "me", DisplayName: "Me", LastJoinAt: tp(1700000000), IsCurrently: true},
			tier: TierMinimal,
			want: "👤 `Me`",
		},
		{
			name: "empty name",
			rec:  models.RosterRecord{UserID: "usr_e"},
			tier: TierMinimal,
			want: "⬜️ ``",
		},
		{
			name: "name with line breaks",
			rec:  models.RosterRecord{UserID: "usr_f", DisplayName: "a\r\nb\nc"},
			tier: TierMinimal,
			want: "⬜️ `a b c`",
		},
		{
			name: "name sanitized",
			rec:  models.RosterRecord{UserID: "usr_g", DisplayName: "a__b", IsInstanceOwner: true},
			tier: TierMinimal,
			want: "👑 `a\\_\\_b`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderLine(tt.rec, tt.tier, "me")
			if got != tt.want {
				t.Errorf("RenderLine() = %q, want %q", got, tt.want)
			}
			if strings.ContainsAny(got, "\r\n") {
				t.Errorf("RenderLine() contains a line break: %q", got)
			}
		})
	}
}

func TestRenderLine_TiersShrink(t *testing.T) {
	t.Parallel()

	rec := models.RosterRecord{UserID: "usr_a", DisplayName: "Alice", LastJoinAt: tp(1700000000), LastLeaveAt: tp(1700000100)}
	full := Len(RenderLine(rec, TierFull, ""))
	compact := Len(RenderLine(rec, TierCompact, ""))
	minimal := Len(RenderLine(rec, TierMinimal, ""))
	if !(full > compact && compact > minimal) {
		t.Errorf("Expected full > compact > minimal, got %d, %d, %d", full, compact, minimal)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{500 * time.Millisecond, "0 seconds"},
		{time.Second, "1 second"},
		{90 * time.Second, "1 minute 30 seconds"},
		{time.Hour, "1 hour"},
		{25 * time.Hour, "1 day 1 hour"},
		{48*time.Hour + 5*time.Second, "2 days 5 seconds"},
		{-time.Second, ""},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTier_String(t *testing.T) {
	t.Parallel()

	if TierFull.String() != "Full" || TierCompact.String() != "Compact" || TierMinimal.String() != "Minimal" {
		t.Error("unexpected tier names")
	}
	if got := Tier(9).String(); got != "Tier(9)" {
		t.Errorf("Tier(9).String() = %q", got)
	}
}

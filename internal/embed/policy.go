// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

// Group titles.
const (
	CurrentTitle = "Current Members"
	PastTitle    = "Past Members"
)

// Policy pairs the tiers used for the current and past groups. Only a
// reducible policy may fall back to Reduce.
type Policy struct {
	Current   Tier
	Past      Tier
	Reducible bool
}

func (p Policy) String() string {
	return p.Current.String() + "/" + p.Past.String()
}

// Policies is tried in order; the first that validates wins. The last entry
// is the reducible Minimal/Minimal sentinel.
var Policies = []Policy{
	{Current: TierFull, Past: TierFull},
	{Current: TierFull, Past: TierCompact},
	{Current: TierFull, Past: TierMinimal},
	{Current: TierCompact, Past: TierMinimal},
	{Current: TierMinimal, Past: TierMinimal, Reducible: true},
}

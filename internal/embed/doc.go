// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

/*
Package embed composes a VRChat instance roster into a single Discord embed
that always satisfies Discord's structural limits.

The composer works in three stages:

 1. BuildHeader produces the fixed preamble (title, launch URL, member
    counts, author, footer, color) and rejects a malformed location id.
 2. For each Policy in Policies, richest first, the current and past groups
    are rendered line by line (RenderLine) and packed into fields of at most
    1024 UTF-16 units (Pack). The first assembled message that passes
    Validate is returned.
 3. When even the Minimal/Minimal policy overflows, Reduce trims fields and
    then lines of the last field, appending an ellipsis line. If that still
    cannot fit, composition fails with a CompositionExhaustedError.

Sizes are measured in UTF-16 code units because that is how Discord counts
embed lengths.

Usage:

	c := embed.NewComposer(embed.Options{Footer: "VRCX Discord Tracker"})
	msg, err := c.Compose(instance, records)
	if err != nil {
	    return err
	}
	log.Printf("policy %s, %d fields", msg.Policy, len(msg.Segments))

Composer holds no mutable state and is safe for concurrent use.
*/
package embed

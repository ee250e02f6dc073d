// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import (
	"github.com/dlclark/regexp2"
)

// underscoreRun matches a run of two or three underscores that is neither
// inside a custom emoji token (<:name:id>, <a:name:id>) nor part of a URL.
// Go's regexp package has no lookbehind, hence regexp2.
var underscoreRun = regexp2.MustCompile(`(?<!<a?:.+|https?://\S+)__(_)?(?!:\d+>)`, regexp2.None)

// Sanitize escapes underscore runs so Discord renders them literally.
//
// A double underscore becomes `\_\_`. Triple runs alternate the position of
// the spare underscore, `_\_\_` on odd occurrences and `\_\__` on even ones,
// so that adjacent runs stay balanced. Sanitize is not idempotent: callers
// sanitize raw text exactly once.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	triples := 0
	out, err := underscoreRun.ReplaceFunc(text, func(m regexp2.Match) string {
		g := m.GroupByNumber(1)
		if g == nil || len(g.Captures) == 0 {
			return `\_\_`
		}
		triples++
		if triples%2 == 1 {
			return g.String() + `\_\_`
		}
		return `\_\_` + g.String()
	}, -1, -1)
	if err != nil {
		// Only a match timeout can fail here and none is configured.
		return text
	}
	return out
}

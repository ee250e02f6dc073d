// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import "strings"

// Ellipsis is appended as the last line of a field the reducer truncated.
const Ellipsis = "..."

// Reduce trims segments until header plus segments validate. It works on a
// private copy of segments:
//
//  1. keep only the first limits.Fields segments;
//  2. drop trailing segments one at a time; as soon as a removal makes the
//     embed valid, put the removed segment back so that step 3 can keep as
//     much of it as possible (stops at a single segment);
//  3. drop trailing lines of the last segment until the remaining lines plus
//     an Ellipsis line validate; a segment that runs out of lines is removed.
//
// Each step returns as soon as the embed validates. If nothing fits a
// *CompositionExhaustedError is returned. Every loop strictly shrinks its
// input, so Reduce always terminates.
func Reduce(h Header, segments []Segment, limits Limits) ([]Segment, error) {
	work := make([]Segment, len(segments))
	copy(work, segments)

	if Validate(h, work, limits) == nil {
		return work, nil
	}

	// Step 1.
	if limits.Fields >= 0 && len(work) > limits.Fields {
		work = work[:limits.Fields]
		if Validate(h, work, limits) == nil {
			return work, nil
		}
	}

	// Step 2.
	for len(work) > 1 {
		removed := work[len(work)-1]
		work = work[:len(work)-1]
		if Validate(h, work, limits) == nil {
			work = append(work, removed)
			break
		}
	}

	// Step 3.
	if len(work) > 0 {
		last := len(work) - 1
		title := work[last].Title
		lines := work[last].Lines()
		for len(lines) > 1 {
			lines = lines[:len(lines)-1]
			work[last] = Segment{Title: title, Text: strings.Join(lines, "\n") + "\n" + Ellipsis}
			if Validate(h, work, limits) == nil {
				return work, nil
			}
		}
		work = work[:last]
	}

	err := Validate(h, work, limits)
	if err == nil {
		return work, nil
	}

	lineCount := 0
	for _, s := range segments {
		lineCount += len(s.Lines())
	}
	return nil, &CompositionExhaustedError{
		Segments:   len(segments),
		Lines:      lineCount,
		HeaderSize: h.Size(),
		Cause:      err,
	}
}

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import "strings"

// ContinuationTitle names every field after the first of a group. Discord
// rejects empty field names, so a zero-width space is used.
const ContinuationTitle = "\u200b"

// Segment is one embed field: a title and up to FieldValue units of text.
type Segment struct {
	Title string
	Text  string
}

// Size returns the segment's contribution to the embed total.
func (s Segment) Size() int {
	return Len(s.Title) + Len(s.Text)
}

// Lines splits the segment text back into lines.
func (s Segment) Lines() []string {
	if s.Text == "" {
		return nil
	}
	return strings.Split(s.Text, "\n")
}

// Pack greedily joins lines with "\n" into segments whose text stays within
// maxLen UTF-16 units. Lines are never split: a line that alone exceeds
// maxLen is placed in a segment of its own and left for Validate to reject.
// Whitespace-only lines are dropped. The first segment is titled with title,
// the rest with ContinuationTitle. No lines yield no segments.
func Pack(lines []string, title string, maxLen int) []Segment {
	var (
		segments []Segment
		open     []string
		openLen  int
	)

	flush := func() {
		if len(open) == 0 {
			return
		}
		name := ContinuationTitle
		if len(segments) == 0 {
			name = title
		}
		segments = append(segments, Segment{Title: name, Text: strings.Join(open, "\n")})
		open = nil
		openLen = 0
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := Len(line)
		if len(open) > 0 && openLen+1+n > maxLen {
			flush()
		}
		if len(open) == 0 {
			openLen = n
		} else {
			openLen += 1 + n
		}
		open = append(open, line)
	}
	flush()

	return segments
}

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/zeebo/blake3"

	"github.com/tomtom215/vrcxtracker/internal/models"
)

// Message is a composed embed that satisfies the limits it was built with.
type Message struct {
	Header   Header
	Segments []Segment
	Policy   Policy
	Reduced  bool // the reducer trimmed the Policy's output
}

// Size returns the embed total in UTF-16 units.
func (m *Message) Size() int {
	n := m.Header.Size()
	for _, s := range m.Segments {
		n += s.Size()
	}
	return n
}

// Fingerprint hashes everything but the timestamp, so two compositions of
// the same roster compare equal.
func (m *Message) Fingerprint() string {
	hasher := blake3.New()
	write := func(s string) {
		// Length prefix keeps adjacent fields from running together.
		_, _ = hasher.Write([]byte(strconv.Itoa(len(s))))
		_, _ = hasher.Write([]byte{':'})
		_, _ = hasher.Write([]byte(s))
	}
	write(m.Header.Title)
	write(m.Header.URL)
	write(m.Header.Description)
	write(m.Header.Author)
	write(m.Header.Footer)
	write(strconv.Itoa(m.Header.Color))
	for _, s := range m.Segments {
		write(s.Title)
		write(s.Text)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Options configures a Composer. Zero values select the defaults.
type Options struct {
	Footer string
	Limits Limits
	Now    func() time.Time
}

// Composer turns a roster into a Message. It holds only immutable
// configuration and is safe for concurrent use.
type Composer struct {
	footer string
	limits Limits
	now    func() time.Time
}

// NewComposer returns a Composer for opts.
func NewComposer(opts Options) *Composer {
	c := &Composer{
		footer: opts.Footer,
		limits: opts.Limits,
		now:    opts.Now,
	}
	if c.footer == "" {
		c.footer = DefaultFooter
	}
	if c.limits == (Limits{}) {
		c.limits = DiscordLimits
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Limits returns the caps the composer builds against.
func (c *Composer) Limits() Limits {
	return c.limits
}

// Compose builds the richest Message for the roster that fits the limits.
// It returns a *FormatError for a malformed location id and a
// *CompositionExhaustedError when not even the reduced Minimal/Minimal
// rendering fits. A nil Message accompanies every error.
func (c *Composer) Compose(ic models.InstanceContext, records []models.RosterRecord) (*Message, error) {
	h, err := BuildHeader(ic, records, c.footer, c.now().UTC(), c.limits)
	if err != nil {
		return nil, err
	}

	current, past := models.SplitRoster(records)

	var last []Segment
	for _, p := range Policies {
		segments := append(
			c.group(current, CurrentTitle, p.Current, ic.UserID),
			c.group(past, PastTitle, p.Past, ic.UserID)...,
		)
		if Validate(h, segments, c.limits) == nil {
			return &Message{Header: h, Segments: segments, Policy: p}, nil
		}
		if p.Reducible {
			reduced, err := Reduce(h, segments, c.limits)
			if err != nil {
				return nil, err
			}
			return &Message{Header: h, Segments: reduced, Policy: p, Reduced: true}, nil
		}
		last = segments
	}

	// Reached only when Policies has no reducible entry.
	reduced, err := Reduce(h, last, c.limits)
	if err != nil {
		return nil, err
	}
	return &Message{Header: h, Segments: reduced, Policy: Policies[len(Policies)-1], Reduced: true}, nil
}

func (c *Composer) group(records []models.RosterRecord, title string, tier Tier, viewerID string) []Segment {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, RenderLine(r, tier, viewerID))
	}
	return Pack(lines, title, c.limits.FieldValue)
}

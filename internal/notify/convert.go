// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package notify

import (
	"time"

	"github.com/tomtom215/vrcxtracker/internal/discord"
	"github.com/tomtom215/vrcxtracker/internal/embed"
)

// ToDiscord converts a composed message to the webhook wire format.
func ToDiscord(m *embed.Message) discord.Embed {
	e := discord.Embed{
		Title:       m.Header.Title,
		Description: m.Header.Description,
		URL:         m.Header.URL,
		Color:       m.Header.Color,
		Fields:      make([]discord.EmbedField, 0, len(m.Segments)),
	}
	if !m.Header.Timestamp.IsZero() {
		e.Timestamp = m.Header.Timestamp.UTC().Format(time.RFC3339)
	}
	if m.Header.Author != "" {
		e.Author = &discord.EmbedAuthor{Name: m.Header.Author}
	}
	if m.Header.Footer != "" {
		e.Footer = &discord.EmbedFooter{Text: m.Header.Footer}
	}
	for _, s := range m.Segments {
		e.Fields = append(e.Fields, discord.EmbedField{Name: s.Title, Value: s.Text})
	}
	return e
}

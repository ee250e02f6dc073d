// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/discord"
	"github.com/tomtom215/vrcxtracker/internal/embed"
	"github.com/tomtom215/vrcxtracker/internal/logging"
)

// Lifecycle is a tracker start or stop event.
type Lifecycle int

const (
	Started Lifecycle = iota
	Stopped
)

func (l Lifecycle) String() string {
	if l == Stopped {
		return "stopped"
	}
	return "started"
}

// Announce posts a short lifecycle message when the matching
// NotifyOnStart/NotifyOnExit option is set. It is a no-op otherwise.
func (n *Notifier) Announce(ctx context.Context, event Lifecycle) error {
	if (event == Started && !n.cfg.NotifyOnStart) || (event == Stopped && !n.cfg.NotifyOnExit) {
		return nil
	}

	color := embed.ColorActive
	if event == Stopped {
		color = embed.ColorInactive
	}
	e := discord.Embed{
		Title:     fmt.Sprintf("VRCX Discord Tracker %s", event),
		Color:     color,
		Timestamp: n.now().UTC().Format(time.RFC3339),
		Footer:    &discord.EmbedFooter{Text: n.cfg.Footer},
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := n.sender.Send(ctx, e); err != nil {
		return fmt.Errorf("announce %s: %w", event, err)
	}
	logging.Ctx(ctx).Info().Str("event", event.String()).Msg("Posted lifecycle announcement")
	return nil
}

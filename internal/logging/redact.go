// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package logging

import (
	"net/url"
	"strings"
)

// RedactWebhookURL hides the secret token of a Discord webhook URL
// (https://discord.com/api/webhooks/ID/TOKEN) so it can be logged. The id is
// kept to tell webhooks apart. Unparseable input is fully masked.
func RedactWebhookURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "[REDACTED]"
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "webhooks" && i+2 < len(parts) {
			parts[i+2] = "[REDACTED]"
			break
		}
	}
	u.Path = "/" + strings.Join(parts, "/")
	u.RawQuery = ""
	return u.Scheme + "://" + u.Host + u.Path
}

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package websocket

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/vrcxtracker/internal/logging"
)

// Handler upgrades requests and registers them with the hub. Browser
// origins must match the request host or be listed in allowedOrigins;
// requests without an Origin header come from non-browser clients and are
// accepted.
func (h *Hub) Handler(allowedOrigins []string) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, allowedOrigins)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response.
			logging.Debug().Err(err).Msg("Live feed upgrade failed")
			return
		}
		c := newClient(h, conn)
		select {
		case h.register <- c:
		case <-time.After(writeWait):
			_ = conn.Close()
			return
		}
		go c.writePump()
		go c.readPump()
	})
}

func originAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	logging.Warn().Str("origin", strings.ReplaceAll(origin, "\n", "")).Msg("Live feed connection rejected from foreign origin")
	return false
}

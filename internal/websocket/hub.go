// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/models"
)

// Message types.
const (
	MessageTypeSnapshot = "snapshot"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Message is one frame sent to or received from a client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SnapshotData is the live view of one visit's roster.
type SnapshotData struct {
	JoinID        int64                 `json:"join_id"`
	Location      string                `json:"location"`
	WorldName     string                `json:"world_name,omitempty"`
	Current       []models.RosterRecord `json:"current"`
	Past          []models.RosterRecord `json:"past"`
	ObservedAt    time.Time             `json:"observed_at"`
	CorrelationID string                `json:"correlation_id,omitempty"`
}

// Hub fans broadcast messages out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a Hub. Call Run before registering clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run serves registrations and broadcasts until ctx is canceled, then closes
// every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		// Lifecycle events are drained before broadcasts so a client that
		// just registered receives the next message.
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
			continue
		case c := <-h.unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	logging.Debug().Int("clients", n).Msg("Live feed client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	logging.Debug().Int("clients", n).Msg("Live feed client disconnected")
}

// sorted returns clients in id order. Callers hold mu.
func (h *Hub) sorted() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// broadcastToClients drops clients whose send buffer is full.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sorted() {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
			logging.Warn().Uint64("client", c.id).Msg("Live feed client too slow, disconnected")
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.clients)
	for _, c := range h.sorted() {
		close(c.send)
		delete(h.clients, c)
	}
	logging.Info().Str("component", "live-feed").Int("clients_closed", n).Msg("Live feed stopped")
}

// Broadcast queues a message for every client. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
	default:
		logging.Warn().Str("message_type", messageType).Msg("Live feed queue full, dropping message")
	}
}

// HandleSnapshot broadcasts a snapshot. It has the events.SnapshotHandler
// signature so the hub can subscribe to the event bus.
func (h *Hub) HandleSnapshot(_ context.Context, snap models.Snapshot) error {
	current, past := models.SplitRoster(snap.Records)
	h.Broadcast(MessageTypeSnapshot, SnapshotData{
		JoinID:        snap.JoinID,
		Location:      snap.Context.LocationID,
		WorldName:     snap.Context.WorldName,
		Current:       nonNil(current),
		Past:          nonNil(past),
		ObservedAt:    snap.ObservedAt,
		CorrelationID: snap.CorrelationID,
	})
	return nil
}

func nonNil(r []models.RosterRecord) []models.RosterRecord {
	if r == nil {
		return []models.RosterRecord{}
	}
	return r
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// String implements fmt.Stringer for suture.
func (h *Hub) String() string {
	return "live-feed"
}

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/models"
)

// Topics
const (
	TopicSnapshots       = "vrcx.snapshots"
	TopicFailedSnapshots = "vrcx.snapshots.failed"
)

// Metadata keys
const (
	metadataJoinID   = "join_id"
	metadataLocation = "location"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event bus is closed")

// SnapshotHandler processes one roster snapshot. ctx carries the
// correlation id of the poll cycle that produced it.
type SnapshotHandler func(ctx context.Context, snap models.Snapshot) error

// Config configures the bus.
type Config struct {
	// BufferSize is the per-subscriber channel buffer.
	BufferSize int64
	// CloseTimeout bounds how long Close waits for running handlers.
	CloseTimeout time.Duration
	// Logger defaults to the zerolog bridge.
	Logger watermill.LoggerAdapter
}

// Bus is an in-process pub/sub for roster snapshots built on a watermill
// GoChannel and router. Handler failures are acknowledged and forwarded to
// TopicFailedSnapshots so a poison snapshot is never redelivered in a loop;
// the next poll cycle publishes fresh state anyway.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter

	mu      sync.RWMutex
	closed  bool
	started bool
	failed  int
	handled int
}

// NewBus creates the bus. Register handlers with HandleSnapshots, then Run.
func NewBus(cfg Config) (*Bus, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger("events"))
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	b := &Bus{pubsub: pubsub, router: router, logger: logger}

	poison, err := middleware.PoisonQueue(pubsub, TopicFailedSnapshots)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer, poison)

	router.AddNoPublisherHandler("failed-snapshots", TopicFailedSnapshots, pubsub, b.logFailed)
	return b, nil
}

// PublishSnapshot encodes snap and publishes it on TopicSnapshots. The
// correlation id from ctx (or snap.CorrelationID) travels in the metadata.
func (b *Bus) PublishSnapshot(ctx context.Context, snap models.Snapshot) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	if snap.CorrelationID == "" {
		snap.CorrelationID = logging.CorrelationID(ctx)
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metadataJoinID, strconv.FormatInt(snap.JoinID, 10))
	msg.Metadata.Set(metadataLocation, snap.Context.LocationID)
	if snap.CorrelationID != "" {
		middleware.SetCorrelationID(snap.CorrelationID, msg)
	}

	if err := b.pubsub.Publish(TopicSnapshots, msg); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// HandleSnapshots registers h as a consumer of TopicSnapshots. It must be
// called before Run.
func (b *Bus) HandleSnapshots(name string, h SnapshotHandler) {
	b.router.AddNoPublisherHandler(name, TopicSnapshots, b.pubsub, func(msg *message.Message) error {
		var snap models.Snapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			return fmt.Errorf("decode snapshot %s: %w", msg.UUID, err)
		}

		ctx := msg.Context()
		if id := middleware.MessageCorrelationID(msg); id != "" {
			ctx = logging.WithCorrelationID(ctx, id)
		}
		if err := h(ctx, snap); err != nil {
			return err
		}

		b.mu.Lock()
		b.handled++
		b.mu.Unlock()
		return nil
	})
}

func (b *Bus) logFailed(msg *message.Message) error {
	b.mu.Lock()
	b.failed++
	b.mu.Unlock()

	logging.Warn().
		Str("message_id", msg.UUID).
		Str("join_id", msg.Metadata.Get(metadataJoinID)).
		Str("location", msg.Metadata.Get(metadataLocation)).
		Str("correlation_id", middleware.MessageCorrelationID(msg)).
		Str("reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey)).
		Msg("Snapshot handler failed")
	return nil
}

// Run starts the router and blocks until ctx is cancelled or Close is
// called.
func (b *Bus) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.started = true
	b.mu.Unlock()
	return b.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Stats returns the number of snapshots handled and failed.
func (b *Bus) Stats() (handled, failed int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handled, b.failed
}

// Close stops the router, if it ran, and the pub/sub. Run after Close
// returns ErrClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	started := b.started
	b.mu.Unlock()

	// A router that never ran would wait CloseTimeout for handlers that
	// were never started.
	var routerErr error
	if started {
		routerErr = b.router.Close()
	}
	pubsubErr := b.pubsub.Close()
	return errors.Join(routerErr, pubsubErr)
}

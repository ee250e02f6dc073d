// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/cache"
	"github.com/tomtom215/vrcxtracker/internal/discord"
	"github.com/tomtom215/vrcxtracker/internal/embed"
	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/metrics"
	"github.com/tomtom215/vrcxtracker/internal/models"
	"github.com/tomtom215/vrcxtracker/internal/store"
)

// Sender delivers embeds to Discord.
type Sender interface {
	Send(ctx context.Context, embeds ...discord.Embed) (string, error)
	Edit(ctx context.Context, messageID string, embeds ...discord.Embed) error
}

// MappingStore persists which message reports which visit.
type MappingStore interface {
	Get(ctx context.Context, joinID int64) (store.Mapping, error)
	Put(ctx context.Context, m store.Mapping) error
}

// HistoryRecorder receives one record per create, update or failure.
type HistoryRecorder interface {
	Record(ctx context.Context, rec models.NotificationRecord) (models.NotificationRecord, error)
}

// Config configures a Notifier.
type Config struct {
	Footer         string
	DedupeTTL      time.Duration
	DedupeCapacity int
	NotifyOnStart  bool
	NotifyOnExit   bool
}

// Result describes what Deliver did.
type Result struct {
	Action    string
	MessageID string
	Message   *embed.Message
}

// Notifier turns snapshots into one Discord message per visit: the first
// snapshot creates the message, later ones edit it, and an unchanged
// composition is skipped.
type Notifier struct {
	cfg      Config
	composer *embed.Composer
	sender   Sender
	mappings MappingStore
	history  HistoryRecorder
	last     *cache.LRU[string]
	now      func() time.Time

	// mu serializes deliveries so two snapshots of one visit cannot both
	// create a message.
	mu sync.Mutex
}

// New creates a Notifier. history may be nil.
func New(cfg Config, composer *embed.Composer, sender Sender, mappings MappingStore, history HistoryRecorder) *Notifier {
	if cfg.DedupeCapacity <= 0 {
		cfg.DedupeCapacity = 1024
	}
	if cfg.Footer == "" {
		cfg.Footer = embed.DefaultFooter
	}
	return &Notifier{
		cfg:      cfg,
		composer: composer,
		sender:   sender,
		mappings: mappings,
		history:  history,
		last:     cache.NewLRU[string](cfg.DedupeCapacity, cfg.DedupeTTL),
		now:      time.Now,
	}
}

// HandleSnapshot is the events.SnapshotHandler form of Deliver.
func (n *Notifier) HandleSnapshot(ctx context.Context, snap models.Snapshot) error {
	_, err := n.Deliver(ctx, snap)
	return err
}

// Deliver composes snap and creates or edits its Discord message.
func (n *Notifier) Deliver(ctx context.Context, snap models.Snapshot) (Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	log := logging.Ctx(ctx).With().Int64("join_id", snap.JoinID).Str("location", snap.Context.LocationID).Logger()
	current, past := models.SplitRoster(snap.Records)
	rec := models.NotificationRecord{
		JoinID:       snap.JoinID,
		Location:     snap.Context.LocationID,
		WorldName:    snap.Context.WorldName,
		CurrentCount: len(current),
		PastCount:    len(past),
	}

	start := time.Now()
	msg, err := n.composer.Compose(snap.Context, snap.Records)
	if err != nil {
		metrics.RecordCompositionError(compositionReason(err))
		n.fail(ctx, rec, err)
		return Result{Action: models.ActionError}, fmt.Errorf("compose join %d: %w", snap.JoinID, err)
	}
	metrics.RecordComposition(msg.Policy.String(), msg.Reduced, msg.Size(), time.Since(start))

	fp := msg.Fingerprint()
	rec.Policy = msg.Policy.String()
	rec.Reduced = msg.Reduced
	rec.Fingerprint = fp
	payload := ToDiscord(msg)

	mapping, err := n.mappings.Get(ctx, snap.JoinID)
	switch {
	case err == nil:
		if last, ok := n.last.Get(mapping.MessageID); ok && last == fp {
			metrics.RecordNotification(models.ActionSkip)
			metrics.DedupeCacheSize.Set(float64(n.last.Len()))
			return Result{Action: models.ActionSkip, MessageID: mapping.MessageID, Message: msg}, nil
		}

		editErr := n.sender.Edit(ctx, mapping.MessageID, payload)
		if editErr == nil {
			n.remember(mapping.MessageID, fp)
			mapping.UpdatedAt = n.now().UTC()
			mapping.Location = snap.Context.LocationID
			if err := n.mappings.Put(ctx, mapping); err != nil {
				log.Warn().Err(err).Msg("Failed to refresh message mapping")
			}
			rec.MessageID = mapping.MessageID
			rec.Action = models.ActionUpdate
			n.succeed(ctx, rec)
			log.Debug().Str("message_id", mapping.MessageID).Str("policy", rec.Policy).Msg("Updated Discord message")
			return Result{Action: models.ActionUpdate, MessageID: mapping.MessageID, Message: msg}, nil
		}
		if !replaceable(editErr) {
			rec.MessageID = mapping.MessageID
			n.fail(ctx, rec, editErr)
			return Result{Action: models.ActionError, MessageID: mapping.MessageID}, fmt.Errorf("edit message %s: %w", mapping.MessageID, editErr)
		}
		log.Info().Err(editErr).Str("message_id", mapping.MessageID).Msg("Existing message unusable, posting a new one")
		n.last.Remove(mapping.MessageID)

	case errors.Is(err, store.ErrNotFound):
	default:
		n.fail(ctx, rec, err)
		return Result{Action: models.ActionError}, fmt.Errorf("look up message for join %d: %w", snap.JoinID, err)
	}

	id, err := n.sender.Send(ctx, payload)
	if err != nil {
		n.fail(ctx, rec, err)
		return Result{Action: models.ActionError}, fmt.Errorf("send message for join %d: %w", snap.JoinID, err)
	}
	n.remember(id, fp)

	now := n.now().UTC()
	if err := n.mappings.Put(ctx, store.Mapping{
		JoinID:    snap.JoinID,
		MessageID: id,
		Location:  snap.Context.LocationID,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		log.Error().Err(err).Str("message_id", id).Msg("Failed to store message mapping")
	}

	rec.MessageID = id
	rec.Action = models.ActionCreate
	n.succeed(ctx, rec)
	log.Info().Str("message_id", id).Str("policy", rec.Policy).Bool("reduced", rec.Reduced).Msg("Posted Discord message")
	return Result{Action: models.ActionCreate, MessageID: id, Message: msg}, nil
}

func (n *Notifier) remember(messageID, fingerprint string) {
	n.last.Set(messageID, fingerprint)
	metrics.DedupeCacheSize.Set(float64(n.last.Len()))
}

func (n *Notifier) succeed(ctx context.Context, rec models.NotificationRecord) {
	metrics.RecordNotification(rec.Action)
	n.record(ctx, rec)
}

func (n *Notifier) fail(ctx context.Context, rec models.NotificationRecord, err error) {
	metrics.RecordNotification(models.ActionError)
	rec.Action = models.ActionError
	rec.Error = err.Error()
	n.record(ctx, rec)
}

func (n *Notifier) record(ctx context.Context, rec models.NotificationRecord) {
	if n.history == nil {
		return
	}
	rec.CreatedAt = n.now().UTC()
	if _, err := n.history.Record(ctx, rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to record notification history")
	}
}

// replaceable reports whether an edit failure means the message should be
// posted again rather than retried on the next cycle.
func replaceable(err error) bool {
	if errors.Is(err, discord.ErrMessageNotFound) {
		return true
	}
	var serr *discord.StatusError
	if errors.As(err, &serr) {
		return !serr.Temporary()
	}
	return false
}

func compositionReason(err error) string {
	switch {
	case errors.Is(err, embed.ErrMalformedLocation):
		return metrics.ReasonMalformed
	case errors.Is(err, embed.ErrCompositionExhausted):
		return metrics.ReasonExhausted
	default:
		return metrics.ReasonOther
	}
}

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/metrics"
	"github.com/tomtom215/vrcxtracker/internal/models"
	"github.com/tomtom215/vrcxtracker/internal/vrcx"
)

// Poll triggers, used as the trigger metric label.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerWatch    = "watch"
)

// Poll stages, used as the failing stage metric label.
const (
	stageUser      = "user_id"
	stageLocations = "locations"
	stageMembers   = "members"
	stagePublish   = "publish"
)

// ErrNoLocations is logged, not returned, when the viewer has no visit
// within the lookback window.
var ErrNoLocations = errors.New("no recent locations")

// Source reads the VRCX database. Satisfied by *vrcx.Database.
type Source interface {
	UserID(ctx context.Context) (string, error)
	MyLocations(ctx context.Context, userID string, count int, lookback time.Duration) ([]vrcx.Location, error)
	InstanceMembers(ctx context.Context, userID string, loc vrcx.Location) ([]models.RosterRecord, error)
}

// Publisher receives one snapshot per visit per cycle. Satisfied by
// *events.Bus.
type Publisher interface {
	PublishSnapshot(ctx context.Context, snap models.Snapshot) error
}

// Config configures a Poller.
type Config struct {
	PollInterval  time.Duration
	LocationCount int
	Lookback      time.Duration

	// WatchPath is the database file to watch. Empty disables watching.
	WatchPath     string
	WatchDebounce time.Duration
}

// Poller reads the viewer's recent visits and their rosters on every tick
// and publishes them as snapshots.
type Poller struct {
	cfg    Config
	source Source
	pub    Publisher
	now    func() time.Time

	// ready, when set, is waited on before the first cycle.
	ready <-chan struct{}

	mu          sync.RWMutex
	visits      []models.Visit
	lastSuccess time.Time
	lastErr     error
}

// New creates a Poller.
func New(cfg Config, source Source, pub Publisher) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.LocationCount <= 0 {
		cfg.LocationCount = 5
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 12 * time.Hour
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = time.Second
	}
	return &Poller{cfg: cfg, source: source, pub: pub, now: time.Now}
}

// WaitFor delays the first cycle until ready is closed, typically the
// event bus Running channel.
func (p *Poller) WaitFor(ready <-chan struct{}) {
	p.ready = ready
}

// Run polls until ctx is canceled.
func (p *Poller) Run(ctx context.Context) error {
	if p.ready != nil {
		select {
		case <-p.ready:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	changes, stop, err := p.watch(ctx)
	if err != nil {
		logging.Warn().Err(err).Str("path", p.cfg.WatchPath).Msg("Database watch unavailable, polling on interval only")
	}
	defer stop()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.cycle(ctx, TriggerStartup)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.cycle(ctx, TriggerInterval)
		case <-changes:
			if debounce == nil {
				debounce = time.After(p.cfg.WatchDebounce)
			}
		case <-debounce:
			debounce = nil
			p.cycle(ctx, TriggerWatch)
			ticker.Reset(p.cfg.PollInterval)
		}
	}
}

func (p *Poller) cycle(ctx context.Context, trigger string) {
	ctx = logging.WithNewCorrelationID(ctx)
	if err := p.Poll(ctx, trigger); err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrNoLocations) {
			logging.Ctx(ctx).Debug().Str("trigger", trigger).Msg("No recent locations")
			return
		}
		logging.Ctx(ctx).Warn().Err(err).Str("trigger", trigger).Msg("Poll cycle failed")
	}
}

// Poll runs one cycle: it resolves the viewer, reads their recent visits and
// publishes a snapshot for each.
func (p *Poller) Poll(ctx context.Context, trigger string) (err error) {
	start := time.Now()
	stage := ""
	visits := 0
	defer func() {
		if errors.Is(err, ErrNoLocations) {
			metrics.RecordPoll(trigger, 0, time.Since(start), "", nil)
		} else {
			metrics.RecordPoll(trigger, visits, time.Since(start), stage, err)
		}
		p.finish(err)
	}()

	stage = stageUser
	userID, err := p.source.UserID(ctx)
	if err != nil {
		return fmt.Errorf("resolve viewer: %w", err)
	}

	stage = stageLocations
	locations, err := p.source.MyLocations(ctx, userID, p.cfg.LocationCount, p.cfg.Lookback)
	if err != nil {
		return fmt.Errorf("read locations: %w", err)
	}
	if len(locations) == 0 {
		p.setVisits(nil)
		return ErrNoLocations
	}

	observed := p.now().UTC()
	cid := logging.CorrelationID(ctx)
	tracked := make([]models.Visit, 0, len(locations))
	for _, loc := range locations {
		stage = stageMembers
		records, err := p.source.InstanceMembers(ctx, userID, loc)
		if err != nil {
			return fmt.Errorf("read members of join %d: %w", loc.JoinID, err)
		}

		stage = stagePublish
		snap := models.Snapshot{
			JoinID:        loc.JoinID,
			Context:       loc.Context(),
			Records:       records,
			ObservedAt:    observed,
			CorrelationID: cid,
		}
		if err := p.pub.PublishSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("publish join %d: %w", loc.JoinID, err)
		}
		tracked = append(tracked, loc.Visit())
	}
	stage = ""
	visits = len(tracked)
	p.setVisits(tracked)

	logging.Ctx(ctx).Debug().Str("trigger", trigger).Int("visits", visits).Dur("took", time.Since(start)).Msg("Poll cycle complete")
	return nil
}

func (p *Poller) setVisits(v []models.Visit) {
	p.mu.Lock()
	p.visits = v
	p.mu.Unlock()
}

func (p *Poller) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil || errors.Is(err, ErrNoLocations) {
		p.lastSuccess = p.now().UTC()
		p.lastErr = nil
		return
	}
	p.lastErr = err
}

// Visits returns the visits reported by the last successful cycle, newest
// last.
func (p *Poller) Visits() []models.Visit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Visit, len(p.visits))
	copy(out, p.visits)
	return out
}

// Status returns the time of the last successful cycle and the error of the
// last cycle, if it failed.
func (p *Poller) Status() (lastSuccess time.Time, lastErr error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSuccess, p.lastErr
}

// String implements fmt.Stringer for suture.
func (p *Poller) String() string {
	return "vrcx-poller"
}

// watch reports writes to the database file and its -wal/-journal
// companions. The directory is watched since SQLite replaces journal files.
func (p *Poller) watch(ctx context.Context) (<-chan struct{}, func(), error) {
	noop := func() {}
	if p.cfg.WatchPath == "" {
		return nil, noop, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, noop, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(p.cfg.WatchPath)); err != nil {
		_ = w.Close()
		return nil, noop, fmt.Errorf("watch %s: %w", filepath.Dir(p.cfg.WatchPath), err)
	}

	base := filepath.Base(p.cfg.WatchPath)
	changes := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !relevant(ev, base) {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Warn().Err(err).Msg("Database watcher error")
			}
		}
	}()

	stop := func() {
		_ = w.Close()
		<-done
	}
	return changes, stop, nil
}

func relevant(ev fsnotify.Event, base string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), base)
}

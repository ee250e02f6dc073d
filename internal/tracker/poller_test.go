// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tomtom215/vrcxtracker/internal/models"
	"github.com/tomtom215/vrcxtracker/internal/vrcx"
)

const testLocation = "wrld_4cf554b4-430c-4f8f-b53e-1f294eed230b:12345~region(eu)"

type fakeSource struct {
	userErr    error
	locErr     error
	membersErr error
	locations  []vrcx.Location

	mu       sync.Mutex
	count    int
	lookback time.Duration
}

func (f *fakeSource) UserID(context.Context) (string, error) {
	if f.userErr != nil {
		return "", f.userErr
	}
	return "usr_viewer", nil
}

func (f *fakeSource) MyLocations(_ context.Context, _ string, count int, lookback time.Duration) ([]vrcx.Location, error) {
	f.mu.Lock()
	f.count, f.lookback = count, lookback
	f.mu.Unlock()
	return f.locations, f.locErr
}

func (f *fakeSource) InstanceMembers(_ context.Context, userID string, _ vrcx.Location) ([]models.RosterRecord, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return []models.RosterRecord{{UserID: userID, DisplayName: "Viewer", IsCurrently: true}}, nil
}

type fakePublisher struct {
	mu    sync.Mutex
	snaps []models.Snapshot
	err   error
	ch    chan models.Snapshot
}

func (f *fakePublisher) PublishSnapshot(_ context.Context, snap models.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.snaps = append(f.snaps, snap)
	f.mu.Unlock()
	if f.ch != nil {
		f.ch <- snap
	}
	return nil
}

func locations(ids ...int64) []vrcx.Location {
	out := make([]vrcx.Location, len(ids))
	for i, id := range ids {
		out[i] = vrcx.Location{
			JoinID:     id,
			UserID:     "usr_viewer",
			LocationID: testLocation,
			JoinedAt:   time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
			WorldName:  "The Black Cat",
		}
	}
	return out
}

func TestPoller_Poll(t *testing.T) {
	t.Parallel()

	src := &fakeSource{locations: locations(10, 11)}
	pub := &fakePublisher{}
	p := New(Config{LocationCount: 3, Lookback: time.Hour}, src, pub)

	if err := p.Poll(context.Background(), TriggerInterval); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(pub.snaps) != 2 {
		t.Fatalf("published %d snapshots, want 2", len(pub.snaps))
	}
	if pub.snaps[0].JoinID != 10 || pub.snaps[1].JoinID != 11 {
		t.Errorf("join ids = %d,%d", pub.snaps[0].JoinID, pub.snaps[1].JoinID)
	}
	if pub.snaps[0].Context.LocationID != testLocation {
		t.Errorf("location = %q", pub.snaps[0].Context.LocationID)
	}
	if src.count != 3 || src.lookback != time.Hour {
		t.Errorf("MyLocations(count=%d, lookback=%v)", src.count, src.lookback)
	}
	if got := len(p.Visits()); got != 2 {
		t.Errorf("Visits() = %d, want 2", got)
	}
	if last, err := p.Status(); last.IsZero() || err != nil {
		t.Errorf("Status() = %v, %v", last, err)
	}
}

func TestPoller_PollCarriesCorrelationID(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	p := New(Config{}, &fakeSource{locations: locations(1)}, pub)
	p.cycle(context.Background(), TriggerStartup)

	if len(pub.snaps) != 1 {
		t.Fatalf("published %d snapshots, want 1", len(pub.snaps))
	}
	if pub.snaps[0].CorrelationID == "" {
		t.Error("snapshot has no correlation id")
	}
}

func TestPoller_PollErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name    string
		src     *fakeSource
		pubErr  error
		wantErr error
	}{
		{name: "user", src: &fakeSource{userErr: vrcx.ErrUserNotFound}, wantErr: vrcx.ErrUserNotFound},
		{name: "locations", src: &fakeSource{locErr: boom}, wantErr: boom},
		{name: "no locations", src: &fakeSource{}, wantErr: ErrNoLocations},
		{name: "members", src: &fakeSource{locations: locations(1), membersErr: boom}, wantErr: boom},
		{name: "publish", src: &fakeSource{locations: locations(1)}, pubErr: boom, wantErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := New(Config{}, tt.src, &fakePublisher{err: tt.pubErr})
			err := p.Poll(context.Background(), TriggerInterval)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Poll() error = %v, want %v", err, tt.wantErr)
			}
			_, lastErr := p.Status()
			if errors.Is(tt.wantErr, ErrNoLocations) {
				if lastErr != nil {
					t.Errorf("Status() error = %v, want nil", lastErr)
				}
				return
			}
			if lastErr == nil {
				t.Error("Status() error = nil")
			}
		})
	}
}

func TestPoller_RunWaitsForReady(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{ch: make(chan models.Snapshot, 4)}
	p := New(Config{PollInterval: time.Hour}, &fakeSource{locations: locations(1)}, pub)
	ready := make(chan struct{})
	p.WaitFor(ready)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case <-pub.ch:
		t.Fatal("published before ready")
	case <-time.After(50 * time.Millisecond):
	}

	close(ready)
	select {
	case <-pub.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no startup cycle after ready")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestPoller_RunPollsOnDatabaseWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "VRCX.sqlite3")
	if err := os.WriteFile(dbPath, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	pub := &fakePublisher{ch: make(chan models.Snapshot, 4)}
	p := New(Config{
		PollInterval:  time.Hour,
		WatchPath:     dbPath,
		WatchDebounce: 10 * time.Millisecond,
	}, &fakeSource{locations: locations(1)}, pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	select {
	case <-pub.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no startup cycle")
	}

	// The watcher starts before the startup cycle, so this write is seen.
	if err := os.WriteFile(dbPath+"-wal", []byte("y"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-pub.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no cycle after database write")
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/d/VRCX.sqlite3", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/d/VRCX.sqlite3-wal", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/d/VRCX.sqlite3-journal", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/d/VRCX.sqlite3", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/d/VRCX.sqlite3-shm", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/d/other.db", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.ev, "VRCX.sqlite3"); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(joinID int64, action string, at time.Time) models.NotificationRecord {
	return models.NotificationRecord{
		JoinID:       joinID,
		MessageID:    "111",
		Action:       action,
		Location:     "wrld_a:1",
		WorldName:    "Test World",
		CurrentCount: 3,
		PastCount:    1,
		Policy:       "Full/Full",
		Fingerprint:  "abc",
		CreatedAt:    at,
	}
}

func TestStore_RecordAndList(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	inputs := []models.NotificationRecord{
		record(1, models.ActionCreate, base),
		record(1, models.ActionUpdate, base.Add(time.Minute)),
		record(1, models.ActionSkip, base.Add(2*time.Minute)),
		record(2, models.ActionCreate, base.Add(3*time.Minute)),
	}
	for _, in := range inputs {
		out, err := s.Record(ctx, in)
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if out.ID == "" {
			t.Error("Record() did not assign an id")
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
		first  string
	}{
		{"all", Filter{}, 4, models.ActionCreate},
		{"by join", Filter{JoinID: 1}, 3, models.ActionSkip},
		{"by action", Filter{Action: models.ActionCreate}, 2, models.ActionCreate},
		{"since", Filter{Since: base.Add(90 * time.Second)}, 2, models.ActionCreate},
		{"limit", Filter{Limit: 1}, 1, models.ActionCreate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("List() len = %d, want %d", len(got), tt.want)
			}
			if got[0].Action != tt.first {
				t.Errorf("first action = %q, want %q", got[0].Action, tt.first)
			}
		})
	}
}

func TestStore_RoundTripFields(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	in := models.NotificationRecord{
		JoinID:   9,
		Action:   models.ActionError,
		Location: "wrld_b:2",
		Reduced:  true,
		Error:    "webhook returned 500",
	}
	if _, err := s.Record(ctx, in); err != nil {
		t.Fatal(err)
	}
	got, err := s.List(ctx, Filter{JoinID: 9})
	if err != nil || len(got) != 1 {
		t.Fatalf("List() = %v, %v", got, err)
	}
	rec := got[0]
	if rec.MessageID != "" || rec.WorldName != "" || rec.Policy != "" {
		t.Errorf("empty strings should round-trip as empty: %+v", rec)
	}
	if !rec.Reduced || rec.Error != "webhook returned 500" {
		t.Errorf("got %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestStore_SummarizeAndPrune(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	empty, err := s.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize() on empty table error = %v", err)
	}
	if empty.Total != 0 || empty.LastAt != nil {
		t.Errorf("empty summary = %+v", empty)
	}

	for i, action := range []string{models.ActionCreate, models.ActionUpdate, models.ActionUpdate} {
		if _, err := s.Record(ctx, record(int64(i%2+1), action, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := s.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if sum.Total != 3 || sum.Visits != 2 || sum.ByAction[models.ActionUpdate] != 2 {
		t.Errorf("Summarize() = %+v", sum)
	}
	if sum.LastAt == nil || !sum.LastAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("LastAt = %v", sum.LastAt)
	}

	n, err := s.Prune(ctx, base.Add(90*time.Minute))
	if err != nil || n != 2 {
		t.Errorf("Prune() = %d, %v; want 2", n, err)
	}
}

func TestStore_OnDiskAndClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.duckdb")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Record(ctx, record(1, models.ActionCreate, time.Now())); !errors.Is(err, ErrClosed) {
		t.Errorf("Record() after close error = %v, want ErrClosed", err)
	}
}

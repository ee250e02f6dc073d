// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/models"
)

func fixedNow() time.Time { return testNow }

func newTestComposer() *Composer {
	return NewComposer(Options{Now: fixedNow})
}

func roster(n int, present bool, nameLen int) []models.RosterRecord {
	records := make([]models.RosterRecord, n)
	for i := range records {
		records[i] = models.RosterRecord{
			UserID:      fmt.Sprintf("usr_%08d-0000-0000-0000-000000000000", i),
			DisplayName: fmt.Sprintf("%0*d", nameLen, i),
			LastJoinAt:  tp(1700000000 + int64(i)),
			IsCurrently: present,
		}
		if !present {
			records[i].LastLeaveAt = tp(1700003600 + int64(i))
		}
	}
	return records
}

func assertValid(t *testing.T, msg *Message, limits Limits) {
	t.Helper()
	if err := Validate(msg.Header, msg.Segments, limits); err != nil {
		t.Fatalf("composed message invalid: %v", err)
	}
	if msg.Size() > limits.Total {
		t.Fatalf("size %d exceeds %d", msg.Size(), limits.Total)
	}
}

func TestCompose_EmptyRoster(t *testing.T) {
	t.Parallel()

	msg, err := newTestComposer().Compose(testContext(), nil)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(msg.Segments) != 0 {
		t.Errorf("segments = %d, want 0", len(msg.Segments))
	}
	if !strings.Contains(msg.Header.Description, "Current Members Count: 0") ||
		!strings.Contains(msg.Header.Description, "Past Members Count: 0") {
		t.Errorf("Description = %q", msg.Header.Description)
	}
	if msg.Policy != Policies[0] || msg.Reduced {
		t.Errorf("Policy = %v reduced=%v, want %v", msg.Policy, msg.Reduced, Policies[0])
	}
}

func TestCompose_SmallRosterUsesRichestPolicy(t *testing.T) {
	t.Parallel()

	records := append(roster(3, true, 5), roster(2, false, 5)...)
	msg, err := newTestComposer().Compose(testContext(), records)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	assertValid(t, msg, DiscordLimits)

	if msg.Policy != Policies[0] {
		t.Errorf("Policy = %v, want %v", msg.Policy, Policies[0])
	}
	if len(msg.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(msg.Segments))
	}
	if msg.Segments[0].Title != CurrentTitle || msg.Segments[1].Title != PastTitle {
		t.Errorf("titles = %q, %q", msg.Segments[0].Title, msg.Segments[1].Title)
	}
	if !strings.Contains(msg.Segments[0].Text, "https://vrchat.com/home/user/") {
		t.Error("full tier should include profile links")
	}
}

func TestCompose_TwentyFiveRecords(t *testing.T) {
	t.Parallel()

	records := roster(25, true, 4)
	msg, err := newTestComposer().Compose(testContext(), records)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	assertValid(t, msg, DiscordLimits)
	if msg.Policy != Policies[0] {
		t.Errorf("Policy = %v, want %v", msg.Policy, Policies[0])
	}

	var got []string
	for _, s := range msg.Segments {
		got = append(got, s.Lines()...)
	}
	if len(got) != 25 {
		t.Errorf("lines = %d, want 25", len(got))
	}

	minimal := make([]string, len(records))
	for i, r := range records {
		minimal[i] = RenderLine(r, TierMinimal, testViewer)
	}
	segments := Pack(minimal, CurrentTitle, DiscordLimits.FieldValue)
	if len(segments) != 1 || len(segments[0].Lines()) != 25 {
		t.Errorf("minimal tier packed into %d segments", len(segments))
	}
}

// sizeAt measures the assembled message for a policy without validating.
func sizeAt(t *testing.T, c *Composer, ic models.InstanceContext, records []models.RosterRecord, p Policy) int {
	t.Helper()
	h, err := BuildHeader(ic, records, c.footer, testNow, c.limits)
	if err != nil {
		t.Fatal(err)
	}
	current, past := models.SplitRoster(records)
	segments := append(c.group(current, CurrentTitle, p.Current, ic.UserID), c.group(past, PastTitle, p.Past, ic.UserID)...)
	m := &Message{Header: h, Segments: segments}
	return m.Size()
}

func TestCompose_FallsBackPolicyByPolicy(t *testing.T) {
	t.Parallel()

	records := append(roster(4, true, 6), roster(8, false, 6)...)
	base := newTestComposer()

	for i, p := range Policies[1:] {
		want := p
		richer := Policies[i]
		t.Run(want.String(), func(t *testing.T) {
			limits := DiscordLimits
			limits.Total = sizeAt(t, base, testContext(), records, want)
			if sizeAt(t, base, testContext(), records, richer) <= limits.Total {
				t.Skipf("%v does not shrink %v for this roster", want, richer)
			}

			c := NewComposer(Options{Now: fixedNow, Limits: limits})
			msg, err := c.Compose(testContext(), records)
			if err != nil {
				t.Fatalf("Compose() error = %v", err)
			}
			assertValid(t, msg, limits)
			if msg.Policy != want {
				t.Errorf("Policy = %v, want %v", msg.Policy, want)
			}
			if msg.Reduced {
				t.Error("fitting policy should not be reduced")
			}
		})
	}
}

func TestCompose_LargeRosterIsReduced(t *testing.T) {
	t.Parallel()

	records := append(roster(40, true, 20), roster(400, false, 20)...)
	msg, err := newTestComposer().Compose(testContext(), records)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	assertValid(t, msg, DiscordLimits)

	if !msg.Reduced {
		t.Error("expected the reducer to run")
	}
	if msg.Policy != Policies[len(Policies)-1] {
		t.Errorf("Policy = %v, want the reducible policy", msg.Policy)
	}
	last := msg.Segments[len(msg.Segments)-1].Lines()
	if last[len(last)-1] != Ellipsis {
		t.Errorf("last line = %q, want %q", last[len(last)-1], Ellipsis)
	}
	if msg.Segments[0].Title != CurrentTitle {
		t.Errorf("first title = %q", msg.Segments[0].Title)
	}
}

func TestCompose_OversizeRecord(t *testing.T) {
	t.Parallel()

	records := []models.RosterRecord{
		{UserID: testViewer, DisplayName: "Viewer", IsCurrently: true},
		{UserID: "usr_big", DisplayName: strings.Repeat("x", 2000)},
	}
	msg, err := newTestComposer().Compose(testContext(), records)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	assertValid(t, msg, DiscordLimits)

	if !msg.Reduced {
		t.Error("expected the reducer to run")
	}
	if len(msg.Segments) != 1 || msg.Segments[0].Title != CurrentTitle {
		t.Errorf("segments = %q, want only the current group", msg.Segments)
	}
	if msg.Header.Description != "Current Members Count: 1\nPast Members Count: 1" {
		t.Errorf("counts must reflect the full roster, got %q", msg.Header.Description)
	}
}

func TestCompose_MalformedLocation(t *testing.T) {
	t.Parallel()

	ic := testContext()
	ic.LocationID = "wrld_123"
	msg, err := newTestComposer().Compose(ic, roster(3, true, 4))
	if msg != nil {
		t.Error("expected nil message on error")
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Compose() error = %v, want *FormatError", err)
	}
}

func TestCompose_Exhausted(t *testing.T) {
	t.Parallel()

	limits := DiscordLimits
	limits.Total = 10
	c := NewComposer(Options{Now: fixedNow, Limits: limits})

	msg, err := c.Compose(testContext(), roster(3, true, 4))
	if msg != nil {
		t.Error("expected nil message on error")
	}
	if !errors.Is(err, ErrCompositionExhausted) {
		t.Fatalf("Compose() error = %v, want ErrCompositionExhausted", err)
	}
}

func TestCompose_ColorFollowsViewer(t *testing.T) {
	t.Parallel()

	present := []models.RosterRecord{{UserID: testViewer, DisplayName: "Viewer", IsCurrently: true}}
	msg, err := newTestComposer().Compose(testContext(), present)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Header.Color != ColorActive {
		t.Errorf("Color = %#x, want active", msg.Header.Color)
	}

	left := []models.RosterRecord{{UserID: testViewer, DisplayName: "Viewer"}}
	msg, err = newTestComposer().Compose(testContext(), left)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Header.Color != ColorInactive {
		t.Errorf("Color = %#x, want inactive", msg.Header.Color)
	}
}

func TestMessage_FingerprintIgnoresTimestamp(t *testing.T) {
	t.Parallel()

	records := roster(5, true, 4)
	a, err := NewComposer(Options{Now: fixedNow}).Compose(testContext(), records)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewComposer(Options{Now: func() time.Time { return testNow.Add(time.Hour) }}).Compose(testContext(), records)
	if err != nil {
		t.Fatal(err)
	}
	if a.Header.Timestamp.Equal(b.Header.Timestamp) {
		t.Fatal("timestamps should differ")
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprints should match when only the timestamp differs")
	}

	c, err := newTestComposer().Compose(testContext(), roster(6, true, 4))
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprints should differ for different rosters")
	}
}

func TestCompose_RandomRostersAlwaysValid(t *testing.T) {
	t.Parallel()

	names := []string{"", "a", "snake__case", "x___y___z", "日本語の名前", "👑 king", "line\nbreak", strings.Repeat("long", 60)}
	rng := rand.New(rand.NewSource(42))
	c := newTestComposer()

	for round := 0; round < 60; round++ {
		n := rng.Intn(600)
		records := make([]models.RosterRecord, n)
		for i := range records {
			r := models.RosterRecord{
				UserID:          fmt.Sprintf("usr_%d", i),
				DisplayName:     names[rng.Intn(len(names))],
				IsCurrently:     rng.Intn(3) == 0,
				IsFriend:        rng.Intn(4) == 0,
				IsInstanceOwner: i == 0,
			}
			if rng.Intn(5) > 0 {
				r.LastJoinAt = tp(1700000000 + rng.Int63n(100000))
			}
			if !r.IsCurrently && rng.Intn(5) > 0 {
				r.LastLeaveAt = tp(1700000000 + rng.Int63n(200000))
			}
			records[i] = r
		}

		msg, err := c.Compose(testContext(), records)
		if err != nil {
			t.Fatalf("round %d (%d records): %v", round, n, err)
		}
		assertValid(t, msg, DiscordLimits)
		if len(msg.Segments) > 25 {
			t.Fatalf("round %d: %d segments", round, len(msg.Segments))
		}
		for i, s := range msg.Segments {
			if Len(s.Text) > 1024 {
				t.Fatalf("round %d: segment %d is %d units", round, i, Len(s.Text))
			}
		}
	}
}

func TestCompose_ConcurrentUse(t *testing.T) {
	t.Parallel()

	c := newTestComposer()
	records := append(roster(30, true, 10), roster(30, false, 10)...)
	want, err := c.Compose(testContext(), records)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Compose(testContext(), records)
			if err != nil {
				errs <- err
				return
			}
			if got.Fingerprint() != want.Fingerprint() {
				errs <- errors.New("fingerprint mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

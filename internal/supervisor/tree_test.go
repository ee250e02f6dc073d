// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/supervisor/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(nil, TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
	}

	custom := TreeConfig{FailureThreshold: 2, FailureDecay: 1, FailureBackoff: time.Second, ShutdownTimeout: time.Second}
	tree, _ = NewSupervisorTree(testLogger(), custom)
	if tree.config != custom {
		t.Errorf("config = %+v, want %+v", tree.config, custom)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	data := newMockService("store-gc")
	messaging := newMockService("vrcx-poller")
	api := newMockService("http-server")
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool {
		return data.startCount.Load() > 0 && messaging.startCount.Load() > 0 && api.startCount.Load() > 0
	})
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down")
	}
	for _, svc := range []*mockService{data, messaging, api} {
		if svc.stopCount.Load() != svc.startCount.Load() {
			t.Errorf("%s: started %d, stopped %d", svc, svc.startCount.Load(), svc.stopCount.Load())
		}
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("UnstoppedServiceReport() = %v, %v", report, err)
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	failing := newMockService("vrcx-poller")
	failing.setFailCount(2)
	stable := newMockService("http-server")
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return failing.startCount.Load() >= 3 })
	if stable.startCount.Load() != 1 {
		t.Errorf("stable service started %d times, want 1", stable.startCount.Load())
	}
	cancel()
	<-errCh
}

func TestSupervisorTree_RunsWrappedServices(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	ran := make(chan struct{}, 1)
	tree.AddDataService(services.NewPeriodicService("history-prune", 5*time.Millisecond, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic service never ran")
	}
	cancel()
	<-errCh
}

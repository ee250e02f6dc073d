// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package services

import (
	"context"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/logging"
)

// Task is one unit of periodic maintenance.
type Task func(ctx context.Context) error

// PeriodicService runs a task on a fixed interval, such as badger value log
// GC or history pruning. Task errors are logged and the schedule continues;
// only cancellation stops the service.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     Task
}

// NewPeriodicService creates the wrapper. A non-positive interval means one
// hour.
func NewPeriodicService(name string, interval time.Duration, task Task) *PeriodicService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.task(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logging.Warn().Err(err).Str("service", s.name).Msg("Maintenance task failed")
				continue
			}
			logging.Debug().Str("service", s.name).Dur("took", time.Since(start)).Msg("Maintenance task complete")
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *PeriodicService) String() string {
	return s.name
}

// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package services

import (
	"context"
	"errors"
	"fmt"
)

// Runner is a component that blocks in Run until ctx is canceled, such as
// *events.Bus and *tracker.Poller.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerService adapts a Runner to suture. A Runner that returns before
// ctx is canceled is reported as failed so the supervisor restarts it.
type RunnerService struct {
	runner Runner
	name   string
}

// NewRunnerService wraps runner under name.
func NewRunnerService(name string, runner Runner) *RunnerService {
	return &RunnerService{runner: runner, name: name}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s stopped unexpectedly", s.name)
	}
	return fmt.Errorf("%s failed: %w", s.name, err)
}

// String implements fmt.Stringer for suture's logs.
func (s *RunnerService) String() string {
	return s.name
}

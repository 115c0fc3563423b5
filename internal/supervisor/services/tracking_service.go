// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package services

import (
	"context"
)

// SessionManager matches *progress.Manager's supervised surface.
type SessionManager interface {
	Serve(ctx context.Context) error
}

// TrackingService wraps the playback session manager as a supervised
// service. The manager's Serve runs the idle-session reaper and flushes
// all sessions on shutdown.
type TrackingService struct {
	manager SessionManager
	name    string
}

// NewTrackingService creates a new session manager service wrapper.
func NewTrackingService(manager SessionManager) *TrackingService {
	return &TrackingService{
		manager: manager,
		name:    "session-manager",
	}
}

// Serve implements suture.Service.
func (t *TrackingService) Serve(ctx context.Context) error {
	return t.manager.Serve(ctx)
}

// String implements fmt.Stringer for suture's log messages.
func (t *TrackingService) String() string {
	return t.name
}

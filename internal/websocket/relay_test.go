// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentis-edu/mentis/internal/eventbus"
	"github.com/mentis-edu/mentis/internal/progress"
)

func TestRelayForwardsCompletionToClients(t *testing.T) {
	bus := eventbus.New()
	defer func() { _ = bus.Close() }()

	hub := NewHub()
	relay := NewRelay(hub, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.RunWithContext(ctx) }()
	go func() { _ = relay.Serve(ctx) }()

	client := NewClient(hub, nil)
	hub.Register <- client
	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	// Let the relay's subscriptions settle before publishing.
	time.Sleep(50 * time.Millisecond)

	err := bus.Publish(ctx, &progress.LessonCompleted{
		EventID:        "evt-1",
		LearnerID:      "learner-1",
		CourseID:       "course-1",
		LessonID:       "lesson-1",
		PercentWatched: 92,
		CompletedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	select {
	case msg := <-client.send:
		assert.Equal(t, MessageTypeLessonCompleted, msg.Type)
		data, ok := msg.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "learner-1", data["learner_id"])
		assert.Equal(t, "lesson-1", data["lesson_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("client did not receive relayed completion")
	}
}

func TestRelayStopsOnContextCancel(t *testing.T) {
	bus := eventbus.New()
	defer func() { _ = bus.Close() }()

	relay := NewRelay(NewHub(), bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after context cancellation")
	}
}

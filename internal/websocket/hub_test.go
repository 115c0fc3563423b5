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
)

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	client := NewClient(hub, nil)
	hub.Register <- client

	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Unregister <- client

	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after context cancellation")
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.RunWithContext(ctx) }()

	first := NewClient(hub, nil)
	second := NewClient(hub, nil)
	hub.Register <- first
	hub.Register <- second

	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastJSON(MessageTypeLessonCompleted, map[string]string{
		"learner_id": "learner-1",
		"lesson_id":  "lesson-3",
	})

	for _, c := range []*Client{first, second} {
		select {
		case msg := <-c.send:
			assert.Equal(t, MessageTypeLessonCompleted, msg.Type)
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	client := NewClient(hub, nil)
	hub.Register <- client
	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	select {
	case _, ok := <-client.send:
		assert.False(t, ok, "send channel should be closed after shutdown")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
	assert.Equal(t, 0, hub.GetClientCount())
}

func TestBroadcastRawInvalidJSONDropped(t *testing.T) {
	hub := NewHub()

	hub.BroadcastRaw(MessageTypeCheckpointSaved, []byte("{not json"))

	select {
	case msg := <-hub.broadcast:
		t.Fatalf("unexpected broadcast: %v", msg)
	default:
	}
}

func TestClientIDsMonotonic(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)
	assert.Less(t, a.ID(), b.ID())
}

// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentis-edu/mentis/internal/progress"
)

func TestPublishSubscribeCompletion(t *testing.T) {
	bus := New()
	defer func() { _ = bus.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx, TopicLessonCompleted)
	require.NoError(t, err)

	ev := progress.NewLessonCompleted("learner-1", "course-1", "lesson-1")
	ev.PercentWatched = 92
	require.NoError(t, bus.Publish(ctx, ev))

	select {
	case msg := <-messages:
		var got progress.LessonCompleted
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, "lesson-1", got.LessonID)
		assert.Equal(t, 92, got.PercentWatched)
		assert.Equal(t, ev.EventID, got.EventID)
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestTopicRouting(t *testing.T) {
	topic, err := TopicFor(&progress.LessonCompleted{})
	require.NoError(t, err)
	assert.Equal(t, TopicLessonCompleted, topic)

	topic, err = TopicFor(&progress.CheckpointSaved{})
	require.NoError(t, err)
	assert.Equal(t, TopicCheckpointSaved, topic)

	_, err = TopicFor("not an event")
	assert.Error(t, err)
}

func TestPublishUnknownEventFails(t *testing.T) {
	bus := New()
	defer func() { _ = bus.Close() }()

	err := bus.Publish(context.Background(), struct{ X int }{1})
	assert.Error(t, err)
}

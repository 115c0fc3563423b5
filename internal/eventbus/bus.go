// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package eventbus carries progress engine events to in-process consumers
// over Watermill's gochannel Pub/Sub.
//
// Topics:
//
//	progress.lesson_completed   one-time completion signals
//	progress.checkpoint_saved   informational checkpoint updates
//
// The WebSocket relay is the primary subscriber; the bus exists so that
// future consumers (notification digests, unlock pipelines) attach without
// touching the engine.
package eventbus

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/mentis-edu/mentis/internal/progress"
)

// Topic names.
const (
	TopicLessonCompleted = "progress.lesson_completed"
	TopicCheckpointSaved = "progress.checkpoint_saved"
)

// Bus is an in-process publish/subscribe relay for engine events.
// It satisfies the progress.Publisher interface.
type Bus struct {
	pubSub *gochannel.GoChannel
}

// New creates a bus with buffered output channels so slow consumers do not
// stall the engine.
func New() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			newWatermillLogger(),
		),
	}
}

// TopicFor maps an engine event to its topic.
func TopicFor(event any) (string, error) {
	switch event.(type) {
	case *progress.LessonCompleted:
		return TopicLessonCompleted, nil
	case *progress.CheckpointSaved:
		return TopicCheckpointSaved, nil
	default:
		return "", fmt.Errorf("no topic for event type %T", event)
	}
}

// Publish marshals the event and delivers it to the event's topic.
func (b *Bus) Publish(_ context.Context, event any) error {
	topic, err := TopicFor(event)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages for a topic. The subscription
// ends when the context is canceled or the bus closes.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

// Close shuts the bus down, closing all subscriber channels.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package websocket

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mentis-edu/mentis/internal/eventbus"
	"github.com/mentis-edu/mentis/internal/logging"
)

// BusSubscriber is the subset of the event bus the relay needs.
type BusSubscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Relay forwards progress events from the in-process event bus to connected
// WebSocket clients. It implements suture.Service so crashes restart the
// subscriptions without tearing down the hub.
type Relay struct {
	hub *Hub
	bus BusSubscriber
}

// NewRelay creates a relay bridging the bus to the hub.
func NewRelay(hub *Hub, bus BusSubscriber) *Relay {
	return &Relay{hub: hub, bus: bus}
}

// Serve subscribes to the progress topics and forwards payloads until the
// context is canceled. Subscriptions are scoped to ctx, so a supervisor
// restart re-subscribes cleanly.
func (r *Relay) Serve(ctx context.Context) error {
	completions, err := r.bus.Subscribe(ctx, eventbus.TopicLessonCompleted)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", eventbus.TopicLessonCompleted, err)
	}

	checkpoints, err := r.bus.Subscribe(ctx, eventbus.TopicCheckpointSaved)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", eventbus.TopicCheckpointSaved, err)
	}

	logging.Info().Str("component", "websocket-relay").Msg("event relay started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("component", "websocket-relay").Msg("event relay stopped")
			return ctx.Err()

		case msg, ok := <-completions:
			if !ok {
				return fmt.Errorf("topic %s closed", eventbus.TopicLessonCompleted)
			}
			r.forward(MessageTypeLessonCompleted, msg)

		case msg, ok := <-checkpoints:
			if !ok {
				return fmt.Errorf("topic %s closed", eventbus.TopicCheckpointSaved)
			}
			r.forward(MessageTypeCheckpointSaved, msg)
		}
	}
}

func (r *Relay) forward(messageType string, msg *message.Message) {
	r.hub.BroadcastRaw(messageType, msg.Payload)
	msg.Ack()
}

func (r *Relay) String() string { return "websocket-relay" }

// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a player event.
type EventKind string

const (
	// EventTimeUpdate is a periodic playback cursor sample.
	EventTimeUpdate EventKind = "time_update"

	// EventPlay signals playback started or resumed.
	EventPlay EventKind = "play"

	// EventPause signals playback paused. Triggers a checkpoint flush.
	EventPause EventKind = "pause"

	// EventEnded signals the media reached its end. Triggers a checkpoint flush.
	EventEnded EventKind = "ended"

	// EventNavigate signals the learner left the lesson. Closes the session
	// after a bounded-timeout final checkpoint.
	EventNavigate EventKind = "navigate"
)

// PlayerEvent is a single event from the media player, as ingested from the
// client. TimeUpdate events carry the playback cursor; all kinds may carry
// the media duration, which is treated as authoritative when positive.
type PlayerEvent struct {
	LearnerID   string    `json:"learner_id" validate:"required"`
	CourseID    string    `json:"course_id" validate:"required"`
	LessonID    string    `json:"lesson_id" validate:"required"`
	LessonName  string    `json:"lesson_name,omitempty"`
	LessonOrder int       `json:"lesson_order,omitempty" validate:"min=0"`
	Kind        EventKind `json:"kind" validate:"required,oneof=time_update play pause ended navigate"`
	Position    float64   `json:"position" validate:"min=0"`
	Duration    float64   `json:"duration,omitempty" validate:"min=0"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// SessionKey returns the identity of the playback session the event belongs to.
func (e *PlayerEvent) SessionKey() string {
	return e.LearnerID + ":" + e.LessonID
}

// Validate checks required identity fields. Full struct validation happens
// at the API boundary; this is the engine's own guard.
func (e *PlayerEvent) Validate() error {
	if e.LearnerID == "" {
		return fmt.Errorf("%w: learner_id", ErrMissingField)
	}
	if e.CourseID == "" {
		return fmt.Errorf("%w: course_id", ErrMissingField)
	}
	if e.LessonID == "" {
		return fmt.Errorf("%w: lesson_id", ErrMissingField)
	}
	switch e.Kind {
	case EventTimeUpdate, EventPlay, EventPause, EventEnded, EventNavigate:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, e.Kind)
	}
}

// LessonCompleted is published on the message bus exactly once per lesson
// completion, separate from ordinary checkpoints. Consumers use it for
// one-time UI feedback and to unlock subsequent content.
type LessonCompleted struct {
	EventID        string    `json:"event_id"`
	LearnerID      string    `json:"learner_id"`
	CourseID       string    `json:"course_id"`
	LessonID       string    `json:"lesson_id"`
	LessonName     string    `json:"lesson_name,omitempty"`
	PercentWatched int       `json:"percent_watched"`
	TimeSpent      float64   `json:"time_spent"`
	CompletedAt    time.Time `json:"completed_at"`
}

// newEventID generates a unique event identifier.
func newEventID() string {
	return uuid.New().String()
}

// NewLessonCompleted creates a completion event with a unique id.
func NewLessonCompleted(learnerID, courseID, lessonID string) *LessonCompleted {
	return &LessonCompleted{
		EventID:     uuid.New().String(),
		LearnerID:   learnerID,
		CourseID:    courseID,
		LessonID:    lessonID,
		CompletedAt: time.Now().UTC(),
	}
}

// CheckpointSaved is published after every successful checkpoint write, for
// live dashboard tiles. It is informational; no consumer correctness
// depends on it.
type CheckpointSaved struct {
	EventID        string    `json:"event_id"`
	LearnerID      string    `json:"learner_id"`
	CourseID       string    `json:"course_id"`
	LessonID       string    `json:"lesson_id"`
	TimeSpent      float64   `json:"time_spent"`
	LastPosition   float64   `json:"last_position"`
	PercentWatched int       `json:"percent_watched"`
	SavedAt        time.Time `json:"saved_at"`
}

// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

import "errors"

var (
	// ErrMissingField indicates a player event is missing an identity field.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownEventKind indicates an unrecognized player event kind.
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrEmptyBookmarkTitle indicates a bookmark was submitted without a title.
	ErrEmptyBookmarkTitle = errors.New("bookmark title is required")

	// ErrBookmarkOutOfRange indicates a bookmark timestamp outside [0, duration].
	ErrBookmarkOutOfRange = errors.New("bookmark timestamp outside media duration")

	// ErrBookmarkNotFound indicates the requested bookmark does not exist.
	ErrBookmarkNotFound = errors.New("bookmark not found")

	// ErrSessionClosed indicates an event arrived for a session that has
	// already been stopped.
	ErrSessionClosed = errors.New("session is closed")
)

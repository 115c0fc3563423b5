// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package models

import (
	"math"
	"time"
)

// LessonStatus is the lifecycle state of a lesson for one learner.
// Transitions are monotonic: not_started → in_progress → completed.
// A lesson never regresses once completed, regardless of later rewinds.
type LessonStatus string

const (
	// StatusNotStarted is the implicit state before any playback event exists.
	StatusNotStarted LessonStatus = "not_started"

	// StatusInProgress is set on the first persisted checkpoint.
	StatusInProgress LessonStatus = "in_progress"

	// StatusCompleted is terminal, set when percent watched reaches the
	// completion threshold or the learner marks the lesson complete.
	StatusCompleted LessonStatus = "completed"
)

// LessonProgress is the durable per-learner-per-lesson record.
//
// Monotonicity: TimeSpent, ObservedMax and PercentWatched never decrease
// through the store, and Status never regresses. LastPosition is the raw
// playback cursor and may legitimately move backward within a session
// (rewind); it exists to resume playback, not to measure progress.
type LessonProgress struct {
	LearnerID   string `json:"learner_id"`
	CourseID    string `json:"course_id"`
	LessonID    string `json:"lesson_id"`
	LessonName  string `json:"lesson_name,omitempty"`
	LessonOrder int    `json:"lesson_order,omitempty"`

	Status LessonStatus `json:"status"`

	// TimeSpent is accumulated authentic watch time in seconds, after
	// seek/scrub filtering.
	TimeSpent float64 `json:"time_spent"`

	// LastPosition is the last known playback cursor in seconds.
	LastPosition float64 `json:"last_position"`

	// ObservedMax is the furthest cursor position ever reached, including
	// seek-forward jumps that earned no watch time.
	ObservedMax float64 `json:"observed_max"`

	// TotalDuration is the media duration in seconds as reported by the
	// player. Authoritative for percentage computation.
	TotalDuration float64 `json:"total_duration"`

	// PercentWatched is round(min(1, ObservedMax/TotalDuration) * 100),
	// clamped to [0,100]. Zero when TotalDuration is unknown.
	PercentWatched int `json:"percent_watched"`

	Bookmarks []Bookmark `json:"bookmarks,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Bookmark is a labeled annotation at a playback position. Bookmarks are an
// id-keyed set; slice order carries no meaning beyond insertion.
type Bookmark struct {
	ID        string    `json:"id"`
	Timestamp float64   `json:"timestamp"` // seconds into the media
	Title     string    `json:"title"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PercentWatchedFor computes the watched percentage for an observed-max
// cursor against a duration. Degrades to 0 on missing/zero duration rather
// than dividing by zero.
func PercentWatchedFor(observedMax, totalDuration float64) int {
	if totalDuration <= 0 {
		return 0
	}
	pct := observedMax / totalDuration * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return int(math.Round(pct))
}

// FindBookmark returns the bookmark with the given id, or false.
func (p *LessonProgress) FindBookmark(id string) (Bookmark, bool) {
	for _, b := range p.Bookmarks {
		if b.ID == id {
			return b, true
		}
	}
	return Bookmark{}, false
}

// ResumeFrom returns the position the player should seek to when the learner
// reopens the lesson. Completed lessons and lessons barely started resume
// from the beginning.
func (p *LessonProgress) ResumeFrom() float64 {
	if p.Status == StatusCompleted {
		return 0
	}
	if p.LastPosition < 5 {
		return 0
	}
	return p.LastPosition
}

// Clone returns a deep copy. Checkpoints hand snapshots to asynchronous
// writers, so the session's working record must not be aliased.
func (p *LessonProgress) Clone() *LessonProgress {
	cp := *p
	if p.Bookmarks != nil {
		cp.Bookmarks = make([]Bookmark, len(p.Bookmarks))
		copy(cp.Bookmarks, p.Bookmarks)
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// Enrollment records a learner's membership in a course, written by the
// course-catalog layer. It supplies the denominators the aggregators need.
type Enrollment struct {
	LearnerID            string    `json:"learner_id"`
	CourseID             string    `json:"course_id"`
	EnrolledAt           time.Time `json:"enrolled_at"`
	TotalLessons         int       `json:"total_lessons"`
	TotalAssignments     int       `json:"total_assignments"`
	SubmittedAssignments int       `json:"submitted_assignments"`
}

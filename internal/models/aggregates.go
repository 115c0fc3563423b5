// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package models

import "time"

// CourseProgress is the derived per-learner-per-course view. It is
// recomputed from LessonProgress and Enrollment records on read; any
// apparent update must mutate the underlying lesson records instead.
type CourseProgress struct {
	LearnerID            string    `json:"learner_id"`
	CourseID             string    `json:"course_id"`
	EnrollmentDate       time.Time `json:"enrollment_date"`
	TotalLessons         int       `json:"total_lessons"`
	CompletedLessons     int       `json:"completed_lessons"`
	TotalAssignments     int       `json:"total_assignments"`
	SubmittedAssignments int       `json:"submitted_assignments"`

	// CompletionPercentage is round(CompletedLessons/TotalLessons * 100),
	// 0 when the course has no lessons.
	CompletionPercentage int `json:"completion_percentage"`

	// TotalTimeSpent is the sum of authentic watch time across the
	// course's lessons, in seconds.
	TotalTimeSpent float64 `json:"total_time_spent"`
}

// Completed reports whether every lesson in the course is completed.
// A course with zero lessons is never considered completed.
func (c *CourseProgress) Completed() bool {
	return c.TotalLessons > 0 && c.CompletedLessons == c.TotalLessons
}

// ProgressAnalytics is the derived cross-course view for one learner,
// consumed by dashboards. Recomputing it on unchanged data always yields
// the same result.
type ProgressAnalytics struct {
	LearnerID            string  `json:"learner_id"`
	TotalCourses         int     `json:"total_courses"`
	CompletedCourses     int     `json:"completed_courses"`
	TotalLessons         int     `json:"total_lessons"`
	CompletedLessons     int     `json:"completed_lessons"`
	TotalAssignments     int     `json:"total_assignments"`
	SubmittedAssignments int     `json:"submitted_assignments"`
	TotalTimeSpent       float64 `json:"total_time_spent"`

	// CompletionRate is CompletedLessons/TotalLessons * 100, 0 when the
	// learner has no lessons.
	CompletionRate float64 `json:"completion_rate"`

	// CurrentStreak is the count of consecutive calendar days, ending
	// today or yesterday, with at least one qualifying checkpoint.
	CurrentStreak int `json:"current_streak"`

	Achievements []Achievement `json:"achievements"`
}

// Achievement is a threshold-crossing badge evaluated as a pure predicate
// over the learner's aggregate. Achievements are derived facts, never
// stored: re-evaluation is always consistent with current data.
type Achievement struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

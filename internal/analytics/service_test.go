// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentis-edu/mentis/internal/models"
	"github.com/mentis-edu/mentis/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.PutEnrollment(ctx, &models.Enrollment{
		LearnerID:    "learner-1",
		CourseID:     "course-1",
		EnrolledAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		TotalLessons: 4,
	}))

	for i, status := range []models.LessonStatus{
		models.StatusCompleted, models.StatusCompleted, models.StatusInProgress,
	} {
		_, err := s.UpsertLesson(ctx, &models.LessonProgress{
			LearnerID: "learner-1",
			CourseID:  "course-1",
			LessonID:  []string{"l1", "l2", "l3"}[i],
			Status:    status,
			TimeSpent: 600,
		})
		require.NoError(t, err)
	}
	return s
}

func TestServiceCourseProgress(t *testing.T) {
	svc := NewService(seedStore(t))

	cp, err := svc.CourseProgress(context.Background(), "learner-1", "course-1")
	require.NoError(t, err)

	assert.Equal(t, 4, cp.TotalLessons)
	assert.Equal(t, 2, cp.CompletedLessons)
	assert.Equal(t, 50, cp.CompletionPercentage)
	assert.Equal(t, 1800.0, cp.TotalTimeSpent)
}

func TestServiceCourseProgressUnknownCourse(t *testing.T) {
	svc := NewService(seedStore(t))

	cp, err := svc.CourseProgress(context.Background(), "learner-1", "course-none")
	require.NoError(t, err)
	assert.Equal(t, 0, cp.TotalLessons)
	assert.Equal(t, 0, cp.CompletionPercentage)
}

func TestServiceLearnerAnalytics(t *testing.T) {
	svc := NewService(seedStore(t))

	pa, err := svc.LearnerAnalytics(context.Background(), "learner-1")
	require.NoError(t, err)

	assert.Equal(t, 1, pa.TotalCourses)
	assert.Equal(t, 0, pa.CompletedCourses)
	assert.Equal(t, 4, pa.TotalLessons)
	assert.Equal(t, 2, pa.CompletedLessons)
	assert.InDelta(t, 50.0, pa.CompletionRate, 0.0001)
	// Seed checkpoints all landed today.
	assert.Equal(t, 1, pa.CurrentStreak)
}

func TestServiceLearnerAnalyticsEmptyLearner(t *testing.T) {
	svc := NewService(seedStore(t))

	pa, err := svc.LearnerAnalytics(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, pa.TotalCourses)
	assert.Equal(t, 0.0, pa.CompletionRate)
}

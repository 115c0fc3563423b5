// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentis-edu/mentis/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(timeSpent float64) *models.LessonProgress {
	return &models.LessonProgress{
		LearnerID:      "learner-1",
		CourseID:       "course-1",
		LessonID:       "lesson-1",
		Status:         models.StatusInProgress,
		TimeSpent:      timeSpent,
		LastPosition:   timeSpent,
		ObservedMax:    timeSpent,
		TotalDuration:  1200,
		PercentWatched: models.PercentWatchedFor(timeSpent, 1200),
		StartedAt:      time.Now().UTC(),
	}
}

func TestGetLessonNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetLesson(context.Background(), "learner-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertLessonRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.UpsertLesson(ctx, testRecord(120))
	require.NoError(t, err)
	assert.Equal(t, 120.0, stored.TimeSpent)
	assert.Equal(t, 10, stored.PercentWatched)

	got, err := s.GetLesson(ctx, "learner-1", "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, 120.0, got.TimeSpent)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestUpsertLessonDiscardsStaleCheckpoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertLesson(ctx, testRecord(400))
	require.NoError(t, err)

	// An older checkpoint arriving late must not roll state back.
	stored, err := s.UpsertLesson(ctx, testRecord(250))
	require.NoError(t, err)
	assert.Equal(t, 400.0, stored.TimeSpent)

	got, err := s.GetLesson(ctx, "learner-1", "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, 400.0, got.TimeSpent)
}

func TestUpsertLessonNeverRegressesStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	completed := testRecord(1100)
	completed.Status = models.StatusCompleted
	now := time.Now().UTC()
	completed.CompletedAt = &now
	completed.PercentWatched = 92

	_, err := s.UpsertLesson(ctx, completed)
	require.NoError(t, err)

	// Later checkpoint with more watch time but a rewound cursor and a
	// lower percentage must not demote the lesson.
	later := testRecord(1150)
	later.LastPosition = 300
	later.ObservedMax = 300
	later.PercentWatched = 25

	stored, err := s.UpsertLesson(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, 92, stored.PercentWatched)
	assert.Equal(t, 1100.0, stored.ObservedMax)
	// The raw cursor is allowed to move backward.
	assert.Equal(t, 300.0, stored.LastPosition)
}

func TestUpsertLessonUnionsBookmarks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := testRecord(100)
	first.Bookmarks = []models.Bookmark{{ID: "b1", Title: "definitions", Timestamp: 42}}
	_, err := s.UpsertLesson(ctx, first)
	require.NoError(t, err)

	second := testRecord(200)
	second.Bookmarks = []models.Bookmark{{ID: "b2", Title: "worked example", Timestamp: 180}}
	stored, err := s.UpsertLesson(ctx, second)
	require.NoError(t, err)

	require.Len(t, stored.Bookmarks, 2)
	assert.Equal(t, "b1", stored.Bookmarks[0].ID)
	assert.Equal(t, "b2", stored.Bookmarks[1].ID)
}

func TestAddBookmark(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertLesson(ctx, testRecord(100))
	require.NoError(t, err)

	b := models.Bookmark{ID: "b1", Title: "key formula", Timestamp: 75, CreatedAt: time.Now().UTC()}
	record, err := s.AddBookmark(ctx, "learner-1", "lesson-1", b)
	require.NoError(t, err)
	require.Len(t, record.Bookmarks, 1)
	assert.Equal(t, "key formula", record.Bookmarks[0].Title)

	// Retried write is a no-op.
	record, err = s.AddBookmark(ctx, "learner-1", "lesson-1", b)
	require.NoError(t, err)
	assert.Len(t, record.Bookmarks, 1)
}

func TestAddBookmarkMissingLesson(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddBookmark(context.Background(), "learner-1", "missing", models.Bookmark{ID: "b1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListLessonsByCourse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"lesson-1", "lesson-2", "lesson-3"} {
		r := testRecord(60)
		r.LessonID = id
		_, err := s.UpsertLesson(ctx, r)
		require.NoError(t, err)
	}
	other := testRecord(60)
	other.CourseID = "course-2"
	other.LessonID = "lesson-9"
	_, err := s.UpsertLesson(ctx, other)
	require.NoError(t, err)

	records, err := s.ListLessonsByCourse(ctx, "learner-1", "course-1")
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = s.ListLessonsByCourse(ctx, "learner-1", "course-2")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = s.ListLessonsByCourse(ctx, "learner-1", "course-none")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEnrollmentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &models.Enrollment{
		LearnerID:    "learner-1",
		CourseID:     "course-1",
		EnrolledAt:   time.Now().UTC(),
		TotalLessons: 12,
	}
	require.NoError(t, s.PutEnrollment(ctx, e))

	got, err := s.GetEnrollment(ctx, "learner-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.TotalLessons)

	all, err := s.ListEnrollments(ctx, "learner-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.GetEnrollment(ctx, "learner-1", "course-9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityStampedOnTimeSpentIncrease(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertLesson(ctx, testRecord(30))
	require.NoError(t, err)

	days, err := s.ActivityDays(ctx, "learner-1")
	require.NoError(t, err)

	today := time.Now().UTC().Format(DayFormat)
	assert.True(t, days[today], "first checkpoint with watch time should stamp today")

	// A checkpoint with no watch-time growth is not qualifying activity,
	// but must not remove the existing marker either.
	_, err = s.UpsertLesson(ctx, testRecord(30))
	require.NoError(t, err)

	days, err = s.ActivityDays(ctx, "learner-1")
	require.NoError(t, err)
	assert.True(t, days[today])
}

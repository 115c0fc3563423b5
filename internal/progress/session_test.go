// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentis-edu/mentis/internal/models"
	"github.com/mentis-edu/mentis/internal/store"
)

// fakeStore is an in-memory Store with the same monotonic guard semantics
// as the badger store, plus failure injection.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*models.LessonProgress
	upserts int
	fail    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*models.LessonProgress)}
}

func (f *fakeStore) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeStore) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakeStore) GetLesson(_ context.Context, learnerID, lessonID string) (*models.LessonProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[learnerID+":"+lessonID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.Clone(), nil
}

func (f *fakeStore) UpsertLesson(_ context.Context, snapshot *models.LessonProgress) (*models.LessonProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("store unavailable")
	}
	f.upserts++

	key := snapshot.LearnerID + ":" + snapshot.LessonID
	result := snapshot.Clone()
	if existing, ok := f.records[key]; ok {
		if snapshot.TimeSpent < existing.TimeSpent {
			return existing.Clone(), nil
		}
		if existing.Status == models.StatusCompleted {
			result.Status = models.StatusCompleted
			if result.CompletedAt == nil {
				result.CompletedAt = existing.CompletedAt
			}
		}
		if existing.ObservedMax > result.ObservedMax {
			result.ObservedMax = existing.ObservedMax
		}
		if existing.PercentWatched > result.PercentWatched {
			result.PercentWatched = existing.PercentWatched
		}
	}
	f.records[key] = result.Clone()
	return result, nil
}

func (f *fakeStore) AddBookmark(_ context.Context, learnerID, lessonID string, b models.Bookmark) (*models.LessonProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("store unavailable")
	}
	r, ok := f.records[learnerID+":"+lessonID]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.Bookmarks = append(r.Bookmarks, b)
	return r.Clone(), nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *fakePublisher) Publish(_ context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) completions() []*LessonCompleted {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*LessonCompleted
	for _, e := range p.events {
		if c, ok := e.(*LessonCompleted); ok {
			out = append(out, c)
		}
	}
	return out
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		SeekThreshold:      5,
		CheckpointInterval: 30,
		CompletionPercent:  90,
		FinalFlushTimeout:  time.Second,
		StoreWriteInterval: time.Millisecond,
	}
}

func timeUpdate(position, duration float64) *PlayerEvent {
	return &PlayerEvent{
		LearnerID: "learner-1",
		CourseID:  "course-1",
		LessonID:  "lesson-1",
		Kind:      EventTimeUpdate,
		Position:  position,
		Duration:  duration,
	}
}

func newTestManager(st Store, pub Publisher) *Manager {
	return NewManager(ManagerConfig{Session: testSessionConfig()}, st, pub)
}

func TestSessionContinuousPlaybackToCompletion(t *testing.T) {
	st := newFakeStore()
	pub := &fakePublisher{}
	m := newTestManager(st, pub)
	ctx := context.Background()

	// duration=1200s, cursor advances 0→1080 continuously in 2s steps.
	for pos := 0.0; pos <= 1080; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}

	snap := m.Snapshot("learner-1", "lesson-1")
	require.NotNil(t, snap)
	assert.InDelta(t, 1080, snap.TimeSpent, 0.01)
	assert.Equal(t, 90, snap.PercentWatched)
	assert.Equal(t, models.StatusCompleted, snap.Status)

	// Completion transition fires exactly once.
	require.Len(t, pub.completions(), 1)
	c := pub.completions()[0]
	assert.Equal(t, "lesson-1", c.LessonID)
	assert.Equal(t, 90, c.PercentWatched)

	// Keeping watching past the threshold must not re-fire.
	for pos := 1082.0; pos <= 1200; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}
	assert.Len(t, pub.completions(), 1)
}

func TestSessionScrubEarnsNoWatchTime(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(st, &fakePublisher{})
	ctx := context.Background()

	// Watch 0→100 continuously, then scrub instantly to 1100.
	for pos := 0.0; pos <= 100; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}
	require.NoError(t, m.HandleEvent(ctx, timeUpdate(1100, 1200)))

	snap := m.Snapshot("learner-1", "lesson-1")
	require.NotNil(t, snap)
	assert.InDelta(t, 100, snap.TimeSpent, 0.01, "scrub delta must be excluded")
	assert.Equal(t, 1100.0, snap.ObservedMax, "observed max still reflects furthest point")
	assert.Equal(t, 1100.0, snap.LastPosition)
}

func TestSessionRewindDiscarded(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(st, &fakePublisher{})
	ctx := context.Background()

	for pos := 0.0; pos <= 60; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}
	require.NoError(t, m.HandleEvent(ctx, timeUpdate(10, 1200)))

	snap := m.Snapshot("learner-1", "lesson-1")
	assert.InDelta(t, 60, snap.TimeSpent, 0.01, "rewind must not add or subtract watch time")
	assert.Equal(t, 60.0, snap.ObservedMax)
	assert.Equal(t, 10.0, snap.LastPosition)
}

func TestSessionPauseFlushesCheckpoint(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(st, &fakePublisher{})
	ctx := context.Background()

	for pos := 0.0; pos <= 10; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}
	require.NoError(t, m.HandleEvent(ctx, &PlayerEvent{
		LearnerID: "learner-1", CourseID: "course-1", LessonID: "lesson-1",
		Kind: EventPause, Position: 10, Duration: 1200,
	}))

	require.Eventually(t, func() bool {
		r, err := st.GetLesson(ctx, "learner-1", "lesson-1")
		return err == nil && r.TimeSpent >= 10
	}, 2*time.Second, 5*time.Millisecond, "pause should persist a checkpoint")

	r, err := st.GetLesson(ctx, "learner-1", "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, r.Status)
}

func TestSessionCheckpointFailureRetainsAccumulatedTime(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(st, &fakePublisher{})
	ctx := context.Background()

	st.setFail(true)

	for pos := 0.0; pos <= 40; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}
	// Time-based trigger fired against a failing store; nothing persisted.
	pauseEv := &PlayerEvent{
		LearnerID: "learner-1", CourseID: "course-1", LessonID: "lesson-1",
		Kind: EventPause, Position: 40, Duration: 1200,
	}
	require.NoError(t, m.HandleEvent(ctx, pauseEv))
	time.Sleep(20 * time.Millisecond)

	_, err := st.GetLesson(ctx, "learner-1", "lesson-1")
	assert.Error(t, err, "nothing should be persisted while the store is down")

	// Store recovers; the next trigger carries the full accumulated amount.
	st.setFail(false)
	for pos := 42.0; pos <= 60; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}
	require.NoError(t, m.HandleEvent(ctx, pauseEvAt(60)))

	require.Eventually(t, func() bool {
		r, err := st.GetLesson(ctx, "learner-1", "lesson-1")
		return err == nil && r.TimeSpent >= 60
	}, 2*time.Second, 5*time.Millisecond, "recovered store should receive the full accumulated amount")
}

func pauseEvAt(pos float64) *PlayerEvent {
	return &PlayerEvent{
		LearnerID: "learner-1", CourseID: "course-1", LessonID: "lesson-1",
		Kind: EventPause, Position: pos, Duration: 1200,
	}
}

func TestSessionCarriesForwardPersistedTime(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()

	// A previous session left 340s of watch time at position 340.
	_, err := st.UpsertLesson(ctx, &models.LessonProgress{
		LearnerID: "learner-1", CourseID: "course-1", LessonID: "lesson-1",
		Status: models.StatusInProgress, TimeSpent: 340, LastPosition: 340,
		ObservedMax: 340, TotalDuration: 1200, PercentWatched: 28,
	})
	require.NoError(t, err)

	m := newTestManager(st, &fakePublisher{})

	// Resume: first sample is not counted, then continuous playback.
	require.NoError(t, m.HandleEvent(ctx, timeUpdate(340, 1200)))
	for pos := 342.0; pos <= 360; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}

	snap := m.Snapshot("learner-1", "lesson-1")
	assert.InDelta(t, 360, snap.TimeSpent, 0.01, "watch time carries across sessions")
}

func TestSessionStopFlushesFinalCheckpoint(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(st, &fakePublisher{})
	ctx := context.Background()

	for pos := 0.0; pos <= 20; pos += 2 {
		require.NoError(t, m.HandleEvent(ctx, timeUpdate(pos, 1200)))
	}

	// Navigation away forces a final checkpoint and closes the session.
	require.NoError(t, m.HandleEvent(ctx, &PlayerEvent{
		LearnerID: "learner-1", CourseID: "course-1", LessonID: "lesson-1",
		Kind: EventNavigate,
	}))

	assert.Equal(t, 0, m.Active())

	r, err := st.GetLesson(ctx, "learner-1", "lesson-1")
	require.NoError(t, err)
	assert.InDelta(t, 20, r.TimeSpent, 0.01)
}

func TestSessionClosedRejectsEvents(t *testing.T) {
	st := newFakeStore()
	cfg := testSessionConfig()
	ctx := context.Background()

	m := NewManager(ManagerConfig{Session: cfg}, st, nil)
	s, err := NewSession(ctx, cfg, st, nil, m.breaker, timeUpdate(0, 1200))
	require.NoError(t, err)

	s.Stop(ctx)
	err = s.HandleEvent(ctx, timeUpdate(2, 1200))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mentis-edu/mentis/internal/logging"
	"github.com/mentis-edu/mentis/internal/metrics"
	"github.com/mentis-edu/mentis/internal/models"
	"github.com/mentis-edu/mentis/internal/store"
)

// Store is the persistence surface the engine depends on. The badger store
// satisfies it; tests substitute in-memory fakes.
type Store interface {
	GetLesson(ctx context.Context, learnerID, lessonID string) (*models.LessonProgress, error)
	UpsertLesson(ctx context.Context, snapshot *models.LessonProgress) (*models.LessonProgress, error)
	AddBookmark(ctx context.Context, learnerID, lessonID string, b models.Bookmark) (*models.LessonProgress, error)
}

// Publisher delivers engine events (LessonCompleted, CheckpointSaved) to
// downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// SessionConfig holds the tracking engine's tunables.
type SessionConfig struct {
	// SeekThreshold is the maximum authentic cursor delta in seconds.
	SeekThreshold float64

	// CheckpointInterval is the amount of unsaved watch time, in seconds,
	// that triggers a time-based checkpoint.
	CheckpointInterval float64

	// CompletionPercent is the percent-watched completion threshold.
	CompletionPercent int

	// FinalFlushTimeout bounds the synchronous final checkpoint when a
	// session closes, so navigation is never blocked indefinitely.
	FinalFlushTimeout time.Duration

	// StoreWriteInterval is the minimum spacing between persistence
	// attempts for one session, so rapid lifecycle events cannot hammer
	// a failing store.
	StoreWriteInterval time.Duration
}

// DefaultSessionConfig returns production defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SeekThreshold:      DefaultSeekThreshold,
		CheckpointInterval: 30,
		CompletionPercent:  DefaultCompletionPercent,
		FinalFlushTimeout:  2 * time.Second,
		StoreWriteInterval: time.Second,
	}
}

// withDefaults fills zero values with production defaults.
func (c SessionConfig) withDefaults() SessionConfig {
	d := DefaultSessionConfig()
	if c.SeekThreshold <= 0 {
		c.SeekThreshold = d.SeekThreshold
	}
	if c.CheckpointInterval <= 0 {
		c.CheckpointInterval = d.CheckpointInterval
	}
	if c.CompletionPercent <= 0 {
		c.CompletionPercent = d.CompletionPercent
	}
	if c.FinalFlushTimeout <= 0 {
		c.FinalFlushTimeout = d.FinalFlushTimeout
	}
	if c.StoreWriteInterval <= 0 {
		c.StoreWriteInterval = d.StoreWriteInterval
	}
	return c
}

// Session owns the in-memory progress state for one learner×lesson playback
// session. One session per pair is active at a time; the Manager enforces
// that. All methods are safe for concurrent use, though the intended caller
// is a single event stream.
type Session struct {
	cfg       SessionConfig
	store     Store
	publisher Publisher
	breaker   *gobreaker.CircuitBreaker[*models.LessonProgress]
	limiter   *rate.Limiter
	logger    zerolog.Logger

	mu        sync.Mutex
	record    *models.LessonProgress
	filter    *SampleFilter
	acc       *Accumulator
	savedTime float64 // TimeSpent at the last successful checkpoint
	inFlight  bool
	closed    bool
	lastEvent time.Time
}

// NewSession opens a session for the learner×lesson identified by the first
// player event, carrying forward any persisted record. The record is created
// lazily: before the first checkpoint nothing exists in the store.
func NewSession(
	ctx context.Context,
	cfg SessionConfig,
	st Store,
	publisher Publisher,
	breaker *gobreaker.CircuitBreaker[*models.LessonProgress],
	first *PlayerEvent,
) (*Session, error) {
	cfg = cfg.withDefaults()

	record, err := st.GetLesson(ctx, first.LearnerID, first.LessonID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		record = &models.LessonProgress{
			LearnerID:   first.LearnerID,
			CourseID:    first.CourseID,
			LessonID:    first.LessonID,
			LessonName:  first.LessonName,
			LessonOrder: first.LessonOrder,
			Status:      models.StatusNotStarted,
			StartedAt:   time.Now().UTC(),
		}
	case err != nil:
		return nil, err
	default:
		// Keep display fields fresh; the catalog may have renamed the lesson.
		if first.LessonName != "" {
			record.LessonName = first.LessonName
		}
	}

	if first.Duration > 0 {
		record.TotalDuration = first.Duration
	}

	s := &Session{
		cfg:       cfg,
		store:     st,
		publisher: publisher,
		breaker:   breaker,
		limiter:   rate.NewLimiter(rate.Every(cfg.StoreWriteInterval), 1),
		logger: logging.With().
			Str("component", "session").
			Str("learner_id", first.LearnerID).
			Str("lesson_id", first.LessonID).
			Logger(),
		record:    record,
		filter:    NewSampleFilter(cfg.SeekThreshold),
		acc:       NewAccumulator(record.TimeSpent, record.ObservedMax, record.TotalDuration),
		savedTime: record.TimeSpent,
		lastEvent: time.Now(),
	}
	return s, nil
}

// HandleEvent feeds one player event into the session.
func (s *Session) HandleEvent(ctx context.Context, ev *PlayerEvent) error {
	var (
		completed *LessonCompleted
		flush     EventKind
	)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.lastEvent = time.Now()
	s.acc.SetDuration(ev.Duration)

	switch ev.Kind {
	case EventTimeUpdate:
		delta, authentic := s.filter.Classify(ev.Position)
		if !authentic && delta != 0 {
			metrics.SeeksFiltered.Inc()
		}
		s.acc.Observe(ev.Position, delta, authentic)
		s.record.LastPosition = ev.Position
		completed = s.syncLocked()
		if completed != nil || s.unsavedLocked() >= s.cfg.CheckpointInterval {
			flush = EventTimeUpdate
		}

	case EventPlay:
		// Resumes and explicit seeks rebase the filter so the next delta
		// is measured from the landing position.
		s.filter.Rebase(ev.Position)
		s.record.LastPosition = ev.Position
		s.acc.Observe(ev.Position, 0, false)
		completed = s.syncLocked()

	case EventPause, EventEnded:
		if ev.Position > 0 {
			s.filter.Rebase(ev.Position)
			s.record.LastPosition = ev.Position
			s.acc.Observe(ev.Position, 0, false)
		}
		completed = s.syncLocked()
		flush = ev.Kind

	case EventNavigate:
		// The Manager closes the session via Stop; treat a stray navigate
		// like a pause.
		completed = s.syncLocked()
		flush = ev.Kind
	}
	s.mu.Unlock()

	if completed != nil {
		s.publishCompletion(ctx, completed)
		if flush == "" {
			flush = ev.Kind
		}
	}
	if flush != "" {
		s.maybeFlush(string(flush))
	}
	return nil
}

// syncLocked copies accumulator state onto the working record, advances the
// status machine, and returns a completion event when the terminal
// transition fired. Caller holds s.mu.
func (s *Session) syncLocked() *LessonCompleted {
	s.record.TimeSpent = s.acc.TotalWatchTime()
	s.record.ObservedMax = s.acc.ObservedMax()
	s.record.TotalDuration = s.acc.Duration()
	s.record.PercentWatched = s.acc.PercentWatched()

	if !advanceStatus(s.record, s.cfg.CompletionPercent, time.Now()) {
		return nil
	}

	metrics.LessonsCompleted.Inc()
	ev := NewLessonCompleted(s.record.LearnerID, s.record.CourseID, s.record.LessonID)
	ev.LessonName = s.record.LessonName
	ev.PercentWatched = s.record.PercentWatched
	ev.TimeSpent = s.record.TimeSpent
	if s.record.CompletedAt != nil {
		ev.CompletedAt = *s.record.CompletedAt
	}
	return ev
}

// unsavedLocked returns watch time accumulated since the last successful
// checkpoint. Caller holds s.mu.
func (s *Session) unsavedLocked() float64 {
	return s.acc.TotalWatchTime() - s.savedTime
}

// CompleteNow applies the learner's explicit mark-complete action through
// the live session, persisting synchronously. Idempotent: an already
// completed lesson is returned unchanged.
func (s *Session) CompleteNow(ctx context.Context) (*models.LessonProgress, error) {
	s.mu.Lock()
	if !ForceComplete(s.record, time.Now()) {
		snapshot := s.record.Clone()
		s.mu.Unlock()
		return snapshot, nil
	}
	metrics.LessonsCompleted.Inc()
	ev := NewLessonCompleted(s.record.LearnerID, s.record.CourseID, s.record.LessonID)
	ev.LessonName = s.record.LessonName
	ev.PercentWatched = s.record.PercentWatched
	ev.TimeSpent = s.record.TimeSpent
	if s.record.CompletedAt != nil {
		ev.CompletedAt = *s.record.CompletedAt
	}
	snapshot := s.record.Clone()
	s.mu.Unlock()

	s.publishCompletion(ctx, ev)

	stored, err := s.persist(ctx, snapshot, "mark_complete")
	if err != nil {
		// The in-memory record stays completed; the next checkpoint
		// carries it.
		return snapshot, nil
	}
	s.adoptStored(stored)
	return stored, nil
}

// Snapshot returns a copy of the current working record.
func (s *Session) Snapshot() *models.LessonProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// IdleSince returns the time of the last handled event.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEvent
}

// maybeFlush starts an asynchronous checkpoint write unless one is already
// in flight or the write-rate floor has not elapsed. Skipped flushes are
// harmless: the accumulated state rides along on the next trigger.
func (s *Session) maybeFlush(trigger string) {
	s.mu.Lock()
	if s.inFlight || s.closed || !s.limiter.Allow() {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	snapshot := s.record.Clone()
	s.mu.Unlock()

	// Detached from the request context: playback continues while the
	// write is in flight, and a canceled request must not abort it.
	go func() {
		stored, err := s.persist(context.Background(), snapshot, trigger)

		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()

		if err != nil {
			return // retried on the next trigger, accumulator untouched
		}
		s.adoptStored(stored)
		s.publishCheckpoint(stored)
	}()
}

// persist writes one full snapshot through the circuit breaker.
func (s *Session) persist(ctx context.Context, snapshot *models.LessonProgress, trigger string) (*models.LessonProgress, error) {
	start := time.Now()
	stored, err := s.breaker.Execute(func() (*models.LessonProgress, error) {
		return s.store.UpsertLesson(ctx, snapshot)
	})
	if err != nil {
		metrics.CheckpointsTotal.WithLabelValues(trigger, "failure").Inc()
		metrics.StoreErrors.Inc()
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("checkpoint failed, will retry on next trigger")
		return nil, err
	}
	metrics.CheckpointsTotal.WithLabelValues(trigger, "success").Inc()
	metrics.CheckpointDuration.Observe(time.Since(start).Seconds())
	return stored, nil
}

// adoptStored folds the store's authoritative monotonic fields back into
// the working record. Another writer (a second device, a retried older
// session) may have advanced state past ours.
func (s *Session) adoptStored(stored *models.LessonProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored.TimeSpent > s.savedTime {
		s.savedTime = stored.TimeSpent
	}
	if stored.Status == models.StatusCompleted && s.record.Status != models.StatusCompleted {
		// Completed elsewhere; adopt without re-firing the signal.
		s.record.Status = models.StatusCompleted
		s.record.CompletedAt = stored.CompletedAt
	}
	if stored.PercentWatched > s.record.PercentWatched {
		s.record.PercentWatched = stored.PercentWatched
	}
	s.record.Bookmarks = stored.Bookmarks
}

// Stop closes the session with a final best-effort checkpoint, bounded by
// FinalFlushTimeout so navigation is never held up indefinitely. After Stop
// returns the session accepts no more events.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	snapshot := s.record.Clone()
	dirty := snapshot.TimeSpent > s.savedTime || snapshot.Status != models.StatusNotStarted
	s.mu.Unlock()

	if !dirty {
		return
	}

	flushCtx, cancel := context.WithTimeout(ctx, s.cfg.FinalFlushTimeout)
	defer cancel()

	stored, err := s.persist(flushCtx, snapshot, "session_close")
	if err != nil {
		s.logger.Warn().Err(err).Msg("final checkpoint abandoned at session close")
		return
	}
	s.publishCheckpoint(stored)
}

func (s *Session) publishCompletion(ctx context.Context, ev *LessonCompleted) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Msg("publish completion event")
	}
	s.logger.Info().
		Int("percent_watched", ev.PercentWatched).
		Float64("time_spent", ev.TimeSpent).
		Msg("lesson completed")
}

func (s *Session) publishCheckpoint(stored *models.LessonProgress) {
	if s.publisher == nil {
		return
	}
	ev := &CheckpointSaved{
		EventID:        newEventID(),
		LearnerID:      stored.LearnerID,
		CourseID:       stored.CourseID,
		LessonID:       stored.LessonID,
		TimeSpent:      stored.TimeSpent,
		LastPosition:   stored.LastPosition,
		PercentWatched: stored.PercentWatched,
		SavedAt:        time.Now().UTC(),
	}
	if err := s.publisher.Publish(context.Background(), ev); err != nil {
		s.logger.Debug().Err(err).Msg("publish checkpoint event")
	}
}

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

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mentis-edu/mentis/internal/logging"
	"github.com/mentis-edu/mentis/internal/metrics"
	"github.com/mentis-edu/mentis/internal/models"
	"github.com/mentis-edu/mentis/internal/store"
)

// ManagerConfig holds session manager tunables beyond SessionConfig.
type ManagerConfig struct {
	Session SessionConfig

	// IdleTimeout is how long a session may go without events before the
	// reaper closes it with a final checkpoint.
	IdleTimeout time.Duration

	// ReapInterval is how often the reaper scans for idle sessions.
	ReapInterval time.Duration
}

// DefaultManagerConfig returns production defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Session:      DefaultSessionConfig(),
		IdleTimeout:  5 * time.Minute,
		ReapInterval: time.Minute,
	}
}

// Manager routes player events to playback sessions and enforces the
// one-active-session-per-learner-per-lesson model. It implements
// suture.Service: Serve runs the idle-session reaper and closes all
// sessions on shutdown.
type Manager struct {
	cfg       ManagerConfig
	store     Store
	publisher Publisher
	breaker   *gobreaker.CircuitBreaker[*models.LessonProgress]

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager. The circuit breaker is shared by
// all sessions: the store is one downstream, so its health is global.
func NewManager(cfg ManagerConfig, st Store, publisher Publisher) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}
	cfg.Session = cfg.Session.withDefaults()

	breaker := gobreaker.NewCircuitBreaker[*models.LessonProgress](gobreaker.Settings{
		Name:        "progress-store",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.StoreBreakerState.Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("store circuit breaker state change")
		},
	})

	return &Manager{
		cfg:       cfg,
		store:     st,
		publisher: publisher,
		breaker:   breaker,
		sessions:  make(map[string]*Session),
	}
}

// HandleEvent routes one player event to its session, creating the session
// on the first event for a learner×lesson pair.
func (m *Manager) HandleEvent(ctx context.Context, ev *PlayerEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	metrics.PlayerEventsTotal.WithLabelValues(string(ev.Kind)).Inc()

	if ev.Kind == EventNavigate {
		// Navigation away: final checkpoint, then the session is gone.
		if s := m.take(ev.SessionKey()); s != nil {
			s.Stop(ctx)
			metrics.ActiveSessions.Set(float64(m.Active()))
		}
		return nil
	}

	s, err := m.getOrCreate(ctx, ev)
	if err != nil {
		return err
	}

	err = s.HandleEvent(ctx, ev)
	if errors.Is(err, ErrSessionClosed) {
		// Reaped between lookup and dispatch; open a fresh session.
		m.remove(ev.SessionKey(), s)
		s, err = m.getOrCreate(ctx, ev)
		if err != nil {
			return err
		}
		return s.HandleEvent(ctx, ev)
	}
	return err
}

// MarkComplete applies the learner's explicit mark-complete action.
// Idempotent: marking an already-completed lesson returns the current
// record unchanged.
func (m *Manager) MarkComplete(ctx context.Context, learnerID, courseID, lessonID string) (*models.LessonProgress, error) {
	m.mu.Lock()
	s := m.sessions[learnerID+":"+lessonID]
	m.mu.Unlock()
	if s != nil {
		return s.CompleteNow(ctx)
	}

	record, err := m.store.GetLesson(ctx, learnerID, lessonID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Mark-complete on a lesson never played: create the record.
		record = &models.LessonProgress{
			LearnerID: learnerID,
			CourseID:  courseID,
			LessonID:  lessonID,
			Status:    models.StatusNotStarted,
			StartedAt: time.Now().UTC(),
		}
	case err != nil:
		return nil, err
	}

	if !ForceComplete(record, time.Now()) {
		return record, nil
	}
	metrics.LessonsCompleted.Inc()

	stored, err := m.breaker.Execute(func() (*models.LessonProgress, error) {
		return m.store.UpsertLesson(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	if m.publisher != nil {
		ev := NewLessonCompleted(learnerID, stored.CourseID, lessonID)
		ev.LessonName = stored.LessonName
		ev.PercentWatched = stored.PercentWatched
		ev.TimeSpent = stored.TimeSpent
		if stored.CompletedAt != nil {
			ev.CompletedAt = *stored.CompletedAt
		}
		if perr := m.publisher.Publish(ctx, ev); perr != nil {
			logging.Warn().Err(perr).Msg("publish completion event")
		}
	}
	return stored, nil
}

// Snapshot returns the live working record for an active session, or nil
// when no session is active for the pair.
func (m *Manager) Snapshot(learnerID, lessonID string) *models.LessonProgress {
	m.mu.Lock()
	s := m.sessions[learnerID+":"+lessonID]
	m.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Snapshot()
}

// Active returns the number of active sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Serve implements suture.Service. It runs the idle-session reaper until
// the context is canceled, then closes every session with a final
// checkpoint.
func (m *Manager) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.StopAll(context.Background())
			return ctx.Err()
		case <-ticker.C:
			m.reapIdle(ctx)
		}
	}
}

// StopAll closes every active session, flushing final checkpoints.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	closing := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		closing = append(closing, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range closing {
		s.Stop(ctx)
	}
	metrics.ActiveSessions.Set(0)
}

// reapIdle closes sessions with no events for IdleTimeout.
func (m *Manager) reapIdle(ctx context.Context) {
	cutoff := time.Now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var idle []*Session
	for key, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, key)
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	for _, s := range idle {
		s.Stop(ctx)
		metrics.SessionsReaped.Inc()
	}
	if len(idle) > 0 {
		metrics.ActiveSessions.Set(float64(remaining))
		logging.Debug().Int("reaped", len(idle)).Msg("closed idle sessions")
	}
}

func (m *Manager) getOrCreate(ctx context.Context, ev *PlayerEvent) (*Session, error) {
	key := ev.SessionKey()

	m.mu.Lock()
	if s, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Session construction reads the store; do it outside the lock.
	s, err := NewSession(ctx, m.cfg.Session, m.store, m.publisher, m.breaker, ev)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[key]; ok {
		// Lost the race; the concurrent session wins.
		return existing, nil
	}
	m.sessions[key] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return s, nil
}

// take removes and returns the session for a key, or nil.
func (m *Manager) take(key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[key]
	delete(m.sessions, key)
	return s
}

// remove deletes a specific session instance, guarding against removing a
// replacement that reused the key.
func (m *Manager) remove(key string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[key] == s {
		delete(m.sessions, key)
	}
}

// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/mentis-edu/mentis/internal/logging"
	"github.com/mentis-edu/mentis/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	progressKeyPrefix  = "progress:"
	courseIdxKeyPrefix = "courseidx:"
	enrollKeyPrefix    = "enroll:"
	activityKeyPrefix  = "activity:"
)

// activityTTL bounds how long daily activity markers are retained. Streak
// scans never look back further than this.
const activityTTL = 400 * 24 * time.Hour

// DayFormat is the calendar-day encoding used in activity keys.
const DayFormat = "2006-01-02"

// Store is a BadgerDB-backed progress store. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a Badger store at the given path.
// An empty path opens an in-memory store, used by tests.
func Open(path string) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	// Badger logs through its own interface; route it to zerolog.
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing Badger database.
func NewWithDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is open and can serve reads.
func (s *Store) Ping() error {
	if s.db.IsClosed() {
		return errors.New("store is closed")
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

func progressKey(learnerID, lessonID string) []byte {
	return []byte(progressKeyPrefix + learnerID + ":" + lessonID)
}

func courseIdxKey(learnerID, courseID, lessonID string) []byte {
	return []byte(courseIdxKeyPrefix + learnerID + ":" + courseID + ":" + lessonID)
}

func enrollKey(learnerID, courseID string) []byte {
	return []byte(enrollKeyPrefix + learnerID + ":" + courseID)
}

func activityKey(learnerID string, day time.Time) []byte {
	return []byte(activityKeyPrefix + learnerID + ":" + day.UTC().Format(DayFormat))
}

// GetLesson retrieves the LessonProgress for a learner/lesson pair.
// Returns ErrNotFound when no record exists.
func (s *Store) GetLesson(_ context.Context, learnerID, lessonID string) (*models.LessonProgress, error) {
	var record models.LessonProgress

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(learnerID, lessonID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get lesson progress: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpsertLesson persists a full LessonProgress snapshot under the monotonic
// guard and returns the record as stored.
//
// Guard semantics: a snapshot whose TimeSpent is lower than the stored value
// is a stale or out-of-order checkpoint and is discarded wholesale (the
// stored record is returned unchanged). Otherwise the snapshot is merged so
// that Status, ObservedMax, PercentWatched and TimeSpent can only move
// forward and bookmarks are unioned by id.
//
// A snapshot that increases TimeSpent also stamps today's activity marker
// for the learner, inside the same transaction, so streaks track qualifying
// checkpoints exactly.
func (s *Store) UpsertLesson(_ context.Context, snapshot *models.LessonProgress) (*models.LessonProgress, error) {
	result := snapshot.Clone()

	err := s.db.Update(func(txn *badger.Txn) error {
		var existing *models.LessonProgress

		item, err := txn.Get(progressKey(snapshot.LearnerID, snapshot.LessonID))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// First checkpoint for this learner/lesson.
		case err != nil:
			return fmt.Errorf("read existing progress: %w", err)
		default:
			existing = &models.LessonProgress{}
			if verr := item.Value(func(val []byte) error {
				return json.Unmarshal(val, existing)
			}); verr != nil {
				return fmt.Errorf("decode existing progress: %w", verr)
			}
		}

		timeSpentGrew := existing == nil && snapshot.TimeSpent > 0

		if existing != nil {
			if snapshot.TimeSpent < existing.TimeSpent {
				// Stale checkpoint: last-writer-wins by monotonic value,
				// not wall-clock arrival. Keep what we have.
				logging.Debug().
					Str("learner_id", snapshot.LearnerID).
					Str("lesson_id", snapshot.LessonID).
					Float64("stored", existing.TimeSpent).
					Float64("incoming", snapshot.TimeSpent).
					Msg("discarding stale checkpoint")
				*result = *existing.Clone()
				return nil
			}
			timeSpentGrew = snapshot.TimeSpent > existing.TimeSpent
			mergeMonotonic(result, existing)
		}

		result.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal progress: %w", err)
		}
		if err := txn.Set(progressKey(result.LearnerID, result.LessonID), data); err != nil {
			return fmt.Errorf("set progress: %w", err)
		}
		if err := txn.Set(
			courseIdxKey(result.LearnerID, result.CourseID, result.LessonID),
			[]byte(result.LessonID),
		); err != nil {
			return fmt.Errorf("set course index: %w", err)
		}

		if timeSpentGrew {
			entry := badger.NewEntry(activityKey(result.LearnerID, time.Now()), []byte{1}).
				WithTTL(activityTTL)
			if err := txn.SetEntry(entry); err != nil {
				return fmt.Errorf("stamp activity: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// mergeMonotonic folds the stored record's forward-only fields into the
// incoming snapshot so no monotonic value can move backward.
func mergeMonotonic(incoming, existing *models.LessonProgress) {
	if existing.Status == models.StatusCompleted {
		incoming.Status = models.StatusCompleted
		if incoming.CompletedAt == nil {
			incoming.CompletedAt = existing.CompletedAt
		}
	}
	if existing.ObservedMax > incoming.ObservedMax {
		incoming.ObservedMax = existing.ObservedMax
	}
	if existing.PercentWatched > incoming.PercentWatched {
		incoming.PercentWatched = existing.PercentWatched
	}
	if !existing.StartedAt.IsZero() {
		incoming.StartedAt = existing.StartedAt
	}
	incoming.Bookmarks = unionBookmarks(existing.Bookmarks, incoming.Bookmarks)
}

// unionBookmarks merges two bookmark sets by id, preserving the stored
// set's insertion order and appending genuinely new bookmarks.
func unionBookmarks(stored, incoming []models.Bookmark) []models.Bookmark {
	if len(incoming) == 0 {
		return stored
	}
	seen := make(map[string]struct{}, len(stored))
	merged := make([]models.Bookmark, 0, len(stored)+len(incoming))
	for _, b := range stored {
		seen[b.ID] = struct{}{}
		merged = append(merged, b)
	}
	for _, b := range incoming {
		if _, dup := seen[b.ID]; !dup {
			merged = append(merged, b)
		}
	}
	return merged
}

// AddBookmark appends a bookmark to a lesson record inside a single
// transaction. Unlike checkpoints, bookmark writes are immediate: they are
// discrete intentional actions, not subject to checkpoint batching.
func (s *Store) AddBookmark(_ context.Context, learnerID, lessonID string, bookmark models.Bookmark) (*models.LessonProgress, error) {
	var record models.LessonProgress

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(learnerID, lessonID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read progress: %w", err)
		}
		if verr := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); verr != nil {
			return fmt.Errorf("decode progress: %w", verr)
		}

		if _, dup := record.FindBookmark(bookmark.ID); dup {
			return nil // retried write, already applied
		}
		record.Bookmarks = append(record.Bookmarks, bookmark)
		record.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("marshal progress: %w", err)
		}
		return txn.Set(progressKey(learnerID, lessonID), data)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListLessonsByCourse returns all lesson records for a learner within a
// course, via the course membership index.
func (s *Store) ListLessonsByCourse(ctx context.Context, learnerID, courseID string) ([]*models.LessonProgress, error) {
	var lessonIDs []string

	prefix := []byte(courseIdxKeyPrefix + learnerID + ":" + courseID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				lessonIDs = append(lessonIDs, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan course index: %w", err)
	}

	records := make([]*models.LessonProgress, 0, len(lessonIDs))
	for _, id := range lessonIDs {
		record, err := s.GetLesson(ctx, learnerID, id)
		if errors.Is(err, ErrNotFound) {
			continue // index ahead of record, skip
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// ListLessonsByLearner returns every lesson record for a learner across all
// courses.
func (s *Store) ListLessonsByLearner(_ context.Context, learnerID string) ([]*models.LessonProgress, error) {
	var records []*models.LessonProgress

	prefix := []byte(progressKeyPrefix + learnerID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			record := &models.LessonProgress{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, record)
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan lesson records: %w", err)
	}
	return records, nil
}

// PutEnrollment stores or replaces an enrollment record.
func (s *Store) PutEnrollment(_ context.Context, e *models.Enrollment) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal enrollment: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(enrollKey(e.LearnerID, e.CourseID), data)
	})
}

// GetEnrollment retrieves the enrollment record for a learner/course pair.
// Returns ErrNotFound when the learner is not enrolled.
func (s *Store) GetEnrollment(_ context.Context, learnerID, courseID string) (*models.Enrollment, error) {
	var e models.Enrollment

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(enrollKey(learnerID, courseID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get enrollment: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEnrollments returns all enrollment records for a learner.
func (s *Store) ListEnrollments(_ context.Context, learnerID string) ([]*models.Enrollment, error) {
	var records []*models.Enrollment

	prefix := []byte(enrollKeyPrefix + learnerID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			e := &models.Enrollment{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, e)
			}); err != nil {
				return err
			}
			records = append(records, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan enrollments: %w", err)
	}
	return records, nil
}

// ActivityDays returns the set of calendar days (UTC, DayFormat keys) on
// which the learner recorded at least one qualifying checkpoint.
func (s *Store) ActivityDays(_ context.Context, learnerID string) (map[string]bool, error) {
	days := make(map[string]bool)

	prefix := []byte(activityKeyPrefix + learnerID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			days[key[len(prefix):]] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan activity days: %w", err)
	}
	return days, nil
}

// badgerLogger routes Badger's internal logging through zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

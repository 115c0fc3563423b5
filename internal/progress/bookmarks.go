// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mentis-edu/mentis/internal/models"
)

// BookmarkService attaches labeled annotations to lesson records. Bookmark
// writes bypass checkpoint batching: they are discrete intentional actions
// and persist immediately, or fail visibly to the caller.
type BookmarkService struct {
	store Store
}

// NewBookmarkService creates a bookmark service over the given store.
func NewBookmarkService(st Store) *BookmarkService {
	return &BookmarkService{store: st}
}

// Add validates and persists a new bookmark on a lesson record.
//
// Validation failures (empty title, timestamp outside [0, totalDuration])
// are rejected synchronously with no partial write. The note is optional.
func (b *BookmarkService) Add(ctx context.Context, learnerID, lessonID string, timestamp float64, title, note string) (models.Bookmark, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Bookmark{}, ErrEmptyBookmarkTitle
	}
	if timestamp < 0 {
		return models.Bookmark{}, fmt.Errorf("%w: %.1fs", ErrBookmarkOutOfRange, timestamp)
	}

	record, err := b.store.GetLesson(ctx, learnerID, lessonID)
	if err != nil {
		return models.Bookmark{}, err
	}
	if record.TotalDuration > 0 && timestamp > record.TotalDuration {
		return models.Bookmark{}, fmt.Errorf("%w: %.1fs > %.1fs",
			ErrBookmarkOutOfRange, timestamp, record.TotalDuration)
	}

	bookmark := models.Bookmark{
		ID:        uuid.New().String(),
		Timestamp: timestamp,
		Title:     title,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := b.store.AddBookmark(ctx, learnerID, lessonID, bookmark); err != nil {
		return models.Bookmark{}, err
	}
	return bookmark, nil
}

// List returns the lesson's bookmarks. Order is insertion order; bookmarks
// are an id-keyed set and carry no positional meaning.
func (b *BookmarkService) List(ctx context.Context, learnerID, lessonID string) ([]models.Bookmark, error) {
	record, err := b.store.GetLesson(ctx, learnerID, lessonID)
	if err != nil {
		return nil, err
	}
	return record.Bookmarks, nil
}

// Jump resolves a bookmark id to its stored timestamp for the caller to
// seek the player to. Pure read; progress state is not touched.
func (b *BookmarkService) Jump(ctx context.Context, learnerID, lessonID, bookmarkID string) (float64, error) {
	record, err := b.store.GetLesson(ctx, learnerID, lessonID)
	if err != nil {
		return 0, err
	}
	bookmark, ok := record.FindBookmark(bookmarkID)
	if !ok {
		return 0, ErrBookmarkNotFound
	}
	return bookmark.Timestamp, nil
}

// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

import "github.com/mentis-edu/mentis/internal/models"

// Accumulator integrates filtered cursor samples into cumulative authentic
// watch time and tracks the observed-max cursor high-water mark.
//
// The two measures diverge deliberately: watch time reflects continuous
// engagement (authentic deltas only), while the observed max reflects the
// furthest point ever reached, including seek-forward jumps. Percentage
// watched derives from the observed max.
type Accumulator struct {
	total       float64 // authentic watch time, seconds
	observedMax float64 // high-water cursor mark, seconds
	duration    float64 // media duration, seconds
}

// NewAccumulator creates an accumulator carrying forward previously
// persisted state: watch time, observed max and duration from the stored
// record at session start.
func NewAccumulator(carriedTime, carriedMax, duration float64) *Accumulator {
	return &Accumulator{
		total:       carriedTime,
		observedMax: carriedMax,
		duration:    duration,
	}
}

// Observe records one classified sample. The delta is added to watch time
// only when authentic; the observed max advances unconditionally, because
// the learner did reach that cursor even if the jump earned no watch time.
func (a *Accumulator) Observe(cursor, delta float64, authentic bool) {
	if authentic {
		a.total += delta
	}
	if cursor > a.observedMax {
		a.observedMax = cursor
	}
}

// SetDuration updates the media duration when the player reports a positive
// value. Percentages are always recomputed against the newest duration, so
// a re-encoded video never leaves a stale percentage behind.
func (a *Accumulator) SetDuration(duration float64) {
	if duration > 0 {
		a.duration = duration
	}
}

// TotalWatchTime returns accumulated authentic watch time in seconds.
func (a *Accumulator) TotalWatchTime() float64 { return a.total }

// ObservedMax returns the furthest cursor position reached, in seconds.
func (a *Accumulator) ObservedMax() float64 { return a.observedMax }

// Duration returns the current media duration in seconds.
func (a *Accumulator) Duration() float64 { return a.duration }

// PercentWatched returns the watched percentage against the observed max,
// clamped to [0,100] and 0 when the duration is unknown.
func (a *Accumulator) PercentWatched() int {
	return models.PercentWatchedFor(a.observedMax, a.duration)
}

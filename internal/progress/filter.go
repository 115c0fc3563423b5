// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

// DefaultSeekThreshold is the maximum cursor delta, in seconds, credited as
// continuous playback. It matches the expected polling cadence of the
// player's time updates: anything larger is a seek or scrub, not watching.
const DefaultSeekThreshold = 5.0

// SampleFilter classifies consecutive playback cursor samples as authentic
// watching versus seeking/scrubbing.
//
// A delta is authentic when 0 < curr-prev < threshold. Naive accumulation of
// curr-prev would let a learner drag the scrubber to the end and be credited
// with full watch time; the threshold bounds credited deltas to plausible
// continuous playback. Discarded deltas are simply ignored, never penalized.
type SampleFilter struct {
	threshold float64
	prev      float64
	hasPrev   bool
}

// NewSampleFilter creates a filter with the given seek threshold in seconds.
// Non-positive thresholds fall back to DefaultSeekThreshold.
func NewSampleFilter(threshold float64) *SampleFilter {
	if threshold <= 0 {
		threshold = DefaultSeekThreshold
	}
	return &SampleFilter{threshold: threshold}
}

// Classify consumes the next cursor sample and returns the delta from the
// previous sample and whether it is authentic watching.
//
// The first sample of a session has no predecessor and is never authentic.
// Zero deltas (paused ticks) and negative deltas (rewinds) are discarded.
// The previous-sample state always advances, so a seek resets the baseline
// to the landing position.
func (f *SampleFilter) Classify(cursor float64) (delta float64, authentic bool) {
	if !f.hasPrev {
		f.prev = cursor
		f.hasPrev = true
		return 0, false
	}

	delta = cursor - f.prev
	f.prev = cursor
	authentic = delta > 0 && delta < f.threshold
	return delta, authentic
}

// Rebase resets the previous-sample baseline to the given cursor without
// classifying it, used when the player reports an explicit seek or when a
// session resumes at a stored position.
func (f *SampleFilter) Rebase(cursor float64) {
	f.prev = cursor
	f.hasPrev = true
}

// Reset clears the filter to its initial no-predecessor state.
func (f *SampleFilter) Reset() {
	f.prev = 0
	f.hasPrev = false
}

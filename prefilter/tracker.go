package prefilter

import (
	"sync/atomic"
)

// Tracker wraps a Prefilter with effectiveness tracking.
//
// A prefilter only pays off when it rejects inputs. The tracker counts checks
// and rejections; when the rejection ratio falls below a threshold the inner
// prefilter is retired and every input is passed to the matcher directly.
//
// Algorithm:
//  1. Track checks and rejections
//  2. After the warmup period, evaluate the ratio every CheckInterval checks
//  3. If the ratio < MinEfficiency, disable the prefilter
//  4. Once disabled, stay disabled until Reset
//
// A Tracker is safe for concurrent use. Counters are updated atomically and
// the evaluation tolerates racing updates.
type Tracker struct {
	inner Prefilter

	checks         atomic.Uint64
	rejects        atomic.Uint64
	lastCheckpoint atomic.Uint64
	active         atomic.Bool

	checkInterval uint64
	minEfficiency float64
	warmupPeriod  uint64
}

// TrackerConfig holds configuration for the effectiveness tracker.
type TrackerConfig struct {
	// CheckInterval is how often to evaluate effectiveness, in checks.
	// Default: 64
	CheckInterval uint64

	// MinEfficiency is the minimum acceptable ratio of rejections to checks.
	// Default: 0.1 (10%)
	MinEfficiency float64

	// WarmupPeriod is the number of checks before the first evaluation.
	// Default: 128
	WarmupPeriod uint64
}

// DefaultTrackerConfig returns the default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		CheckInterval: 64,
		MinEfficiency: 0.1,
		WarmupPeriod:  128,
	}
}

// NewTracker creates a new tracker for the given prefilter with default config.
//
// Returns nil if the inner prefilter is nil.
func NewTracker(inner Prefilter) *Tracker {
	return NewTrackerWithConfig(inner, DefaultTrackerConfig())
}

// NewTrackerWithConfig creates a new tracker with custom configuration.
//
// Returns nil if the inner prefilter is nil. Complete prefilters decide the
// match on their own and should not be tracked.
func NewTrackerWithConfig(inner Prefilter, config TrackerConfig) *Tracker {
	if inner == nil {
		return nil
	}
	t := &Tracker{
		inner:         inner,
		checkInterval: max(config.CheckInterval, 1),
		minEfficiency: config.MinEfficiency,
		warmupPeriod:  config.WarmupPeriod,
	}
	t.active.Store(true)
	return t
}

// MayMatch checks haystack with the inner prefilter while it is active.
// A retired tracker passes every input.
func (t *Tracker) MayMatch(haystack []byte) bool {
	if !t.active.Load() {
		return true
	}
	return t.record(t.inner.MayMatch(haystack))
}

// MayMatchString is MayMatch for a string haystack.
func (t *Tracker) MayMatchString(haystack string) bool {
	if !t.active.Load() {
		return true
	}
	return t.record(t.inner.MayMatchString(haystack))
}

func (t *Tracker) record(ok bool) bool {
	if !ok {
		t.rejects.Add(1)
	}
	t.checkEffectiveness(t.checks.Add(1))
	return ok
}

// IsComplete delegates to the inner prefilter while it is active.
func (t *Tracker) IsComplete() bool {
	return t.active.Load() && t.inner.IsComplete()
}

// HeapBytes returns the memory used by the inner prefilter.
func (t *Tracker) HeapBytes() int {
	return t.inner.HeapBytes()
}

func (t *Tracker) String() string {
	return "tracked(" + t.inner.String() + ")"
}

// IsActive returns true if the inner prefilter is still being used.
func (t *Tracker) IsActive() bool {
	return t.active.Load()
}

// Stats returns the current tracking statistics.
func (t *Tracker) Stats() (checks, rejects uint64, efficiency float64, active bool) {
	checks = t.checks.Load()
	rejects = t.rejects.Load()
	if checks > 0 {
		efficiency = float64(rejects) / float64(checks)
	}
	active = t.active.Load()
	return
}

// Reset clears statistics and re-enables the prefilter.
func (t *Tracker) Reset() {
	t.checks.Store(0)
	t.rejects.Store(0)
	t.lastCheckpoint.Store(0)
	t.active.Store(true)
}

// Inner returns the underlying prefilter.
func (t *Tracker) Inner() Prefilter {
	return t.inner
}

// checkEffectiveness evaluates whether to retire the prefilter after the
// n-th check.
func (t *Tracker) checkEffectiveness(n uint64) {
	if n < t.warmupPeriod {
		return
	}
	last := t.lastCheckpoint.Load()
	if n <= last || n-last < t.checkInterval || !t.lastCheckpoint.CompareAndSwap(last, n) {
		return
	}

	efficiency := float64(t.rejects.Load()) / float64(n)
	if efficiency < t.minEfficiency {
		t.active.Store(false)
	}
}

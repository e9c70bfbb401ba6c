// Package traffic maintains sliding windows of request outcomes. It backs the
// overload health state and the rate-limit window gauges.
package traffic

import (
	"sync"
	"time"
)

var defaultTracker Tracker

// RecordServed records a request that was accepted and served.
func RecordServed() {
	defaultTracker.RecordServed()
}

// RecordDenied records a rate-limit denial (429).
func RecordDenied() {
	defaultTracker.RecordDenied()
}

// RequestCount returns the number of outcomes (served + denied) within the window.
func RequestCount(window time.Duration) int {
	return defaultTracker.RequestCount(window)
}

// DenialCount returns the number of denials within the window.
func DenialCount(window time.Duration) int {
	return defaultTracker.DenialCount(window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

// retention bounds memory; windows longer than this undercount.
const retention = 30 * time.Minute

// Tracker maintains sliding windows of outcome timestamps.
type Tracker struct {
	mu          sync.Mutex
	servedTimes []time.Time
	deniedTimes []time.Time
}

// RecordServed records a served request at the current time.
func (t *Tracker) RecordServed() {
	t.record(&t.servedTimes)
}

// RecordDenied records a rate-limit denial at the current time.
func (t *Tracker) RecordDenied() {
	t.record(&t.deniedTimes)
}

// RequestCount returns the number of outcomes (served + denied) within the
// window ending at now.
func (t *Tracker) RequestCount(window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-window)
	return countSince(t.servedTimes, cutoff) + countSince(t.deniedTimes, cutoff)
}

// DenialCount returns the number of denials within the window ending at now.
func (t *Tracker) DenialCount(window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return countSince(t.deniedTimes, time.Now().Add(-window))
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.servedTimes = nil
	t.deniedTimes = nil
}

func (t *Tracker) record(slice *[]time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	*slice = append(*slice, now)
	*slice = pruneBefore(*slice, now.Add(-retention))
}

// countSince counts timestamps that are not before the cutoff. Timestamps are
// appended in order, so scan from the tail.
func countSince(times []time.Time, cutoff time.Time) int {
	n := 0
	for i := len(times) - 1; i >= 0; i-- {
		if times[i].Before(cutoff) {
			break
		}
		n++
	}
	return n
}

// pruneBefore drops leading timestamps older than cutoff, reusing the backing array.
func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(times) && times[i].Before(cutoff); i++ {
	}
	if i == 0 {
		return times
	}
	return append(times[:0], times[i:]...)
}

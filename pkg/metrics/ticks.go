// Package metrics tracks how long simulation ticks take.
package metrics

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultHistory is the number of recent ticks kept for statistics.
const DefaultHistory = 600

// Stats summarizes recent tick durations in milliseconds.
type Stats struct {
	Ticks    uint64  `json:"ticks"`    // Total ticks recorded
	Overruns uint64  `json:"overruns"` // Ticks slower than the budget
	Samples  int     `json:"samples"`  // Ticks in the window below
	LastMs   float64 `json:"last_ms"`
	MeanMs   float64 `json:"mean_ms"`
	StdDevMs float64 `json:"stddev_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	MaxMs    float64 `json:"max_ms"`
}

// TickStats collects tick durations. It is goroutine-safe.
type TickStats struct {
	mu      sync.Mutex
	budget  time.Duration
	history []float64 // ring buffer, milliseconds
	next    int
	full    bool

	ticks    uint64
	overruns uint64
	last     float64
}

// NewTickStats creates a collector keeping size samples. Ticks longer than
// budget count as overruns; a zero budget disables overrun counting.
func NewTickStats(size int, budget time.Duration) *TickStats {
	if size <= 0 {
		size = DefaultHistory
	}
	return &TickStats{
		budget:  budget,
		history: make([]float64, size),
	}
}

// Record adds one tick duration.
func (s *TickStats) Record(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks++
	if s.budget > 0 && d > s.budget {
		s.overruns++
	}
	s.last = ms
	s.history[s.next] = ms
	s.next++
	if s.next == len(s.history) {
		s.next = 0
		s.full = true
	}
}

// Snapshot returns statistics over the current window.
func (s *TickStats) Snapshot() Stats {
	s.mu.Lock()
	n := s.next
	if s.full {
		n = len(s.history)
	}
	samples := make([]float64, n)
	copy(samples, s.history[:n])
	out := Stats{
		Ticks:    s.ticks,
		Overruns: s.overruns,
		Samples:  n,
		LastMs:   s.last,
	}
	s.mu.Unlock()

	if n == 0 {
		return out
	}

	sort.Float64s(samples)
	if n > 1 {
		out.MeanMs, out.StdDevMs = stat.MeanStdDev(samples, nil)
	} else {
		out.MeanMs = samples[0]
	}
	out.P50Ms = stat.Quantile(0.5, stat.Empirical, samples, nil)
	out.P95Ms = stat.Quantile(0.95, stat.Empirical, samples, nil)
	out.MaxMs = samples[n-1]
	return out
}

// Reset clears all samples and counters.
func (s *TickStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		s.history[i] = 0
	}
	s.next, s.full = 0, false
	s.ticks, s.overruns, s.last = 0, 0, 0
}

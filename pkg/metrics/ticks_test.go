package metrics

import (
	"math"
	"testing"
	"time"
)

func TestTickStats_Empty(t *testing.T) {
	s := NewTickStats(10, 0)
	got := s.Snapshot()
	if got.Samples != 0 || got.Ticks != 0 || got.MeanMs != 0 {
		t.Errorf("empty Snapshot() = %+v", got)
	}
}

func TestTickStats_Single(t *testing.T) {
	s := NewTickStats(10, 0)
	s.Record(4 * time.Millisecond)

	got := s.Snapshot()
	if got.MeanMs != 4 || got.StdDevMs != 0 || got.P50Ms != 4 || got.MaxMs != 4 {
		t.Errorf("Snapshot() = %+v", got)
	}
}

func TestTickStats_Summary(t *testing.T) {
	s := NewTickStats(100, 16*time.Millisecond)
	for i := 1; i <= 20; i++ {
		s.Record(time.Duration(i) * time.Millisecond)
	}

	got := s.Snapshot()
	if got.Ticks != 20 || got.Samples != 20 {
		t.Errorf("ticks/samples = %d/%d, want 20/20", got.Ticks, got.Samples)
	}
	if math.Abs(got.MeanMs-10.5) > 1e-9 {
		t.Errorf("MeanMs = %v, want 10.5", got.MeanMs)
	}
	if got.MaxMs != 20 || got.LastMs != 20 {
		t.Errorf("MaxMs/LastMs = %v/%v, want 20/20", got.MaxMs, got.LastMs)
	}
	if got.P50Ms != 10 {
		t.Errorf("P50Ms = %v, want 10", got.P50Ms)
	}
	if got.P95Ms != 19 {
		t.Errorf("P95Ms = %v, want 19", got.P95Ms)
	}
	if got.Overruns != 4 {
		t.Errorf("Overruns = %d, want 4", got.Overruns)
	}
	if got.StdDevMs <= 0 {
		t.Errorf("StdDevMs = %v, want > 0", got.StdDevMs)
	}
}

func TestTickStats_WindowWraps(t *testing.T) {
	s := NewTickStats(5, 0)
	for i := 0; i < 5; i++ {
		s.Record(100 * time.Millisecond)
	}
	for i := 0; i < 5; i++ {
		s.Record(time.Millisecond)
	}

	got := s.Snapshot()
	if got.Ticks != 10 || got.Samples != 5 {
		t.Errorf("ticks/samples = %d/%d, want 10/5", got.Ticks, got.Samples)
	}
	if got.MaxMs != 1 {
		t.Errorf("old samples should have rotated out, MaxMs = %v", got.MaxMs)
	}
}

func TestTickStats_Reset(t *testing.T) {
	s := NewTickStats(5, time.Millisecond)
	s.Record(time.Second)
	s.Reset()

	if got := s.Snapshot(); got != (Stats{}) {
		t.Errorf("after Reset, Snapshot() = %+v", got)
	}
}

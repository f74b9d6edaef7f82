package soul

import (
	"github.com/teslashibe/awa-soul/pkg/points"
	"github.com/teslashibe/awa-soul/pkg/shapes"
)

// Status is a read-only summary of the engine.
type Status struct {
	State       string  `json:"state"`
	Ready       bool    `json:"ready"`
	Pending     string  `json:"pending,omitempty"`
	LoadError   string  `json:"loadError,omitempty"`
	AutoCycle   bool    `json:"autoCycle"`
	AutoCycleIn float64 `json:"autoCycleIn,omitempty"` // Seconds until the next toggle
	Elapsed     float64 `json:"elapsed"`
	Points      int     `json:"points"`
	SettleMix   float64 `json:"settleMix"`
	// Hint is true while the host should show its "tap to wake" hint.
	Hint bool `json:"hint"`
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		State:     e.state,
		Ready:     e.ready,
		AutoCycle: e.autoCycle,
		Elapsed:   e.elapsed,
		Points:    e.cloud.Len(),
		SettleMix: e.params.SettleMix,
		Hint:      e.state == shapes.Light,
	}
	if e.pending != nil {
		s.Pending = e.pending.state
	}
	if e.loadErr != nil {
		s.LoadError = e.loadErr.Error()
	}
	if e.autoCycle && e.ready {
		s.AutoCycleIn = e.cfg.AutoCycleInterval.Seconds() - e.cycleTimer
	}
	return s
}

// State returns the current state name.
func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Ready reports whether shapes have loaded.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Elapsed returns the simulation time in seconds.
func (e *Engine) Elapsed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsed
}

// Targets returns the registered target names.
func (e *Engine) Targets() []string {
	return e.registry.List()
}

// Snapshot returns a copy of the renderable state.
func (e *Engine) Snapshot() *points.Snapshot {
	s := &points.Snapshot{}
	e.SnapshotInto(s)
	return s
}

// SnapshotInto fills s, reusing its buffers.
func (e *Engine) SnapshotInto(s *points.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cloud.SnapshotInto(s)
	s.State = e.state
	s.Size = float32(e.params.ParticleSize)
	s.Scale = float32(e.params.Scale)
	s.Transform = e.transform
}

// Transform returns the current pointer-driven group transform.
func (e *Engine) Transform() points.Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transform
}

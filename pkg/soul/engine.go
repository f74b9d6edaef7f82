// Package soul is the simulation engine of the particle soul: the point
// cloud, its named states and the commands that move between them.
//
// An Engine starts uninitialized. Boot loads the shape targets in the
// background; until that finishes, state requests are buffered (only the
// latest is kept) and the cloud idles in its initial shell. Once ready,
// requests apply immediately and Tick advances the simulation.
//
// Events for the host (INIT, READY, STATE, ERROR) are queued under the
// engine lock and delivered through an Emitter after it is released, in
// queue order, so an emitter may call back into the engine and the last
// STATE delivered always names the current state.
package soul

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/awa-soul/pkg/kinematics"
	"github.com/teslashibe/awa-soul/pkg/noise"
	"github.com/teslashibe/awa-soul/pkg/points"
	"github.com/teslashibe/awa-soul/pkg/protocol"
	"github.com/teslashibe/awa-soul/pkg/shapes"
	"github.com/teslashibe/awa-soul/pkg/style"
)

// Emitter receives outbound events.
type Emitter interface {
	Emit(protocol.Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(protocol.Event)

// Emit calls f(e).
func (f EmitterFunc) Emit(e protocol.Event) { f(e) }

// ShapeLoader produces the shapes registered when the engine becomes ready.
type ShapeLoader interface {
	Load(ctx context.Context, n int) ([]shapes.Shape, error)
}

type request struct {
	state     string
	immediate bool
}

// Engine owns the whole simulation state. It is safe for concurrent use.
type Engine struct {
	cfg Config
	log *slog.Logger

	registry *shapes.Registry
	cloud    *points.Cloud
	stepper  *kinematics.Stepper

	mu       sync.Mutex
	emitter  Emitter
	outbox   []protocol.Event
	flushing bool
	style   *style.Interpolator
	params  style.Params

	elapsed float64
	state   string

	booted  bool
	ready   bool
	loadErr error
	pending *request

	autoCycle  bool
	cycleTimer float64

	pointer   pointer
	transform points.Transform
}

// New creates an uninitialized engine.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Points <= 0 {
		return nil, fmt.Errorf("soul: point count must be positive, got %d", cfg.Points)
	}
	if cfg.Themes == nil {
		cfg.Themes = style.DefaultThemes()
	}
	theme, ok := cfg.Themes[cfg.InitialState]
	if !ok {
		return nil, fmt.Errorf("%w: initial state %q", ErrUnknownState, cfg.InitialState)
	}
	if cfg.AutoCycleInterval <= 0 {
		cfg.AutoCycleInterval = DefaultConfig().AutoCycleInterval
	}

	src, err := noise.NewSource(cfg.Noise, cfg.Seed)
	if err != nil {
		return nil, err
	}

	registry := shapes.NewRegistry(cfg.Points, logger.With("component", "shapes"))
	registry.SetFallback(cfg.InitialState)

	e := &Engine{
		cfg:       cfg,
		log:       logger,
		registry:  registry,
		cloud:     points.New(cfg.Points, cfg.Shell),
		stepper:   kinematics.NewStepper(noise.NewField(src), cfg.Kinematics),
		style:     style.NewInterpolator(theme, 0),
		state:     cfg.InitialState,
		autoCycle: cfg.AutoCycle,
		transform: points.IdentityTransform(),
	}
	e.params = e.style.Update(0, 0)
	e.cloud.Recolor(e.params.ColorA, e.params.ColorB)
	return e, nil
}

// SetEmitter sets the event destination. Nil discards events.
func (e *Engine) SetEmitter(em Emitter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitter = em
}

// Registry returns the target registry.
func (e *Engine) Registry() *shapes.Registry {
	return e.registry
}

// Boot emits INIT and loads shapes in the background. The returned channel
// yields the load result once and is then closed. Readiness is a one-shot
// latch: a failed load is reported with a single ERROR event and never
// retried, and a cancelled load emits nothing.
func (e *Engine) Boot(ctx context.Context, loader ShapeLoader) <-chan error {
	done := make(chan error, 1)

	e.mu.Lock()
	if e.booted {
		e.mu.Unlock()
		done <- ErrAlreadyBooted
		close(done)
		return done
	}
	e.booted = true
	e.queueLocked(protocol.NewInitEvent())
	e.mu.Unlock()
	e.flush()

	go func() {
		defer close(done)
		loaded, err := loader.Load(ctx, e.cfg.Points)
		if err == nil {
			err = ctx.Err()
		}
		done <- e.finishLoad(loaded, err)
	}()
	return done
}

func (e *Engine) finishLoad(loaded []shapes.Shape, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		e.log.Info("shape loading cancelled", "error", err)
		return err
	}

	if err == nil {
		for _, s := range loaded {
			if _, regErr := e.registry.RegisterShape(s); regErr != nil {
				err = fmt.Errorf("failed to register %s: %w", s.Name, regErr)
				break
			}
		}
	}

	if err != nil {
		e.mu.Lock()
		e.loadErr = err
		e.queueLocked(protocol.NewErrorEvent(err.Error()))
		e.mu.Unlock()

		e.log.Error("shape loading failed", "error", err)
		e.flush()
		return err
	}

	e.mu.Lock()
	e.ready = true
	events := []protocol.Event{protocol.NewReadyEvent()}

	applied := false
	if p := e.pending; p != nil {
		e.pending = nil
		var stateEvents []protocol.Event
		stateEvents, err = e.applyLocked(p.state, p.immediate)
		if err == nil {
			events = append(events, stateEvents...)
			applied = true
		}
	}
	if !applied {
		e.retargetLocked(e.state, false)
		events = append(events, protocol.NewStateEvent(e.state))
	}
	targets := e.registry.Count()
	state := e.state
	e.queueLocked(events...)
	e.mu.Unlock()

	e.log.Info("soul ready", "targets", targets, "state", state)
	e.flush()
	return nil
}

// RequestState moves to the named state. Before the engine is ready the
// request is buffered, replacing any earlier one, and ErrNotReady is
// returned. Unknown states are logged and ignored with ErrUnknownState.
func (e *Engine) RequestState(name string, immediate bool) error {
	e.mu.Lock()
	events, err := e.requestLocked(name, immediate)
	e.queueLocked(events...)
	e.mu.Unlock()

	e.flush()
	return err
}

// CycleState toggles between the two cycle states. Any other current state
// moves to the first of them.
func (e *Engine) CycleState() error {
	e.mu.Lock()
	events, err := e.cycleLocked()
	e.queueLocked(events...)
	e.mu.Unlock()

	e.flush()
	return err
}

// SetAutoCycle enables or disables the auto-cycle timer and restarts its
// countdown.
func (e *Engine) SetAutoCycle(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoCycle = enabled
	e.cycleTimer = 0
}

// Handle applies a protocol command synchronously. Effects on the cloud are
// visible from the next tick.
func (e *Engine) Handle(cmd protocol.Command) error {
	switch cmd.Type {
	case protocol.TypeSetState:
		return e.RequestState(cmd.State, cmd.Immediate)
	case protocol.TypeTrigger:
		return e.CycleState()
	case protocol.TypeSetAutoCycle:
		e.SetAutoCycle(cmd.Enabled)
		return nil
	case protocol.TypePointer:
		e.SetPointer(cmd.X, cmd.Y)
		return nil
	case protocol.TypePointerLeave:
		e.ReleasePointer()
		return nil
	default:
		return fmt.Errorf("%w: %q", protocol.ErrUnknownType, cmd.Type)
	}
}

// Tick advances the simulation by delta seconds, clamped to
// kinematics.MaxDelta.
func (e *Engine) Tick(delta float64) {
	d := kinematics.ClampDelta(delta)

	e.mu.Lock()
	e.elapsed += d

	if e.ready && e.autoCycle {
		e.cycleTimer += d
		interval := e.cfg.AutoCycleInterval.Seconds()
		if e.cycleTimer >= interval {
			// Keep the remainder so cycles stay on a fixed cadence.
			rest := e.cycleTimer - interval
			events, _ := e.cycleLocked()
			e.queueLocked(events...)
			e.cycleTimer = rest
		}
	}

	e.params = e.style.Update(e.elapsed, d)
	e.updatePointerLocked(d)
	e.cloud.Recolor(e.params.ColorA, e.params.ColorB)
	e.stepper.Step(e.cloud, kinematics.Frame{
		Delta:       d,
		Elapsed:     e.elapsed,
		WigglePower: e.params.WigglePower,
		WiggleSpeed: e.params.WiggleSpeed,
	})
	e.mu.Unlock()

	e.flush()
}

func (e *Engine) requestLocked(name string, immediate bool) ([]protocol.Event, error) {
	if !e.ready {
		if e.pending != nil {
			e.log.Debug("replacing pending request", "old", e.pending.state, "new", name)
		}
		e.pending = &request{state: name, immediate: immediate}
		return nil, ErrNotReady
	}
	return e.applyLocked(name, immediate)
}

func (e *Engine) cycleLocked() ([]protocol.Event, error) {
	from := e.state
	if e.pending != nil {
		from = e.pending.state
	}
	next := e.cfg.CycleStates[0]
	if from == next {
		next = e.cfg.CycleStates[1]
	}
	return e.requestLocked(next, false)
}

func (e *Engine) applyLocked(name string, immediate bool) ([]protocol.Event, error) {
	if !e.knownLocked(name) {
		e.log.Warn("ignoring request for unknown state", "state", name, "current", e.state)
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, name)
	}

	e.retargetLocked(name, immediate)
	e.cycleTimer = 0
	e.state = name

	e.log.Debug("state changed", "state", name, "immediate", immediate)
	return []protocol.Event{protocol.NewStateEvent(name)}, nil
}

// retargetLocked points the cloud and the style at name.
func (e *Engine) retargetLocked(name string, immediate bool) {
	target := e.registry.Resolve(name)
	theme := e.themeLocked(name)
	if immediate {
		e.cloud.SnapTo(target)
		e.style.Snap(theme, e.elapsed)
		e.params = e.style.Update(e.elapsed, 0)
		e.cloud.Recolor(e.params.ColorA, e.params.ColorB)
	} else {
		e.cloud.SetTarget(target)
		e.style.Transition(theme, e.elapsed)
	}
}

// knownLocked reports whether name has a theme or a registered target.
func (e *Engine) knownLocked(name string) bool {
	if _, ok := e.cfg.Themes[name]; ok {
		return true
	}
	return e.registry.Has(name)
}

// themeLocked returns the theme for name. Shapes without a theme of their
// own borrow the globe theme under their own name.
func (e *Engine) themeLocked(name string) style.Theme {
	if t, ok := e.cfg.Themes[name]; ok {
		return t
	}
	t, ok := e.cfg.Themes[shapes.Globe]
	if !ok {
		t = e.cfg.Themes[e.cfg.InitialState]
	}
	t.Name = name
	return t
}

func (e *Engine) queueLocked(events ...protocol.Event) {
	e.outbox = append(e.outbox, events...)
}

// flush delivers queued events in queue order. One goroutine delivers at a
// time; events queued meanwhile, including by the emitter itself, are left
// for that goroutine.
func (e *Engine) flush() {
	e.mu.Lock()
	if e.flushing {
		e.mu.Unlock()
		return
	}
	e.flushing = true

	for len(e.outbox) > 0 {
		ev := e.outbox[0]
		e.outbox[0] = protocol.Event{}
		e.outbox = e.outbox[1:]
		em := e.emitter
		if em == nil {
			continue
		}
		e.mu.Unlock()
		em.Emit(ev)
		e.mu.Lock()
	}
	e.flushing = false
	e.mu.Unlock()
}

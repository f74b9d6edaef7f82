package soul

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/teslashibe/awa-soul/pkg/metrics"
	"github.com/teslashibe/awa-soul/pkg/points"
)

// FrameSink receives every k-th snapshot. The snapshot is reused for the
// next frame, so a sink must copy or encode it before returning.
type FrameSink interface {
	SendFrame(*points.Snapshot)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(*points.Snapshot)

// SendFrame calls f(s).
func (f FrameSinkFunc) SendFrame(s *points.Snapshot) { f(s) }

// RunnerConfig configures the tick loop.
type RunnerConfig struct {
	Rate       time.Duration // Tick period, ~16ms for 60Hz
	FrameEvery int           // Send a frame every this many ticks; 0 disables frames

	Clock clock.Clock        // Time source; nil means wall clock
	Sink  FrameSink          // Frame destination; may be nil
	Stats *metrics.TickStats // Tick timing; nil creates one
}

// DefaultRunnerConfig returns a 60Hz loop sending every second frame.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Rate:       16 * time.Millisecond,
		FrameEvery: 2,
	}
}

// Runner drives an Engine from a ticker, the way a display refresh drives
// an animation frame.
type Runner struct {
	engine *Engine
	cfg    RunnerConfig
	clock  clock.Clock
	stats  *metrics.TickStats
	log    *slog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	ticks   uint64
	frame   points.Snapshot
}

// NewRunner creates a runner for engine.
func NewRunner(engine *Engine, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRunnerConfig().Rate
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	stats := cfg.Stats
	if stats == nil {
		stats = metrics.NewTickStats(metrics.DefaultHistory, cfg.Rate)
	}
	return &Runner{
		engine: engine,
		cfg:    cfg,
		clock:  clk,
		stats:  stats,
		log:    logger,
		stop:   make(chan struct{}),
	}
}

// Run ticks the engine until ctx is done or Stop is called.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.Ticker(r.cfg.Rate)
	defer ticker.Stop()

	r.mu.Lock()
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	r.log.Info("runner started", "hz", 1.0/r.cfg.Rate.Seconds(), "frame_every", r.cfg.FrameEvery)

	last := r.clock.Now()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("runner stopped", "ticks", r.Ticks())
			return ctx.Err()
		case <-r.stop:
			r.log.Info("runner stopped", "ticks", r.Ticks())
			return nil
		case <-ticker.C:
			now := r.clock.Now()
			r.tick(now.Sub(last))
			last = now
		}
	}
}

// Stop halts Run. It is safe to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
}

// Running reports whether Run is active and its ticker is armed.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Ticks returns the number of ticks executed.
func (r *Runner) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Stats returns tick timing statistics.
func (r *Runner) Stats() metrics.Stats {
	return r.stats.Snapshot()
}

func (r *Runner) tick(delta time.Duration) {
	start := time.Now()
	r.engine.Tick(delta.Seconds())
	r.stats.Record(time.Since(start))

	r.mu.Lock()
	r.ticks++
	n := r.ticks
	r.mu.Unlock()

	if n%600 == 0 {
		s := r.stats.Snapshot()
		r.log.Debug("tick heartbeat", "ticks", n, "mean_ms", s.MeanMs, "p95_ms", s.P95Ms)
	}

	if r.cfg.Sink == nil || r.cfg.FrameEvery <= 0 || n%uint64(r.cfg.FrameEvery) != 0 {
		return
	}
	r.engine.SnapshotInto(&r.frame)
	r.cfg.Sink.SendFrame(&r.frame)
}

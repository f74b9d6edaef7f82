// soul: particle soul simulation server
// Runs the engine at ~60Hz and serves commands, events and frames over
// HTTP/WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/awa-soul/internal/config"
	"github.com/teslashibe/awa-soul/internal/log"
	"github.com/teslashibe/awa-soul/pkg/bridge"
	"github.com/teslashibe/awa-soul/pkg/hub"
	"github.com/teslashibe/awa-soul/pkg/metrics"
	"github.com/teslashibe/awa-soul/pkg/shapes"
	"github.com/teslashibe/awa-soul/pkg/soul"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "soul: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	fset := flag.NewFlagSet("soul", flag.ExitOnError)
	cfg.RegisterFlags(fset)
	accessLog := fset.Bool("access-log", false, "log every HTTP request")
	fset.Parse(os.Args[1:])

	if err := cfg.LoadEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Init(cfg.LogLevel)
	logger := log.L()

	engineCfg := soul.DefaultConfig()
	engineCfg.Points = cfg.PointCount
	engineCfg.Noise = cfg.Noise
	engineCfg.Seed = cfg.Seed
	engineCfg.InitialState = cfg.DefaultState
	engineCfg.AutoCycle = cfg.AutoCycle
	engineCfg.AutoCycleInterval = cfg.AutoCycleInterval

	engine, err := soul.New(engineCfg, log.With("component", "soul"))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	frames := hub.New("frames", log.With("component", "hub"))
	go frames.Run(ctx)

	srv := bridge.New(engine, frames, bridge.Config{
		AppName:   "awa-soul",
		Version:   version,
		AccessLog: *accessLog,
	}, log.With("component", "bridge"))
	engine.SetEmitter(srv)

	stats := metrics.NewTickStats(metrics.DefaultHistory, cfg.TickRate)
	runner := soul.NewRunner(engine, soul.RunnerConfig{
		Rate:       cfg.TickRate,
		FrameEvery: cfg.FrameEvery,
		Sink:       frames,
		Stats:      stats,
	}, log.With("component", "runner"))
	srv.SetTickStats(runner.Stats)

	var shapeFS fs.FS
	if cfg.ShapesDir != "" {
		shapeFS = os.DirFS(cfg.ShapesDir)
	}
	loaded := engine.Boot(ctx, shapes.NewLoader(shapeFS, log.With("component", "loader")))
	go func() {
		if err := <-loaded; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("shape loading failed; staying in the initial shell", "error", err)
		}
	}()

	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("runner stopped", "error", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Listen(cfg.ListenAddr())
	}()

	logger.Info("soul started",
		"version", version,
		"points", cfg.PointCount,
		"state", cfg.DefaultState,
		"ws", fmt.Sprintf("ws://localhost:%s/ws/soul", cfg.Port),
		"frames", fmt.Sprintf("ws://localhost:%s/ws/frames", cfg.Port),
	)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	logger.Info("shutting down")
	runner.Stop()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

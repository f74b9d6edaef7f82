// Package bridge connects a soul engine to its host over Fiber: a JSON
// command and event WebSocket, a REST API and the binary frame stream.
package bridge

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/awa-soul/pkg/hub"
	"github.com/teslashibe/awa-soul/pkg/metrics"
	"github.com/teslashibe/awa-soul/pkg/protocol"
	"github.com/teslashibe/awa-soul/pkg/soul"
)

// Config configures the HTTP surface.
type Config struct {
	AppName string
	Version string
	// AccessLog enables per-request logging.
	AccessLog bool
}

// StatsFunc reports tick timing, typically Runner.Stats.
type StatsFunc func() metrics.Stats

// Server is the host bridge. It implements soul.Emitter: every event is
// fanned out to all /ws/soul connections.
type Server struct {
	app     *fiber.App
	engine  *soul.Engine
	frames  *hub.Hub
	version string
	log     *slog.Logger

	mu        sync.RWMutex
	sessions  map[string]*Session
	tickStats StatsFunc

	commandsReceived atomic.Uint64
	commandsRejected atomic.Uint64
	eventsSent       atomic.Uint64
}

var _ soul.Emitter = (*Server)(nil)

// New builds the Fiber app for engine. frames may be nil, in which case
// /ws/frames is not served.
func New(engine *soul.Engine, frames *hub.Hub, cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.AppName == "" {
		cfg.AppName = "awa-soul"
	}
	s := &Server{
		engine:   engine,
		frames:   frames,
		version:  cfg.Version,
		log:      log,
		sessions: make(map[string]*Session),
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if cfg.AccessLog {
		app.Use(logger.New())
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/soul", websocket.New(s.handleSoul))
	if frames != nil {
		app.Get("/ws/frames", frames.Handler())
	}

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Post("/command", s.handleCommand)
	api.Get("/targets", s.handleTargets)
	api.Get("/snapshot", s.handleSnapshot)
	api.Get("/stats", s.handleStats)

	app.Get("/health", s.handleHealth)
	app.Get("/metrics", s.handleMetrics)

	s.app = app
	return s
}

// App returns the underlying Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetTickStats sets the source of tick timing for /api/stats.
func (s *Server) SetTickStats(f StatsFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickStats = f
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("bridge listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("bridge listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown stops the server, waiting for active requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// Emit sends ev to every connected session. A session whose write fails is
// left for its read loop to clean up.
func (s *Server) Emit(ev protocol.Event) {
	data, err := ev.Bytes()
	if err != nil {
		s.log.Error("encode event", "type", ev.Type, "error", err)
		return
	}

	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		if err := sess.send(data); err != nil {
			s.log.Debug("event write failed", "session", sess.ID, "error", err)
			continue
		}
		s.eventsSent.Add(1)
	}
	s.log.Debug("event", "type", ev.Type, "state", ev.State, "sessions", len(sessions))
}

// SessionCount returns the number of /ws/soul connections.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sessions describes every /ws/soul connection.
func (s *Server) Sessions() []SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		infos = append(infos, sess.info())
	}
	return infos
}

// Stats contains bridge counters.
type Stats struct {
	Sessions         int            `json:"sessions"`
	CommandsReceived uint64         `json:"commands_received"`
	CommandsRejected uint64         `json:"commands_rejected"`
	EventsSent       uint64         `json:"events_sent"`
	Frames           *hub.Stats     `json:"frames,omitempty"`
	Ticks            *metrics.Stats `json:"ticks,omitempty"`
}

// Stats returns bridge counters, frame hub traffic and tick timing.
func (s *Server) Stats() Stats {
	st := Stats{
		Sessions:         s.SessionCount(),
		CommandsReceived: s.commandsReceived.Load(),
		CommandsRejected: s.commandsRejected.Load(),
		EventsSent:       s.eventsSent.Load(),
	}
	if s.frames != nil {
		fs := s.frames.Stats()
		st.Frames = &fs
	}
	s.mu.RLock()
	ticks := s.tickStats
	s.mu.RUnlock()
	if ticks != nil {
		ts := ticks()
		st.Ticks = &ts
	}
	return st
}

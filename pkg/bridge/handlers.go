package bridge

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/awa-soul/pkg/protocol"
	"github.com/teslashibe/awa-soul/pkg/soul"
)

// CommandResult is the body of a 202 from POST /api/command.
type CommandResult struct {
	Status string `json:"status"` // "applied" or "pending"
	State  string `json:"state"`
}

// handleState returns the engine status.
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.engine.Status())
}

// handleCommand applies a command with the same parsing as the socket, but
// reports problems instead of dropping them.
func (s *Server) handleCommand(c *fiber.Ctx) error {
	s.commandsReceived.Add(1)

	cmd, err := protocol.ParseCommand(c.Body())
	if err != nil {
		s.commandsRejected.Add(1)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	status := "applied"
	switch err := s.engine.Handle(cmd); {
	case err == nil:
	case errors.Is(err, soul.ErrNotReady):
		status = "pending"
	case errors.Is(err, soul.ErrUnknownState):
		s.commandsRejected.Add(1)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		s.commandsRejected.Add(1)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(CommandResult{
		Status: status,
		State:  s.engine.State(),
	})
}

// handleTargets lists registered target names.
func (s *Server) handleTargets(c *fiber.Ctx) error {
	targets := s.engine.Targets()
	return c.JSON(fiber.Map{
		"targets": targets,
		"count":   len(targets),
	})
}

func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	return c.JSON(s.engine.Snapshot())
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"bridge":   s.Stats(),
		"sessions": s.Sessions(),
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": s.version,
		"ready":   s.engine.Ready(),
		"state":   s.engine.State(),
	})
}

// handleMetrics renders counters in the Prometheus text format.
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	st := s.Stats()
	ready := 0
	if s.engine.Ready() {
		ready = 1
	}
	body := fmt.Sprintf(`# HELP soul_ready Whether shapes have loaded
# TYPE soul_ready gauge
soul_ready %d

# HELP soul_sessions Connected host sessions
# TYPE soul_sessions gauge
soul_sessions %d

# HELP soul_commands_received Total commands received
# TYPE soul_commands_received counter
soul_commands_received %d

# HELP soul_commands_rejected Total commands rejected
# TYPE soul_commands_rejected counter
soul_commands_rejected %d

# HELP soul_events_sent Total events delivered
# TYPE soul_events_sent counter
soul_events_sent %d
`, ready, st.Sessions, st.CommandsReceived, st.CommandsRejected, st.EventsSent)

	if st.Ticks != nil {
		body += fmt.Sprintf(`
# HELP soul_ticks Total simulation ticks
# TYPE soul_ticks counter
soul_ticks %d

# HELP soul_tick_overruns Ticks slower than the tick period
# TYPE soul_tick_overruns counter
soul_tick_overruns %d

# HELP soul_tick_p95_ms 95th percentile tick duration
# TYPE soul_tick_p95_ms gauge
soul_tick_p95_ms %g
`, st.Ticks.Ticks, st.Ticks.Overruns, st.Ticks.P95Ms)
	}
	c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
	return c.SendString(body)
}

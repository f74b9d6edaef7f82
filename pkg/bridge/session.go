package bridge

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/teslashibe/awa-soul/pkg/protocol"
	"github.com/teslashibe/awa-soul/pkg/soul"
)

// maxCommandSize bounds inbound command messages.
const maxCommandSize = 64 * 1024

// Session is one /ws/soul connection.
type Session struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// SessionInfo describes a session for the API.
type SessionInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

func (s *Session) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{ID: s.ID, Connected: s.Connected, LastSeen: s.lastSeen}
}

// handleSoul serves one host connection: commands in, events out.
func (s *Server) handleSoul(c *websocket.Conn) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Conn:      c,
		Connected: now,
		lastSeen:  now,
	}

	// Hold the session's write lock across registration and the replay so
	// a concurrent broadcast cannot overtake it.
	sess.mu.Lock()
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()
	s.replay(sess)
	sess.mu.Unlock()
	s.log.Info("host connected", "session", sess.ID, "sessions", count)

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.ID)
		count := len(s.sessions)
		s.mu.Unlock()
		s.log.Info("host disconnected", "session", sess.ID, "sessions", count)
	}()

	c.SetReadLimit(maxCommandSize)
	for {
		kind, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read error", "session", sess.ID, "error", err)
			}
			return
		}
		sess.touch()
		if kind != websocket.TextMessage {
			s.commandsRejected.Add(1)
			continue
		}
		s.dispatch(sess.ID, data)
	}
}

// replay brings a late session up to date: ERROR if loading failed, or
// READY and the current STATE once ready. Called with sess.mu held.
func (s *Server) replay(sess *Session) {
	st := s.engine.Status()

	var events []protocol.Event
	switch {
	case st.LoadError != "":
		events = append(events, protocol.NewErrorEvent(st.LoadError))
	case st.Ready:
		events = append(events, protocol.NewReadyEvent(), protocol.NewStateEvent(st.State))
	}

	for _, ev := range events {
		data, err := ev.Bytes()
		if err != nil {
			s.log.Error("encode event", "type", ev.Type, "error", err)
			return
		}
		if err := sess.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Debug("replay write failed", "session", sess.ID, "error", err)
			return
		}
		s.eventsSent.Add(1)
	}
}

// dispatch applies one command from a socket. Malformed commands are
// dropped without a reply.
func (s *Server) dispatch(session string, data []byte) {
	s.commandsReceived.Add(1)

	cmd, err := protocol.ParseCommand(data)
	if err != nil {
		s.commandsRejected.Add(1)
		s.log.Debug("ignoring command", "session", session, "error", err)
		return
	}

	err = s.engine.Handle(cmd)
	switch {
	case err == nil:
	case errors.Is(err, soul.ErrNotReady):
		s.log.Debug("command buffered until ready", "session", session, "type", cmd.Type, "state", cmd.State)
	case errors.Is(err, soul.ErrUnknownState):
		s.commandsRejected.Add(1)
	default:
		s.commandsRejected.Add(1)
		s.log.Warn("command failed", "session", session, "type", cmd.Type, "error", err)
	}
}

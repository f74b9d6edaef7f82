// Package hostclient is a Go client for the soul bridge: the command and
// event socket, the frame stream and the REST API.
package hostclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/awa-soul/pkg/protocol"
)

const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 5 * time.Second
	eventBuffer      = 64
)

// Conn is a connection to /ws/soul.
type Conn struct {
	ws  *websocket.Conn
	log *slog.Logger

	wsMu sync.Mutex // serializes writes

	events    chan protocol.Event
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Dial connects to the bridge at base, an http(s) or ws(s) URL of the
// server root.
func Dial(ctx context.Context, base string, logger *slog.Logger) (*Conn, error) {
	ws, err := dial(ctx, base, "/ws/soul")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{
		ws:     ws,
		log:    logger,
		events: make(chan protocol.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Send writes cmd to the bridge. The bridge never replies to a command;
// its effect arrives as events.
func (c *Conn) Send(cmd protocol.Command) error {
	data, err := cmd.Bytes()
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Type, err)
	}
	return nil
}

// SetState requests a state change.
func (c *Conn) SetState(state string, immediate bool) error {
	return c.Send(protocol.SetState(state, immediate))
}

// Trigger toggles between the two primary states.
func (c *Conn) Trigger() error {
	return c.Send(protocol.Trigger())
}

// SetAutoCycle enables or disables automatic toggling.
func (c *Conn) SetAutoCycle(enabled bool) error {
	return c.Send(protocol.SetAutoCycle(enabled))
}

// Pointer reports the host pointer position.
func (c *Conn) Pointer(x, y float64) error {
	return c.Send(protocol.Pointer(x, y))
}

// PointerLeave reports that the pointer left the host surface.
func (c *Conn) PointerLeave() error {
	return c.Send(protocol.PointerLeave())
}

// Events delivers events in arrival order. It is closed when the
// connection ends; Err then reports why.
func (c *Conn) Events() <-chan protocol.Event {
	return c.events
}

// WaitFor returns the next event of type t, discarding others.
func (c *Conn) WaitFor(ctx context.Context, t protocol.MessageType) (protocol.Event, error) {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return protocol.Event{}, ErrClosed
			}
			if ev.Type == t {
				return ev, nil
			}
		case <-ctx.Done():
			return protocol.Event{}, ctx.Err()
		}
	}
}

// Err returns the error that ended the connection, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.wsMu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.wsMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
				c.Close()
			}
			return
		}

		ev, err := protocol.ParseEvent(data)
		if err != nil {
			c.log.Debug("ignoring event", "error", err)
			continue
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

// dial opens a websocket to path on the server at base.
func dial(ctx context.Context, base, path string) (*websocket.Conn, error) {
	u, err := wsURL(base, path)
	if err != nil {
		return nil, err
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	return ws, nil
}

func wsURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = path
	return u.String(), nil
}

package hostclient

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/awa-soul/pkg/points"
)

// FrameStream receives decoded frames from /ws/frames.
type FrameStream struct {
	ws        *websocket.Conn
	frames    chan *points.Snapshot
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// DialFrames subscribes to the frame stream. Frames that arrive while the
// consumer is busy replace the one waiting, so Frames always yields the
// most recent.
func DialFrames(ctx context.Context, base string) (*FrameStream, error) {
	ws, err := dial(ctx, base, "/ws/frames")
	if err != nil {
		return nil, err
	}
	s := &FrameStream{
		ws:     ws,
		frames: make(chan *points.Snapshot, 1),
	}
	go s.readLoop()
	return s, nil
}

// Frames is closed when the stream ends.
func (s *FrameStream) Frames() <-chan *points.Snapshot {
	return s.frames
}

// Err returns the error that ended the stream, if any.
func (s *FrameStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the stream.
func (s *FrameStream) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.ws.Close() })
	return err
}

func (s *FrameStream) readLoop() {
	defer close(s.frames)
	for {
		kind, data, err := s.ws.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		snap, err := points.DecodeFrame(data)
		if err != nil {
			s.fail(err)
			s.Close()
			return
		}
		select {
		case s.frames <- snap:
		default:
			// Drop the stale frame.
			select {
			case <-s.frames:
			default:
			}
			s.frames <- snap
		}
	}
}

func (s *FrameStream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

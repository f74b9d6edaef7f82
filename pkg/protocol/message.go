// Package protocol defines the messages exchanged between the soul engine
// and its host: inbound commands and outbound events.
//
// Both directions are flat JSON objects with a "type" discriminator:
//
//	{"type":"SET_STATE","state":"mask","immediate":true}
//	{"type":"STATE","state":"mask","ts":1718000000000}
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MessageType identifies a command or an event.
type MessageType string

const (
	// Host → engine commands
	TypeSetState     MessageType = "SET_STATE"     // Request a named state
	TypeTrigger      MessageType = "TRIGGER"       // Toggle between the two primary states
	TypeSetAutoCycle MessageType = "SET_AUTOCYCLE" // Enable or disable the auto-cycle timer
	TypePointer      MessageType = "POINTER"       // Pointer moved, normalized to [-1, 1]
	TypePointerLeave MessageType = "POINTER_LEAVE" // Pointer left the surface

	// Engine → host events
	TypeInit  MessageType = "INIT"  // Engine constructed, shapes loading
	TypeReady MessageType = "READY" // Shapes loaded
	TypeState MessageType = "STATE" // Current state changed
	TypeError MessageType = "ERROR" // Shape loading failed
)

// LegacyPrefix is accepted in front of any type and stripped.
const LegacyPrefix = "AWA_SOUL_"

var (
	// ErrMalformed is returned for input that is not a well-formed message.
	ErrMalformed = errors.New("protocol: malformed message")

	// ErrUnknownType is returned for a well-formed message of unknown type.
	ErrUnknownType = errors.New("protocol: unknown message type")
)

// Event is an outbound notification to the host.
type Event struct {
	Type      MessageType `json:"type"`
	State     string      `json:"state,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"ts,omitempty"` // Unix milliseconds
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t MessageType) Event {
	return Event{Type: t, Timestamp: time.Now().UnixMilli()}
}

// Bytes returns the JSON-encoded event.
func (e Event) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEvent parses an event from bytes.
func ParseEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return e, nil
}

// Command is an inbound request from the host. Only the fields of its
// Type are meaningful.
type Command struct {
	Type      MessageType
	State     string
	Immediate bool
	Enabled   bool
	X, Y      float64
}

// commandWire is the on-the-wire form of a Command.
type commandWire struct {
	Type      MessageType `json:"type"`
	State     string      `json:"state,omitempty"`
	Immediate *bool       `json:"immediate,omitempty"`
	Enabled   *bool       `json:"enabled,omitempty"`
	X         *float64    `json:"x,omitempty"`
	Y         *float64    `json:"y,omitempty"`
}

// MarshalJSON writes only the fields of the command's type.
func (c Command) MarshalJSON() ([]byte, error) {
	w := commandWire{Type: c.Type}
	switch c.Type {
	case TypeSetState:
		w.State = c.State
		if c.Immediate {
			w.Immediate = &c.Immediate
		}
	case TypeSetAutoCycle:
		w.Enabled = &c.Enabled
	case TypePointer:
		w.X, w.Y = &c.X, &c.Y
	}
	return json.Marshal(w)
}

// Bytes returns the JSON-encoded command.
func (c Command) Bytes() ([]byte, error) {
	return json.Marshal(c)
}

package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// SetState creates a SET_STATE command.
func SetState(state string, immediate bool) Command {
	return Command{Type: TypeSetState, State: state, Immediate: immediate}
}

// Trigger creates a TRIGGER command.
func Trigger() Command {
	return Command{Type: TypeTrigger}
}

// SetAutoCycle creates a SET_AUTOCYCLE command.
func SetAutoCycle(enabled bool) Command {
	return Command{Type: TypeSetAutoCycle, Enabled: enabled}
}

// Pointer creates a POINTER command.
func Pointer(x, y float64) Command {
	return Command{Type: TypePointer, X: x, Y: y}
}

// PointerLeave creates a POINTER_LEAVE command.
func PointerLeave() Command {
	return Command{Type: TypePointerLeave}
}

// NewInitEvent creates an INIT event.
func NewInitEvent() Event {
	return NewEvent(TypeInit)
}

// NewReadyEvent creates a READY event.
func NewReadyEvent() Event {
	return NewEvent(TypeReady)
}

// NewStateEvent creates a STATE event.
func NewStateEvent(state string) Event {
	e := NewEvent(TypeState)
	e.State = state
	return e
}

// NewErrorEvent creates an ERROR event.
func NewErrorEvent(message string) Event {
	e := NewEvent(TypeError)
	e.Message = message
	return e
}

// =============================================================================
// Parsing
// =============================================================================

// ParseCommand parses an inbound command. It is strict about field types:
// a field of the wrong JSON type, or a missing required field, makes the
// whole message malformed. Unknown extra fields are ignored. Pointer
// coordinates are clamped to [-1, 1].
func ParseCommand(data []byte) (Command, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var typ string
	if err := field(fields, "type", &typ, true); err != nil {
		return Command{}, err
	}
	cmd := Command{Type: MessageType(strings.TrimPrefix(typ, LegacyPrefix))}

	switch cmd.Type {
	case TypeSetState:
		if err := field(fields, "state", &cmd.State, true); err != nil {
			return Command{}, err
		}
		if err := field(fields, "immediate", &cmd.Immediate, false); err != nil {
			return Command{}, err
		}
	case TypeSetAutoCycle:
		if err := field(fields, "enabled", &cmd.Enabled, true); err != nil {
			return Command{}, err
		}
	case TypePointer:
		if err := field(fields, "x", &cmd.X, true); err != nil {
			return Command{}, err
		}
		if err := field(fields, "y", &cmd.Y, true); err != nil {
			return Command{}, err
		}
		cmd.X = mgl64.Clamp(cmd.X, -1, 1)
		cmd.Y = mgl64.Clamp(cmd.Y, -1, 1)
	case TypeTrigger, TypePointerLeave:
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return cmd, nil
}

// field decodes fields[name] into dst. A JSON null counts as absent.
func field(fields map[string]json.RawMessage, name string, dst any, required bool) error {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		if required {
			return fmt.Errorf("%w: missing %q", ErrMalformed, name)
		}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: field %q: %v", ErrMalformed, name, err)
	}
	return nil
}

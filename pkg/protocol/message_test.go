package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{
			name:  "set state",
			input: `{"type":"SET_STATE","state":"mask"}`,
			want:  Command{Type: TypeSetState, State: "mask"},
		},
		{
			name:  "set state immediate",
			input: `{"type":"SET_STATE","state":"globe","immediate":true}`,
			want:  Command{Type: TypeSetState, State: "globe", Immediate: true},
		},
		{
			name:  "immediate null is absent",
			input: `{"type":"SET_STATE","state":"light","immediate":null}`,
			want:  Command{Type: TypeSetState, State: "light"},
		},
		{
			name:  "legacy prefix",
			input: `{"type":"AWA_SOUL_SET_STATE","state":"human"}`,
			want:  Command{Type: TypeSetState, State: "human"},
		},
		{
			name:  "trigger",
			input: `{"type":"TRIGGER"}`,
			want:  Command{Type: TypeTrigger},
		},
		{
			name:  "legacy trigger",
			input: `{"type":"AWA_SOUL_TRIGGER"}`,
			want:  Command{Type: TypeTrigger},
		},
		{
			name:  "autocycle off",
			input: `{"type":"SET_AUTOCYCLE","enabled":false}`,
			want:  Command{Type: TypeSetAutoCycle, Enabled: false},
		},
		{
			name:  "extra fields ignored",
			input: `{"type":"SET_AUTOCYCLE","enabled":true,"source":"menu"}`,
			want:  Command{Type: TypeSetAutoCycle, Enabled: true},
		},
		{
			name:  "pointer clamped",
			input: `{"type":"POINTER","x":0.25,"y":-3}`,
			want:  Command{Type: TypePointer, X: 0.25, Y: -1},
		},
		{
			name:  "pointer leave",
			input: `{"type":"POINTER_LEAVE"}`,
			want:  Command{Type: TypePointerLeave},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseCommand() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCommand() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseCommand_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"not json", `SET_STATE mask`, ErrMalformed},
		{"array", `["SET_STATE"]`, ErrMalformed},
		{"missing type", `{"state":"mask"}`, ErrMalformed},
		{"numeric type", `{"type":7}`, ErrMalformed},
		{"unknown type", `{"type":"EXPLODE"}`, ErrUnknownType},
		{"missing state", `{"type":"SET_STATE"}`, ErrMalformed},
		{"numeric state", `{"type":"SET_STATE","state":3}`, ErrMalformed},
		{"string immediate", `{"type":"SET_STATE","state":"mask","immediate":"yes"}`, ErrMalformed},
		{"missing enabled", `{"type":"SET_AUTOCYCLE"}`, ErrMalformed},
		{"numeric enabled", `{"type":"SET_AUTOCYCLE","enabled":1}`, ErrMalformed},
		{"pointer missing y", `{"type":"POINTER","x":0.1}`, ErrMalformed},
		{"pointer string x", `{"type":"POINTER","x":"0.1","y":0}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseCommand() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCommandMarshal(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"set state", SetState("mask", false), `{"type":"SET_STATE","state":"mask"}`},
		{"set state immediate", SetState("light", true), `{"type":"SET_STATE","state":"light","immediate":true}`},
		{"trigger", Trigger(), `{"type":"TRIGGER"}`},
		{"autocycle off keeps field", SetAutoCycle(false), `{"type":"SET_AUTOCYCLE","enabled":false}`},
		{"pointer at origin keeps fields", Pointer(0, 0), `{"type":"POINTER","x":0,"y":0}`},
		{"pointer leave", PointerLeave(), `{"type":"POINTER_LEAVE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Bytes() = %s, want %s", data, tt.want)
			}

			back, err := ParseCommand(data)
			if err != nil {
				t.Fatalf("ParseCommand() error = %v", err)
			}
			if back != tt.cmd {
				t.Errorf("parsed %+v, want %+v", back, tt.cmd)
			}
		})
	}
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  map[string]any
	}{
		{"init", NewInitEvent(), map[string]any{"type": "INIT"}},
		{"ready", NewReadyEvent(), map[string]any{"type": "READY"}},
		{"state", NewStateEvent("mask"), map[string]any{"type": "STATE", "state": "mask"}},
		{"error", NewErrorEvent("shapes: boom"), map[string]any{"type": "ERROR", "message": "shapes: boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Timestamp == 0 {
				t.Error("event timestamp should be set")
			}

			data, err := tt.event.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}

			var got map[string]any
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			delete(got, "ts")
			if len(got) != len(tt.want) {
				t.Errorf("event JSON = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("event[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent([]byte(`{"type":"STATE","state":"human","ts":12}`))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if e.Type != TypeState || e.State != "human" || e.Timestamp != 12 {
		t.Errorf("ParseEvent() = %+v", e)
	}

	if _, err := ParseEvent([]byte(`{}`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("ParseEvent({}) error = %v, want ErrMalformed", err)
	}
}

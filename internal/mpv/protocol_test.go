package mpv

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCommandRoundTrip(t *testing.T) {
	cmd := GetProperty("time-pos")

	line, err := cmd.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasSuffix(string(line), "\n") {
		t.Errorf("encoded frame %q is not newline terminated", line)
	}
	if strings.Count(string(line), "\n") != 1 {
		t.Errorf("encoded frame %q spans more than one line", line)
	}

	got, err := ParseCommand(line)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if got.Name() != "get_property" {
		t.Errorf("Name() = %q, want %q", got.Name(), "get_property")
	}
	if !reflect.DeepEqual(got.Arguments(), []any{"time-pos"}) {
		t.Errorf("Arguments() = %#v, want [time-pos]", got.Arguments())
	}
}

func TestCommandEncodeRequestID(t *testing.T) {
	cmd := NewCommand("playlist-next", "force")
	cmd.RequestID = 7

	line, err := cmd.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := `{"command":["playlist-next","force"],"request_id":7}` + "\n"
	if string(line) != want {
		t.Errorf("Encode() = %q, want %q", line, want)
	}
}

func TestCommandEncodeEmpty(t *testing.T) {
	if _, err := (Command{}).Encode(); !errors.Is(err, ErrProtocol) {
		t.Errorf("Encode() of empty command error = %v, want ErrProtocol", err)
	}
}

func TestParseCommandInvalid(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "not json", line: "get_property time-pos"},
		{name: "no action", line: `{"command":[]}`},
		{name: "truncated", line: `{"command":["get_prop`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCommand([]byte(tt.line)); !errors.Is(err, ErrProtocol) {
				t.Errorf("ParseCommand(%q) error = %v, want ErrProtocol", tt.line, err)
			}
		})
	}
}

func TestResponseDecode(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantOK  bool
		wantVal float64
	}{
		{name: "number", line: `{"data":12.5,"error":"success"}`, wantOK: true, wantVal: 12.5},
		{name: "null data", line: `{"data":null,"error":"success"}`, wantOK: false},
		{name: "missing data", line: `{"error":"success"}`, wantOK: false},
		{name: "error status", line: `{"data":3,"error":"property unavailable"}`, wantOK: false},
		{name: "wrong type", line: `{"data":"abc","error":"success"}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseResponse([]byte(tt.line))
			if err != nil {
				t.Fatalf("parseResponse: %v", err)
			}

			var v float64
			ok := resp.Decode(&v)
			if ok != tt.wantOK {
				t.Fatalf("Decode() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && v != tt.wantVal {
				t.Errorf("Decode() value = %v, want %v", v, tt.wantVal)
			}
		})
	}
}

func TestResponseIsEvent(t *testing.T) {
	resp, err := parseResponse([]byte(`{"event":"playback-restart"}`))
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if !resp.IsEvent() {
		t.Error("IsEvent() = false, want true")
	}
}

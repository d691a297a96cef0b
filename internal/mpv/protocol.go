package mpv

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Command is a single request frame sent to mpv's JSON IPC endpoint.
type Command struct {
	Args      []any `json:"command"`
	RequestID int   `json:"request_id,omitempty"`
}

// NewCommand builds a command frame for the named mpv action.
func NewCommand(name string, args ...any) Command {
	return Command{Args: append([]any{name}, args...)}
}

// GetProperty builds a get_property request for the given property.
func GetProperty(property string) Command {
	return NewCommand("get_property", property)
}

// Name returns the action name, or "" for an empty frame.
func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	name, _ := c.Args[0].(string)
	return name
}

// Arguments returns everything after the action name.
func (c Command) Arguments() []any {
	if len(c.Args) < 2 {
		return nil
	}
	return c.Args[1:]
}

// Encode serializes the command as one newline-terminated JSON line.
func (c Command) Encode() ([]byte, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrProtocol)
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command %q: %w", c.Name(), err)
	}
	return append(payload, '\n'), nil
}

// ParseCommand decodes a command frame from a single line.
func ParseCommand(line []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(bytes.TrimSpace(line), &c); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if len(c.Args) == 0 {
		return Command{}, fmt.Errorf("%w: command frame without action", ErrProtocol)
	}
	return c, nil
}

// Response is one line read back from mpv. Lines with Event set are
// asynchronous notifications rather than replies.
type Response struct {
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Event     string          `json:"event,omitempty"`
}

const statusSuccess = "success"

// IsEvent reports whether the line is an unsolicited event.
func (r Response) IsEvent() bool {
	return r.Event != ""
}

// OK reports whether mpv accepted the command.
func (r Response) OK() bool {
	return r.Error == "" || r.Error == statusSuccess
}

// HasData reports whether the reply carries a non-null payload.
func (r Response) HasData() bool {
	if !r.OK() {
		return false
	}
	trimmed := bytes.TrimSpace(r.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals the payload into v. It returns false when there is no
// payload or the payload does not fit v.
func (r Response) Decode(v any) bool {
	if !r.HasData() {
		return false
	}
	return json.Unmarshal(r.Data, v) == nil
}

func parseResponse(line []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(line, &r); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return r, nil
}

// Package mpvtest provides an in-process stand-in for mpv's JSON IPC socket.
package mpvtest

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nepochemu/ytm/internal/mpv"
)

// Server answers get_property from a property table and acknowledges every
// other command. Handlers registered with Handle run before the reply.
type Server struct {
	// Path is the socket path to dial.
	Path string

	// Events makes the server emit an event line before every reply.
	Events bool

	// NoRequestID makes replies omit request_id, like older mpv builds.
	NoRequestID bool

	ln       net.Listener
	mu       sync.Mutex
	props    map[string]any
	raw      map[string]string
	handlers map[string]func(mpv.Command)
	received []mpv.Command
	wg       sync.WaitGroup
}

// NewServer listens on a fresh socket and stops when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()

	// Unix socket paths are length limited, so avoid the long t.TempDir path
	dir, err := os.MkdirTemp("", "mpvtest")
	if err != nil {
		t.Fatalf("failed to create socket dir: %v", err)
	}

	s := &Server{
		Path:     filepath.Join(dir, "mpv.sock"),
		props:    make(map[string]any),
		raw:      make(map[string]string),
		handlers: make(map[string]func(mpv.Command)),
	}

	s.ln, err = net.Listen("unix", s.Path)
	if err != nil {
		_ = os.RemoveAll(dir)
		t.Fatalf("failed to listen: %v", err)
	}

	s.wg.Add(1)
	go s.serve()

	t.Cleanup(func() {
		_ = s.ln.Close()
		s.wg.Wait()
		_ = os.RemoveAll(dir)
	})

	return s
}

// Set stores a property value.
func (s *Server) Set(prop string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[prop] = value
	delete(s.raw, prop)
}

// Get returns a property value.
func (s *Server) Get(prop string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.props[prop]
}

// SetRaw makes get_property for prop answer with line verbatim.
func (s *Server) SetRaw(prop, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[prop] = line
}

// Handle registers fn to run when a command named name arrives.
func (s *Server) Handle(name string, fn func(mpv.Command)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = fn
}

// Received returns the names of every command received so far.
func (s *Server) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.received))
	for i, c := range s.received {
		names[i] = c.Name()
	}
	return names
}

// Commands returns every command received so far.
func (s *Server) Commands() []mpv.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mpv.Command(nil), s.received...)
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	w := bufio.NewWriter(conn)
	for scanner.Scan() {
		cmd, err := mpv.ParseCommand(scanner.Bytes())
		if err != nil {
			_, _ = w.WriteString(`{"error":"invalid parameter"}` + "\n")
			_ = w.Flush()
			continue
		}

		if s.Events {
			_, _ = w.WriteString(`{"event":"property-change","name":"time-pos"}` + "\n")
		}
		_, _ = w.WriteString(s.reply(cmd) + "\n")
		if err := w.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) reply(cmd mpv.Command) string {
	s.mu.Lock()
	s.received = append(s.received, cmd)
	handler := s.handlers[cmd.Name()]
	s.mu.Unlock()

	if handler != nil {
		handler(cmd)
	}

	resp := map[string]any{"error": "success"}
	if !s.NoRequestID {
		resp["request_id"] = cmd.RequestID
	}

	if args := cmd.Arguments(); cmd.Name() == "get_property" && len(args) > 0 {
		prop, _ := args[0].(string)

		s.mu.Lock()
		raw, hasRaw := s.raw[prop]
		value, ok := s.props[prop]
		s.mu.Unlock()

		if hasRaw {
			return raw
		}
		if ok {
			resp["data"] = value
		} else {
			resp["error"] = "property unavailable"
		}
	}

	line, _ := json.Marshal(resp)
	return string(line)
}

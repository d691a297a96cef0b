package mpv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// pipeConn returns a client Conn and the raw peer end of an in-memory pipe.
func pipeConn(t *testing.T, readTimeout time.Duration) (*Conn, net.Conn) {
	t.Helper()

	client, server := net.Pipe()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})

	return newConn(client, readTimeout, zerolog.Nop()), server
}

// readCommands reads n command frames from the peer end.
func readCommands(t *testing.T, r *bufio.Reader, n int) []Command {
	t.Helper()

	cmds := make([]Command, 0, n)
	for i := 0; i < n; i++ {
		line, err := r.ReadBytes('\n')
		if err != nil {
			t.Errorf("read command %d: %v", i, err)
			return cmds
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			t.Errorf("parse command %d: %v", i, err)
			return cmds
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func TestDialUnavailable(t *testing.T) {
	d := Dialer{SocketPath: filepath.Join(t.TempDir(), "missing.sock")}

	conn, err := d.Dial(context.Background())
	if conn != nil {
		t.Error("Dial() returned a connection for a missing socket")
	}
	if !IsNotRunning(err) {
		t.Errorf("Dial() error = %v, want ErrEndpointUnavailable", err)
	}
}

func TestSendWritesOneLine(t *testing.T) {
	c, server := pipeConn(t, time.Second)

	done := make(chan error, 1)
	go func() { done <- c.Send(NewCommand("cycle", "pause")) }()

	line, err := bufio.NewReader(server).ReadBytes('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Send: %v", err)
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Name() != "cycle" {
		t.Errorf("Name() = %q, want cycle", cmd.Name())
	}
}

func TestSendClosedPeer(t *testing.T) {
	c, server := pipeConn(t, time.Second)
	_ = server.Close()

	if err := c.Send(NewCommand("stop")); !errors.Is(err, ErrIO) {
		t.Errorf("Send() error = %v, want ErrIO", err)
	}
}

func TestReadResponseSkipsEvents(t *testing.T) {
	c, server := pipeConn(t, time.Second)

	go func() {
		_, _ = fmt.Fprint(server, `{"event":"start-file"}`+"\n")
		_, _ = fmt.Fprint(server, `{"event":"property-change","name":"pause"}`+"\n")
		_, _ = fmt.Fprint(server, `{"data":"song","error":"success","request_id":1}`+"\n")
	}()

	resp, err := c.ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}

	var title string
	if !resp.Decode(&title) || title != "song" {
		t.Errorf("decoded %q, want %q", title, "song")
	}
}

func TestReadResponseMalformed(t *testing.T) {
	c, server := pipeConn(t, time.Second)

	go func() {
		_, _ = fmt.Fprint(server, "not json at all\n")
	}()

	if _, err := c.ReadResponse(); !errors.Is(err, ErrProtocol) {
		t.Errorf("ReadResponse() error = %v, want ErrProtocol", err)
	}
}

func TestReadResponseDeadline(t *testing.T) {
	c, _ := pipeConn(t, 50*time.Millisecond)

	start := time.Now()
	_, err := c.ReadResponse()
	if !errors.Is(err, ErrIO) {
		t.Fatalf("ReadResponse() error = %v, want ErrIO", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("ReadResponse() blocked for %v, deadline not applied", elapsed)
	}
}

func TestSendAndForgetDrainsReply(t *testing.T) {
	c, server := pipeConn(t, time.Second)
	r := bufio.NewReader(server)

	go func() {
		readCommands(t, r, 1)
		_, _ = fmt.Fprint(server, `{"error":"success"}`+"\n")
		readCommands(t, r, 1)
		_, _ = fmt.Fprint(server, `{"data":42,"error":"success"}`+"\n")
	}()

	if err := c.SendAndForget(NewCommand("cycle", "pause")); err != nil {
		t.Fatalf("SendAndForget: %v", err)
	}

	// The first reply was consumed, so the next read sees the second one.
	if err := c.Send(GetProperty("playlist-pos")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp, err := c.ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	var pos int
	if !resp.Decode(&pos) || pos != 42 {
		t.Errorf("decoded %d, want 42", pos)
	}
}

func TestExchangeMatchesRequestID(t *testing.T) {
	c, server := pipeConn(t, time.Second)
	r := bufio.NewReader(server)

	go func() {
		cmds := readCommands(t, r, 3)
		// Reply in reverse order
		for i := len(cmds) - 1; i >= 0; i-- {
			prop := cmds[i].Arguments()[0]
			_, _ = fmt.Fprintf(server, `{"data":%q,"error":"success","request_id":%d}`+"\n", prop, cmds[i].RequestID)
		}
	}()

	props := []string{"media-title", "time-pos", "duration"}
	cmds := make([]Command, len(props))
	for i, p := range props {
		cmds[i] = GetProperty(p)
	}

	for i, res := range c.Exchange(cmds) {
		if res.Err != nil {
			t.Fatalf("slot %d: %v", i, res.Err)
		}
		var got string
		if !res.Response.Decode(&got) || got != props[i] {
			t.Errorf("slot %d = %q, want %q", i, got, props[i])
		}
	}
}

func TestExchangePositionalFallback(t *testing.T) {
	c, server := pipeConn(t, time.Second)
	r := bufio.NewReader(server)

	go func() {
		readCommands(t, r, 2)
		_, _ = fmt.Fprint(server, `{"data":1,"error":"success"}`+"\n")
		_, _ = fmt.Fprint(server, "garbage\n")
	}()

	results := c.Exchange([]Command{GetProperty("playlist-pos"), GetProperty("playlist-count")})

	var pos int
	if results[0].Err != nil || !results[0].Response.Decode(&pos) || pos != 1 {
		t.Errorf("slot 0 = %+v, want data 1", results[0])
	}
	if !errors.Is(results[1].Err, ErrProtocol) {
		t.Errorf("slot 1 error = %v, want ErrProtocol", results[1].Err)
	}
}

func TestExchangeIOFailureFailsRemaining(t *testing.T) {
	c, server := pipeConn(t, time.Second)
	r := bufio.NewReader(server)

	go func() {
		readCommands(t, r, 3)
		_, _ = fmt.Fprint(server, `{"data":"song","error":"success","request_id":1}`+"\n")
		_ = server.Close()
	}()

	results := c.Exchange([]Command{GetProperty("media-title"), GetProperty("time-pos"), GetProperty("duration")})

	if results[0].Err != nil {
		t.Errorf("slot 0 error = %v, want nil", results[0].Err)
	}
	for i := 1; i < 3; i++ {
		if !errors.Is(results[i].Err, ErrIO) {
			t.Errorf("slot %d error = %v, want ErrIO", i, results[i].Err)
		}
	}
}

func TestExchangeDropsStaleReplies(t *testing.T) {
	c, server := pipeConn(t, time.Second)
	r := bufio.NewReader(server)

	values := map[string]string{
		PropTitle:         `"Song"`,
		PropPosition:      `12.5`,
		PropDuration:      `42`,
		PropPlaylistPos:   `2`,
		PropPlaylistCount: `3`,
		PropAlbum:         `"Album"`,
		PropScriptOpts:    `{}`,
	}

	go func() {
		cmds := readCommands(t, r, len(snapshotProperties))
		// Leftovers from earlier commands arrive first
		_, _ = fmt.Fprint(server, `{"request_id":0,"error":"success"}`+"\n")
		_, _ = fmt.Fprint(server, `{"request_id":99,"error":"success","data":7}`+"\n")
		for _, cmd := range cmds {
			prop := cmd.Arguments()[0].(string)
			_, _ = fmt.Fprintf(server, `{"data":%s,"error":"success","request_id":%d}`+"\n", values[prop], cmd.RequestID)
		}
	}()

	snap := c.Status()

	if v, _ := snap.Title.Get(); v != "Song" {
		t.Errorf("Title = %v, want Song", snap.Title)
	}
	if v, _ := snap.Position.Get(); v != 12.5 {
		t.Errorf("Position = %v, want 12.5", snap.Position)
	}
	if v, _ := snap.Duration.Get(); v != 42 {
		t.Errorf("Duration = %v, want 42", snap.Duration)
	}
	if v, _ := snap.PlaylistPos.Get(); v != 2 {
		t.Errorf("PlaylistPos = %v, want 2", snap.PlaylistPos)
	}
	if v, _ := snap.PlaylistCount.Get(); v != 3 {
		t.Errorf("PlaylistCount = %v, want 3", snap.PlaylistCount)
	}
}

func TestExchangeIgnoresUntaggedOnceIDsSeen(t *testing.T) {
	c, server := pipeConn(t, time.Second)
	r := bufio.NewReader(server)

	go func() {
		cmds := readCommands(t, r, 1)
		_, _ = fmt.Fprintf(server, `{"data":1,"error":"success","request_id":%d}`+"\n", cmds[0].RequestID)

		// A late reply with no id lands ahead of the next answer
		cmds = readCommands(t, r, 1)
		_, _ = fmt.Fprint(server, `{"error":"success"}`+"\n")
		_, _ = fmt.Fprintf(server, `{"data":2,"error":"success","request_id":%d}`+"\n", cmds[0].RequestID)
	}()

	for want := 1; want <= 2; want++ {
		res := c.Exchange([]Command{GetProperty("playlist-pos")})[0]
		var pos int
		if res.Err != nil || !res.Response.Decode(&pos) || pos != want {
			t.Errorf("exchange %d = %+v, want data %d", want, res, want)
		}
	}
}

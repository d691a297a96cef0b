// Package mpv talks to a running mpv instance over its JSON IPC socket and
// keeps track of the background player process.
package mpv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultDialTimeout = 2 * time.Second
	DefaultReadTimeout = 2 * time.Second
)

// Dialer opens connections to the control socket.
type Dialer struct {
	SocketPath  string
	DialTimeout time.Duration
	ReadTimeout time.Duration
	Logger      zerolog.Logger
}

// Conn is one open control connection. It is not safe for concurrent use;
// each operation opens its own.
type Conn struct {
	conn        net.Conn
	reader      *bufio.Reader
	readTimeout time.Duration
	logger      zerolog.Logger
	nextID      int
	echoesIDs   bool
}

// Result pairs a reply with the error that replaced it, if any.
type Result struct {
	Response Response
	Err      error
}

// Dial connects to the socket. A failure always wraps ErrEndpointUnavailable
// and is never retried.
func (d Dialer) Dial(ctx context.Context) (*Conn, error) {
	timeout := d.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	nd := net.Dialer{Timeout: timeout}
	conn, err := nd.DialContext(ctx, "unix", d.SocketPath)
	if err != nil {
		d.Logger.Debug().Err(err).Str("socket", d.SocketPath).Msg("Control socket unreachable")
		return nil, fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
	}

	return newConn(conn, d.ReadTimeout, d.Logger), nil
}

func newConn(conn net.Conn, readTimeout time.Duration, logger zerolog.Logger) *Conn {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &Conn{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		readTimeout: readTimeout,
		logger:      logger,
		nextID:      1,
	}
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Send writes one command frame.
func (c *Conn) Send(cmd Command) error {
	payload, err := cmd.Encode()
	if err != nil {
		return err
	}

	c.logger.Debug().Str("command", cmd.Name()).Int("request_id", cmd.RequestID).Msg("Sending")

	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, cmd.Name(), err)
	}
	return nil
}

// ReadResponse blocks until the next reply line, skipping event lines.
// Each read is bounded by the connection's read timeout.
func (c *Conn) ReadResponse() (Response, error) {
	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return Response{}, fmt.Errorf("%w: set deadline: %w", ErrIO, err)
		}

		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return Response{}, fmt.Errorf("%w: read: %w", ErrIO, err)
		}

		resp, err := parseResponse(line)
		if err != nil {
			c.logger.Debug().Bytes("line", line).Msg("Malformed reply")
			return Response{}, err
		}

		if resp.IsEvent() {
			c.logger.Debug().Str("event", resp.Event).Msg("Skipping event")
			continue
		}

		return resp, nil
	}
}

// SendAndForget sends cmd and waits for its reply so it does not pile up
// unread on the socket. A rejected command is logged, not returned.
func (c *Conn) SendAndForget(cmd Command) error {
	res := c.Exchange([]Command{cmd})[0]
	if res.Err != nil && !errors.Is(res.Err, ErrProtocol) {
		return res.Err
	}
	if !res.Response.OK() {
		c.logger.Debug().Str("command", cmd.Name()).Str("status", res.Response.Error).Msg("Command rejected")
	}
	return nil
}

// Exchange sends every command, then reads one reply per command. Replies
// are matched on their echoed request_id. Once the peer has echoed an id on
// this connection, a reply with an unknown or missing id is stale and is
// dropped without filling a slot. Untagged replies from a peer that has not
// echoed ids yet are held back and assigned in send order once there is one
// per outstanding request. An I/O failure fails every slot still waiting.
func (c *Conn) Exchange(cmds []Command) []Result {
	results := make([]Result, len(cmds))
	index := make(map[int]int, len(cmds))

	for i, cmd := range cmds {
		cmd.RequestID = c.nextID
		c.nextID++

		if err := c.Send(cmd); err != nil {
			for j := i; j < len(cmds); j++ {
				results[j].Err = err
			}
			break
		}
		index[cmd.RequestID] = i
	}

	// untagged holds replies that carried no id, in arrival order
	var untagged []Result

	for len(index) > 0 {
		resp, err := c.ReadResponse()
		if err != nil && !errors.Is(err, ErrProtocol) {
			for k, id := range sortedIDs(index) {
				if k < len(untagged) {
					results[index[id]] = untagged[k]
					continue
				}
				results[index[id]].Err = err
			}
			break
		}

		if err == nil && resp.RequestID != 0 {
			c.echoesIDs = true
			untagged = nil

			i, ok := index[resp.RequestID]
			if !ok {
				c.logger.Debug().Int("request_id", resp.RequestID).Msg("Dropping stale reply")
				continue
			}
			delete(index, resp.RequestID)
			results[i] = Result{Response: resp}
			continue
		}

		if c.echoesIDs {
			c.logger.Debug().Err(err).Msg("Dropping untagged reply")
			continue
		}

		untagged = append(untagged, Result{Response: resp, Err: err})
		if len(untagged) < len(index) {
			continue
		}

		for k, id := range sortedIDs(index) {
			results[index[id]] = untagged[k]
		}
		break
	}

	return results
}

// sortedIDs returns the outstanding request ids in send order.
func sortedIDs(index map[int]int) []int {
	ids := make([]int, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Do dials, delivers one command with SendAndForget, and closes.
func Do(ctx context.Context, d Dialer, cmd Command) error {
	conn, err := d.Dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.SendAndForget(cmd)
}

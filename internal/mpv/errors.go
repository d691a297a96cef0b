package mpv

import "errors"

// Errors reported by the transport. Callers test them with errors.Is.
var (
	// ErrEndpointUnavailable means the control socket is absent or refused
	// the connection. Every caller reads it as "mpv is not running".
	ErrEndpointUnavailable = errors.New("mpv: endpoint unavailable")

	// ErrIO is a read or write failure on an established connection,
	// including an expired read deadline.
	ErrIO = errors.New("mpv: i/o error")

	// ErrProtocol is a reply line that is not valid JSON.
	ErrProtocol = errors.New("mpv: protocol error")
)

// IsNotRunning reports whether err means the player could not be reached.
func IsNotRunning(err error) bool {
	return errors.Is(err, ErrEndpointUnavailable)
}

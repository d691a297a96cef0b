package player

import "github.com/nepochemu/ytm/internal/mpv"

// State is the player state as seen by a live probe. It is derived on every
// query and never stored.
type State int

const (
	StateNotRunning State = iota // control socket unreachable
	StateIdle                    // reachable, nothing loaded
	StatePlaying                 // reachable, media loaded
)

// String returns a human-readable representation of the State
func (s State) String() string {
	switch s {
	case StateNotRunning:
		return "not running"
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// StateOf derives the state from a snapshot; nil means unreachable.
func StateOf(snap *mpv.Snapshot) State {
	switch {
	case snap == nil:
		return StateNotRunning
	case snap.Loaded():
		return StatePlaying
	default:
		return StateIdle
	}
}

package mpv

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/mo"
)

// Properties queried for a status snapshot.
const (
	PropTitle         = "media-title"
	PropPosition      = "time-pos"
	PropDuration      = "duration"
	PropPlaylistPos   = "playlist-pos-1"
	PropPlaylistCount = "playlist-count"
	PropAlbum         = "metadata/by-key/album"
	PropScriptOpts    = "script-opts"

	// PlaylistTitleOpt is the script option carrying the playlist display
	// name, set with --script-opts-append when the player is launched.
	PlaylistTitleOpt = "ytm-playlist-title"
)

var snapshotProperties = []string{
	PropTitle,
	PropPosition,
	PropDuration,
	PropPlaylistPos,
	PropPlaylistCount,
	PropAlbum,
	PropScriptOpts,
}

// Snapshot is a point-in-time read of the player. Every field is optional
// because any single property query may fail or come back null.
type Snapshot struct {
	Title         mo.Option[string]
	Position      mo.Option[float64]
	Duration      mo.Option[float64]
	PlaylistPos   mo.Option[int]
	PlaylistCount mo.Option[int]
	Album         mo.Option[string]
	PlaylistTitle mo.Option[string]
}

// ReadStatus queries every snapshot property over a single connection. A
// connect failure returns ErrEndpointUnavailable and no snapshot; any other
// failure only leaves the affected field absent.
func ReadStatus(ctx context.Context, d Dialer) (*Snapshot, error) {
	conn, err := d.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.Status(), nil
}

// Status reads a snapshot over an already open connection.
func (c *Conn) Status() *Snapshot {
	cmds := make([]Command, len(snapshotProperties))
	for i, prop := range snapshotProperties {
		cmds[i] = GetProperty(prop)
	}

	snap := &Snapshot{}
	for i, res := range c.Exchange(cmds) {
		if res.Err != nil {
			c.logger.Debug().Err(res.Err).Str("property", snapshotProperties[i]).Msg("Property unavailable")
			continue
		}
		snap.apply(snapshotProperties[i], res.Response)
	}
	return snap
}

func (s *Snapshot) apply(prop string, resp Response) {
	switch prop {
	case PropTitle:
		s.Title = decodeString(resp)
	case PropPosition:
		s.Position = decodeFloat(resp)
	case PropDuration:
		s.Duration = decodeFloat(resp)
	case PropPlaylistPos:
		s.PlaylistPos = decodePositive(resp)
	case PropPlaylistCount:
		s.PlaylistCount = decodePositive(resp)
	case PropAlbum:
		s.Album = decodeString(resp)
	case PropScriptOpts:
		var opts map[string]string
		if resp.Decode(&opts) && opts[PlaylistTitleOpt] != "" {
			s.PlaylistTitle = mo.Some(opts[PlaylistTitleOpt])
		}
	}
}

func decodeString(resp Response) mo.Option[string] {
	var v string
	if !resp.Decode(&v) || v == "" {
		return mo.None[string]()
	}
	return mo.Some(v)
}

func decodeFloat(resp Response) mo.Option[float64] {
	var v float64
	if !resp.Decode(&v) {
		return mo.None[float64]()
	}
	return mo.Some(v)
}

func decodePositive(resp Response) mo.Option[int] {
	var v int
	if !resp.Decode(&v) || v <= 0 {
		return mo.None[int]()
	}
	return mo.Some(v)
}

// Loaded reports whether something is loaded in the player.
func (s *Snapshot) Loaded() bool {
	return s != nil && s.Title.IsPresent()
}

// Elapsed is the formatted playback position.
func (s *Snapshot) Elapsed() string {
	return FormatTime(s.Position)
}

// Total is the formatted duration.
func (s *Snapshot) Total() string {
	return FormatTime(s.Duration)
}

// Progress is the playback percentage.
func (s *Snapshot) Progress() int {
	return Percent(s.Position, s.Duration)
}

// Name is the title, or "" when nothing is loaded.
func (s *Snapshot) Name() string {
	return s.Title.OrEmpty()
}

// Track renders the playlist position as "n/m", or "" when unknown.
func (s *Snapshot) Track() string {
	pos, ok := s.PlaylistPos.Get()
	if !ok {
		return ""
	}
	if count, ok := s.PlaylistCount.Get(); ok {
		return fmt.Sprintf("%d/%d", pos, count)
	}
	return fmt.Sprintf("%d", pos)
}

// Collection is the album name, falling back to the playlist title.
func (s *Snapshot) Collection() string {
	if album, ok := s.Album.Get(); ok {
		return album
	}
	return s.PlaylistTitle.OrEmpty()
}

// FormatTime renders seconds as zero-padded MM:SS. Minutes come from the
// floored value and seconds are the rounded remainder. An absent value
// renders as "--:--".
func FormatTime(v mo.Option[float64]) string {
	secs, ok := v.Get()
	if !ok || math.IsNaN(secs) {
		return "--:--"
	}
	if secs < 0 {
		secs = 0
	}

	minutes := int(math.Floor(secs)) / 60
	seconds := int(math.Round(secs - float64(minutes*60)))
	if seconds >= 60 {
		minutes += seconds / 60
		seconds %= 60
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Percent is floor(pos/dur*100), or 0 unless both are known and dur > 0.
func Percent(pos, dur mo.Option[float64]) int {
	p, ok := pos.Get()
	if !ok {
		return 0
	}
	d, ok := dur.Get()
	if !ok || d <= 0 {
		return 0
	}
	pct := int(math.Floor(p / d * 100))
	if pct < 0 {
		return 0
	}
	return pct
}

package mpv_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nepochemu/ytm/internal/mpv"
	"github.com/nepochemu/ytm/internal/mpv/mpvtest"
	"github.com/samber/mo"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name     string
		input    mo.Option[float64]
		expected string
	}{
		{name: "zero", input: mo.Some(0.0), expected: "00:00"},
		{name: "under a minute", input: mo.Some(59.0), expected: "00:59"},
		{name: "exactly a minute", input: mo.Some(60.0), expected: "01:00"},
		{name: "fractional rounds seconds", input: mo.Some(125.5), expected: "02:06"},
		{name: "rounding carries into minutes", input: mo.Some(59.6), expected: "01:00"},
		{name: "long media", input: mo.Some(3725.0), expected: "62:05"},
		{name: "negative clamps", input: mo.Some(-3.0), expected: "00:00"},
		{name: "absent", input: mo.None[float64](), expected: "--:--"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mpv.FormatTime(tt.input); got != tt.expected {
				t.Errorf("FormatTime(%v) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		pos      mo.Option[float64]
		dur      mo.Option[float64]
		expected int
	}{
		{name: "halfway", pos: mo.Some(50.0), dur: mo.Some(100.0), expected: 50},
		{name: "floors", pos: mo.Some(33.0), dur: mo.Some(99.9), expected: 33},
		{name: "duration absent", pos: mo.Some(50.0), dur: mo.None[float64](), expected: 0},
		{name: "position absent", pos: mo.None[float64](), dur: mo.Some(100.0), expected: 0},
		{name: "zero duration", pos: mo.Some(5.0), dur: mo.Some(0.0), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mpv.Percent(tt.pos, tt.dur); got != tt.expected {
				t.Errorf("Percent() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestReadStatusNotRunning(t *testing.T) {
	d := mpv.Dialer{SocketPath: filepath.Join(t.TempDir(), "nothing.sock")}

	snap, err := mpv.ReadStatus(context.Background(), d)
	if !mpv.IsNotRunning(err) {
		t.Fatalf("ReadStatus() error = %v, want ErrEndpointUnavailable", err)
	}
	if snap != nil {
		t.Errorf("ReadStatus() snapshot = %+v, want nil", snap)
	}
}

func TestReadStatusFull(t *testing.T) {
	srv := mpvtest.NewServer(t)
	srv.Events = true
	srv.Set(mpv.PropTitle, "Song A")
	srv.Set(mpv.PropPosition, 65.2)
	srv.Set(mpv.PropDuration, 200.0)
	srv.Set(mpv.PropPlaylistPos, 2)
	srv.Set(mpv.PropPlaylistCount, 5)
	srv.Set(mpv.PropScriptOpts, map[string]string{mpv.PlaylistTitleOpt: "Mix"})

	snap, err := mpv.ReadStatus(context.Background(), mpv.Dialer{SocketPath: srv.Path, ReadTimeout: time.Second})
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}

	if got := snap.Name(); got != "Song A" {
		t.Errorf("Name() = %q, want %q", got, "Song A")
	}
	if got := snap.Elapsed(); got != "01:05" {
		t.Errorf("Elapsed() = %q, want 01:05", got)
	}
	if got := snap.Total(); got != "03:20" {
		t.Errorf("Total() = %q, want 03:20", got)
	}
	if got := snap.Progress(); got != 32 {
		t.Errorf("Progress() = %d, want 32", got)
	}
	if got := snap.Track(); got != "2/5" {
		t.Errorf("Track() = %q, want 2/5", got)
	}
	if snap.Album.IsPresent() {
		t.Errorf("Album = %v, want absent", snap.Album)
	}
	if got := snap.Collection(); got != "Mix" {
		t.Errorf("Collection() = %q, want Mix", got)
	}
}

func TestReadStatusPartialFailure(t *testing.T) {
	srv := mpvtest.NewServer(t)
	srv.NoRequestID = true
	srv.Set(mpv.PropTitle, "Song B")
	srv.SetRaw(mpv.PropPosition, `{"data": 12.0, "error": "succ`)
	srv.Set(mpv.PropDuration, 180.0)

	snap, err := mpv.ReadStatus(context.Background(), mpv.Dialer{SocketPath: srv.Path, ReadTimeout: time.Second})
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}

	if !snap.Title.IsPresent() {
		t.Error("Title absent, want present")
	}
	if snap.Position.IsPresent() {
		t.Errorf("Position = %v, want absent after malformed reply", snap.Position)
	}
	if d, ok := snap.Duration.Get(); !ok || d != 180 {
		t.Errorf("Duration = %v, want 180", snap.Duration)
	}
	if snap.PlaylistPos.IsPresent() || snap.PlaylistCount.IsPresent() {
		t.Error("playlist fields present, want absent for unavailable properties")
	}
	if got := snap.Progress(); got != 0 {
		t.Errorf("Progress() = %d, want 0 with position absent", got)
	}
}

func TestReadStatusIdle(t *testing.T) {
	srv := mpvtest.NewServer(t)

	snap, err := mpv.ReadStatus(context.Background(), mpv.Dialer{SocketPath: srv.Path, ReadTimeout: time.Second})
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if snap == nil {
		t.Fatal("ReadStatus() returned nil snapshot for a reachable player")
	}
	if snap.Loaded() {
		t.Error("Loaded() = true for an empty player")
	}
	if got := snap.Elapsed(); got != "--:--" {
		t.Errorf("Elapsed() = %q, want --:--", got)
	}
}

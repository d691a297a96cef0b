package player

import (
	"strings"
	"testing"

	"github.com/nepochemu/ytm/internal/mpv"
	"github.com/samber/mo"
)

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name    string
		snap    *mpv.Snapshot
		want    []string
		notWant []string
	}{
		{
			name: "not running",
			snap: nil,
			want: []string{"mpv is not running"},
		},
		{
			name: "idle",
			snap: &mpv.Snapshot{},
			want: []string{"nothing playing"},
		},
		{
			name: "full playlist entry",
			snap: &mpv.Snapshot{
				Title:         mo.Some("Song"),
				Position:      mo.Some(125.5),
				Duration:      mo.Some(251.0),
				PlaylistPos:   mo.Some(2),
				PlaylistCount: mo.Some(7),
				PlaylistTitle: mo.Some("Road trip"),
			},
			want: []string{"Song", "02:06", "04:11", "(50%)", "track 2/7", "Road trip"},
		},
		{
			name: "album wins over playlist title",
			snap: &mpv.Snapshot{
				Title:         mo.Some("Song"),
				Album:         mo.Some("Record"),
				PlaylistTitle: mo.Some("Road trip"),
			},
			want:    []string{"Record", "--:-- / --:--", "(0%)"},
			notWant: []string{"Road trip", "track"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatStatus(tt.snap)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("FormatStatus() = %q, missing %q", got, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("FormatStatus() = %q, should not contain %q", got, w)
				}
			}
		})
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		snap *mpv.Snapshot
		want State
	}{
		{snap: nil, want: StateNotRunning},
		{snap: &mpv.Snapshot{}, want: StateIdle},
		{snap: &mpv.Snapshot{Position: mo.Some(3.0)}, want: StateIdle},
		{snap: &mpv.Snapshot{Title: mo.Some("x")}, want: StatePlaying},
	}

	for _, tt := range tests {
		if got := StateOf(tt.snap); got != tt.want {
			t.Errorf("StateOf(%+v) = %v, want %v", tt.snap, got, tt.want)
		}
	}
}

package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nepochemu/ytm/internal/mpv"
	"github.com/rs/zerolog"
	"github.com/samber/mo"
	"github.com/spf13/afero"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{name: "disabled", input: "Hello", width: 0, expected: "Hello"},
		{name: "negative width", input: "Hello", width: -1, expected: "Hello"},
		{name: "pad short text", input: "Hi", width: 10, expected: "Hi        "},
		{name: "exact width", input: "Hello", width: 5, expected: "Hello"},
		{name: "truncate with ellipsis", input: "This is a very long string that needs truncation", width: 20, expected: "This is a very lo..."},
		{name: "emoji is two columns", input: "🎵 Music", width: 10, expected: "🎵 Music  "},
		{name: "wide runes truncated", input: "日本語とても長いテキスト", width: 10, expected: "日本語... "},
		{name: "tiny width", input: "Hello", width: 2, expected: ".."},
		{name: "empty", input: "", width: 3, expected: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padToWidth(tt.input, tt.width)
			if got != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
			}
			if tt.width > 0 && runewidth.StringWidth(got) != tt.width {
				t.Errorf("width = %d, want %d", runewidth.StringWidth(got), tt.width)
			}
		})
	}
}

func TestExtractWindow(t *testing.T) {
	tests := []struct {
		text  string
		start int
		width int
		want  string
	}{
		{text: "abcdef", start: 0, width: 3, want: "abc"},
		{text: "abcdef", start: 4, width: 4, want: "ef  "},
		{text: "abcdef", start: 0, width: 0, want: ""},
		{text: "日本語", start: 2, width: 3, want: "本 "},
	}

	for _, tt := range tests {
		if got := extractWindow(tt.text, tt.start, tt.width); got != tt.want {
			t.Errorf("extractWindow(%q, %d, %d) = %q, want %q", tt.text, tt.start, tt.width, got, tt.want)
		}
	}
}

func TestMarqueeText(t *testing.T) {
	t.Run("short text is static", func(t *testing.T) {
		got := marqueeText("Song", 8, 2, " | ", time.Unix(12345, 0))
		if got != "Song    " {
			t.Errorf("marqueeText() = %q, want padded text", got)
		}
	})

	t.Run("long text scrolls with time", func(t *testing.T) {
		text := "A rather long song title"
		first := marqueeText(text, 10, 1, " | ", time.Unix(0, 0))
		if first != "A rather l" {
			t.Errorf("marqueeText() at t=0 = %q, want %q", first, "A rather l")
		}

		second := marqueeText(text, 10, 1, " | ", time.Unix(2, 0))
		if second != "rather lon" {
			t.Errorf("marqueeText() at t=2 = %q, want %q", second, "rather lon")
		}
	})

	t.Run("wraps through the separator", func(t *testing.T) {
		text := "0123456789AB"
		// loop is "0123456789AB | " (15 columns); t=10 starts at "AB"
		got := marqueeText(text, 6, 1, " | ", time.Unix(10, 0))
		if got != "AB | 0" {
			t.Errorf("marqueeText() = %q, want %q", got, "AB | 0")
		}
	})

	t.Run("always exact width", func(t *testing.T) {
		text := "🎵 日本語 title that keeps going"
		for sec := int64(0); sec < 40; sec++ {
			got := marqueeText(text, 12, 3, " • ", time.Unix(sec, 0))
			if w := runewidth.StringWidth(got); w != 12 {
				t.Fatalf("t=%d: width %d, want 12 (%q)", sec, w, got)
			}
		}
	})
}

func TestFormatSnapshot(t *testing.T) {
	snap := &mpv.Snapshot{
		Title:         mo.Some("Song"),
		Position:      mo.Some(61.0),
		Duration:      mo.Some(200.0),
		PlaylistPos:   mo.Some(1),
		PlaylistCount: mo.Some(4),
		PlaylistTitle: mo.Some("Mix"),
	}

	tests := []struct {
		format string
		want   string
	}{
		{format: "{{.Name}} [{{.Elapsed}}/{{.Total}}]", want: "Song [01:01/03:20]"},
		{format: "{{.Track}} {{.Collection}} {{.Progress}}%", want: "1/4 Mix 30%"},
	}

	for _, tt := range tests {
		got, err := formatSnapshot(snap, tt.format)
		if err != nil {
			t.Fatalf("formatSnapshot(%q): %v", tt.format, err)
		}
		if got != tt.want {
			t.Errorf("formatSnapshot(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}

	if _, err := formatSnapshot(snap, "{{.Name"); err == nil || !strings.Contains(err.Error(), "invalid template") {
		t.Errorf("formatSnapshot() with bad template error = %v", err)
	}
}

func TestDescribePlayer(t *testing.T) {
	sup := mpv.NewSupervisor(afero.NewMemMapFs(), "/run/ytm/mpv.pid", zerolog.Nop())

	var out bytes.Buffer
	describePlayer(&out, "/tmp/ytm-mpv.sock", sup)
	want := "socket:   /tmp/ytm-mpv.sock\npid file: /run/ytm/mpv.pid\npid:      none\n"
	if out.String() != want {
		t.Errorf("describePlayer() = %q, want %q", out.String(), want)
	}

	if err := sup.Record(4321); err != nil {
		t.Fatalf("Record: %v", err)
	}
	out.Reset()
	describePlayer(&out, "/tmp/ytm-mpv.sock", sup)
	if !strings.Contains(out.String(), "pid:      4321") {
		t.Errorf("describePlayer() = %q, want recorded pid", out.String())
	}
}

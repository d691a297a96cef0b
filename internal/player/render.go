package player

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nepochemu/ytm/internal/mpv"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	idleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// RenderStatus writes a short multi-line view of snap to w.
func RenderStatus(w io.Writer, snap *mpv.Snapshot) {
	fmt.Fprintln(w, FormatStatus(snap))
}

// FormatStatus renders snap without a trailing newline.
func FormatStatus(snap *mpv.Snapshot) string {
	if snap == nil {
		return idleStyle.Render("mpv is not running")
	}
	if !snap.Loaded() {
		return idleStyle.Render("nothing playing")
	}

	lines := []string{
		titleStyle.Render(snap.Name()),
		fmt.Sprintf("%s / %s %s",
			timeStyle.Render(snap.Elapsed()),
			timeStyle.Render(snap.Total()),
			faintStyle.Render(fmt.Sprintf("(%d%%)", snap.Progress()))),
	}

	var extra []string
	if track := snap.Track(); track != "" {
		extra = append(extra, "track "+track)
	}
	if coll := snap.Collection(); coll != "" {
		extra = append(extra, coll)
	}
	if len(extra) > 0 {
		lines = append(lines, faintStyle.Render(strings.Join(extra, " · ")))
	}

	return strings.Join(lines, "\n")
}

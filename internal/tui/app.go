// Package tui shows a live view of the background player with key controls.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/nepochemu/ytm/internal/mpv"
	"github.com/nepochemu/ytm/internal/player"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/samber/mo"
)

const (
	maxRecent      = 5
	controlTimeout = 5 * time.Second
)

// Config holds TUI configuration options
type Config struct {
	RefreshRate time.Duration // How often to refresh the display
	SocketPath  string        // Shown in the info panel
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate: 500 * time.Millisecond,
	}
}

// Controls is the subset of the playback controller the keys drive.
type Controls interface {
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Next(ctx context.Context) (player.Transition, error)
	Previous(ctx context.Context) (player.Transition, error)
}

// App is the TUI application
type App struct {
	app        *tview.Application
	nowPlaying *tview.TextView
	progress   *tview.TextView
	info       *tview.TextView
	recent     *tview.TextView
	footer     *tview.TextView

	config   Config
	controls Controls
	logger   zerolog.Logger

	// mu guards everything below; the update consumer writes it and the
	// redraw ticker reads it
	mu       sync.Mutex
	current  player.Update
	seen     bool
	lastName string
	message  string

	recentBuf   [maxRecent]string
	recentCount int

	sessionStart time.Time

	// Last-rendered content for change detection
	lastNowPlaying string
	lastProgress   string
	lastInfo       string
	lastRecent     string
	lastBarWidth   int

	cancelFunc context.CancelFunc
}

// New creates a TUI driving controls.
func New(cfg Config, controls Controls, logger zerolog.Logger) *App {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = DefaultConfig().RefreshRate
	}
	a := &App{
		app:          tview.NewApplication(),
		config:       cfg,
		controls:     controls,
		logger:       logger.With().Str("component", "tui").Logger(),
		sessionStart: time.Now(),
	}
	a.setupUI()
	return a
}

func (a *App) setupUI() {
	a.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.nowPlaying.SetBorder(true).
		SetTitle(" ytm ").
		SetTitleAlign(tview.AlignLeft)

	a.progress = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.progress.SetBorder(true)

	a.info = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.info.SetBorder(true).
		SetTitle(" Player ").
		SetTitleAlign(tview.AlignLeft)

	a.recent = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.recent.SetBorder(true).
		SetTitle(" Recent ").
		SetTitleAlign(tview.AlignLeft)

	a.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]q:quit  space:pause  n:next  p:prev  s:stop[-]")

	bottomRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.info, 0, 1, false).
		AddItem(a.recent, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.nowPlaying, 0, 3, false).
		AddItem(a.progress, 3, 1, false).
		AddItem(bottomRow, 7, 1, false).
		AddItem(a.footer, 1, 1, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(flex, true)
}

func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case ' ':
		a.control("pause", func(ctx context.Context) error { return a.controls.Pause(ctx) })
		return nil
	case 's', 'S':
		a.control("stop", func(ctx context.Context) error { return a.controls.Stop(ctx) })
		return nil
	case 'n', 'N':
		a.control("next", func(ctx context.Context) error {
			t, err := a.controls.Next(ctx)
			a.noteTransition(t, err)
			return err
		})
		return nil
	case 'p', 'P':
		a.control("prev", func(ctx context.Context) error {
			t, err := a.controls.Previous(ctx)
			a.noteTransition(t, err)
			return err
		})
		return nil
	}
	return event
}

// control runs fn off the event loop; next/prev poll for a while.
func (a *App) control(name string, fn func(context.Context) error) {
	if a.controls == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.logger.Warn().Err(err).Str("control", name).Msg("Control failed")
			a.setMessage(fmt.Sprintf("%s failed", name))
		}
	}()
}

func (a *App) noteTransition(t player.Transition, err error) {
	if err == nil && !t.Changed {
		a.setMessage("playlist position unchanged")
	}
}

func (a *App) setMessage(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.message = msg
}

// Run consumes updates until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context, updates <-chan player.Update) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	go a.handleUpdates(ctx, updates)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// handleUpdates records every update and redraws on a single ticker so
// redraws never queue up behind a slow poll.
func (a *App) handleUpdates(ctx context.Context, updates <-chan player.Update) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case u := <-updates:
				a.apply(u)
			}
		}
	}()

	ticker := time.NewTicker(a.config.RefreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.refresh()
		}
	}
}

func (a *App) apply(u player.Update) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if u.Snapshot == nil {
		a.current = u
		a.seen = true
		return
	}

	if name := u.Snapshot.Name(); name != "" && name != a.lastName {
		if a.lastName != "" {
			a.addRecent(a.lastName)
		}
		a.lastName = name
		a.message = ""
	}
	a.current = u
	a.seen = true
}

// addRecent writes name into the ring buffer. Must be called with a.mu held.
func (a *App) addRecent(name string) {
	a.recentBuf[a.recentCount%maxRecent] = name
	a.recentCount++
}

// recentNames returns recent titles, newest first. Must be called with a.mu held.
func (a *App) recentNames() []string {
	n := a.recentCount
	if n > maxRecent {
		n = maxRecent
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = a.recentBuf[(a.recentCount-1-i)%maxRecent]
	}
	return names
}

func (a *App) refresh() {
	a.app.QueueUpdateDraw(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		a.setIfChanged(a.nowPlaying, &a.lastNowPlaying, a.nowPlayingText())
		a.setIfChanged(a.progress, &a.lastProgress, a.progressText())
		a.setIfChanged(a.info, &a.lastInfo, a.infoText())
		a.setIfChanged(a.recent, &a.lastRecent, a.recentText())
	})
}

func (a *App) setIfChanged(view *tview.TextView, last *string, text string) {
	if text != *last {
		*last = text
		view.SetText(text)
	}
}

func (a *App) nowPlayingText() string {
	snap := a.current.Snapshot
	switch {
	case !a.seen:
		return "\n\n[gray]Connecting...[-]"
	case a.current.State == player.StateNotRunning:
		return "\n\n[gray]mpv is not running[-]"
	case a.current.State == player.StateIdle:
		return "\n\n[gray]Nothing playing[-]"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(snap.Name())))
	if coll := snap.Collection(); coll != "" {
		sb.WriteString(fmt.Sprintf("[yellow]%s[-]\n", tview.Escape(coll)))
	}
	if track := snap.Track(); track != "" {
		sb.WriteString(fmt.Sprintf("[gray]track %s[-]", track))
	}
	return sb.String()
}

func (a *App) progressText() string {
	if a.current.State != player.StatePlaying {
		return ""
	}
	snap := a.current.Snapshot

	_, _, width, _ := a.progress.GetInnerRect()
	barWidth := width - 20
	// Keep the last positive width to avoid flicker during layout
	if barWidth > 0 {
		a.lastBarWidth = barWidth
	}
	if a.lastBarWidth < 10 {
		a.lastBarWidth = 10
	}

	return fmt.Sprintf("%s %s %s [gray]%3d%%[-]",
		snap.Elapsed(),
		buildProgressBar(snap.Progress(), a.lastBarWidth),
		snap.Total(),
		snap.Progress())
}

func (a *App) infoText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("State:   %s\n", a.current.State))
	if a.config.SocketPath != "" {
		sb.WriteString(fmt.Sprintf("Socket:  %s\n", tview.Escape(truncate(a.config.SocketPath, 30))))
	}
	sb.WriteString(fmt.Sprintf("Session: %s", mpv.FormatTime(mo.Some(time.Since(a.sessionStart).Seconds()))))
	if a.message != "" {
		sb.WriteString(fmt.Sprintf("\n[yellow]%s[-]", tview.Escape(a.message)))
	}
	return sb.String()
}

func (a *App) recentText() string {
	names := a.recentNames()
	if len(names) == 0 {
		return "[gray]Nothing yet[-]"
	}
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("[white]%s[-]", tview.Escape(truncate(name, 28)))
	}
	return strings.Join(lines, "\n")
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// buildProgressBar renders percent (0-100) as a bar of width cells.
func buildProgressBar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := percent * width / 100
	return "[green]" + strings.Repeat("█", filled) + "[-]" +
		"[gray]" + strings.Repeat("░", width-filled) + "[-]"
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

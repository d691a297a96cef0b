// Package player starts mpv and drives it over its control socket.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/nepochemu/ytm/internal/mpv"
	"github.com/rs/zerolog"
	"github.com/samber/mo"
)

var (
	// ErrSpawn means the mpv executable could not be started.
	ErrSpawn = errors.New("failed to start mpv")

	// ErrPlayerExit means a foreground mpv exited with a nonzero status.
	ErrPlayerExit = errors.New("mpv exited with an error")
)

const (
	DefaultSettleDelay     = 800 * time.Millisecond
	DefaultConfirmAttempts = 10
	DefaultConfirmDelay    = 100 * time.Millisecond
)

// Options configures a Controller.
type Options struct {
	MPVPath    string
	ExtraArgs  []string
	Dialer     mpv.Dialer
	Supervisor *mpv.Supervisor

	// Out receives user-facing status output.
	Out io.Writer

	// SettleDelay is how long to wait after a background launch before
	// reading the first snapshot.
	SettleDelay time.Duration

	// ConfirmAttempts and ConfirmDelay bound the polling after next/prev.
	ConfirmAttempts int
	ConfirmDelay    time.Duration

	Logger zerolog.Logger
}

// Request describes what to play.
type Request struct {
	Targets       []string
	Title         string
	PlaylistTitle string
	AudioOnly     bool
	Background    bool
}

// Transition reports whether next/prev moved the playlist position.
type Transition struct {
	Before  mo.Option[int]
	After   mo.Option[int]
	Changed bool
}

// Controller is the entry point for every playback command.
type Controller struct {
	mpvPath         string
	extraArgs       []string
	dialer          mpv.Dialer
	supervisor      *mpv.Supervisor
	out             io.Writer
	settleDelay     time.Duration
	confirmAttempts int
	confirmDelay    time.Duration
	logger          zerolog.Logger
}

// New creates a Controller, filling unset options with defaults.
func New(opts Options) *Controller {
	c := &Controller{
		mpvPath:         opts.MPVPath,
		extraArgs:       opts.ExtraArgs,
		dialer:          opts.Dialer,
		supervisor:      opts.Supervisor,
		out:             opts.Out,
		settleDelay:     opts.SettleDelay,
		confirmAttempts: opts.ConfirmAttempts,
		confirmDelay:    opts.ConfirmDelay,
		logger:          opts.Logger.With().Str("component", "player").Logger(),
	}

	if c.mpvPath == "" {
		c.mpvPath = "mpv"
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.settleDelay <= 0 {
		c.settleDelay = DefaultSettleDelay
	}
	if c.confirmAttempts <= 0 {
		c.confirmAttempts = DefaultConfirmAttempts
	}
	if c.confirmDelay <= 0 {
		c.confirmDelay = DefaultConfirmDelay
	}
	c.dialer.Logger = c.logger

	return c
}

// Snapshot reads the current status and the state derived from it.
func (c *Controller) Snapshot(ctx context.Context) (*mpv.Snapshot, State) {
	snap, err := mpv.ReadStatus(ctx, c.dialer)
	if err != nil {
		return nil, StateNotRunning
	}
	return snap, StateOf(snap)
}

// Probe derives the current state from a live query.
func (c *Controller) Probe(ctx context.Context) State {
	_, state := c.Snapshot(ctx)
	return state
}

// Start plays req. In the background the player is detached and one status
// snapshot is shown after the settle delay; if a player is already running
// the targets replace its playlist instead. In the foreground Start blocks
// until mpv exits.
func (c *Controller) Start(ctx context.Context, req Request) error {
	if len(req.Targets) == 0 {
		return fmt.Errorf("nothing to play")
	}

	running := c.Probe(ctx) != StateNotRunning

	if !req.Background {
		return c.runForeground(req, !running)
	}

	if running {
		if err := c.loadInto(ctx, req); err != nil {
			return err
		}
	} else if err := c.spawnBackground(req); err != nil {
		return err
	}

	if !sleep(ctx, c.settleDelay) {
		return ctx.Err()
	}
	_, err := c.Status(ctx)
	return err
}

func (c *Controller) runForeground(req Request, withIPC bool) error {
	cmd := exec.Command(c.mpvPath, c.args(req, withIPC)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	c.logger.Debug().Strs("args", cmd.Args).Msg("Starting mpv in foreground")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: status %d", ErrPlayerExit, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %w", ErrPlayerExit, err)
	}
	return nil
}

func (c *Controller) spawnBackground(req Request) error {
	args := append([]string{"--no-terminal", "--really-quiet"}, c.args(req, true)...)

	cmd := exec.Command(c.mpvPath, args...)
	cmd.SysProcAttr = sysProcAttr()

	// No pipes: the player outlives us
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	c.logger.Debug().Strs("args", cmd.Args).Msg("Starting mpv in background")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	pid := cmd.Process.Pid
	if c.supervisor != nil {
		if err := c.supervisor.Record(pid); err != nil {
			c.logger.Warn().Err(err).Int("pid", pid).Msg("Failed to record player pid")
		}
	}

	// Reap the child if it exits while we are still around
	go func() { _ = cmd.Wait() }()

	c.logger.Info().Int("pid", pid).Msg("Started mpv")
	return nil
}

// loadInto replaces the running player's playlist with req.Targets.
func (c *Controller) loadInto(ctx context.Context, req Request) error {
	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	title := ""
	if len(req.Targets) == 1 {
		title = sanitizeOption(req.Title)
	}

	cmds := []mpv.Command{
		mpv.NewCommand("set_property", "force-media-title", title),
		mpv.NewCommand("change-list", "script-opts", "append",
			mpv.PlaylistTitleOpt+"="+sanitizeOption(req.PlaylistTitle)),
		mpv.NewCommand("set_property", "vid", videoTrack(req.AudioOnly)),
	}
	for i, target := range req.Targets {
		mode := "append"
		if i == 0 {
			mode = "replace"
		}
		cmds = append(cmds, mpv.NewCommand("loadfile", target, mode))
	}

	for i, res := range conn.Exchange(cmds) {
		if res.Err != nil {
			return fmt.Errorf("failed to load into running player: %w", res.Err)
		}
		if !res.Response.OK() {
			c.logger.Warn().Str("command", cmds[i].Name()).Str("status", res.Response.Error).Msg("Command rejected")
		}
	}

	c.logger.Info().Int("targets", len(req.Targets)).Msg("Loaded into running player")
	return nil
}

func videoTrack(audioOnly bool) string {
	if audioOnly {
		return "no"
	}
	return "auto"
}

func (c *Controller) args(req Request, withIPC bool) []string {
	var args []string
	if withIPC {
		args = append(args, "--input-ipc-server="+c.dialer.SocketPath)
	}
	if req.AudioOnly {
		args = append(args, "--no-video")
	}
	if len(req.Targets) == 1 && req.Title != "" {
		args = append(args, "--force-media-title="+sanitizeOption(req.Title))
	}
	if req.PlaylistTitle != "" {
		args = append(args, "--script-opts-append="+mpv.PlaylistTitleOpt+"="+sanitizeOption(req.PlaylistTitle))
	}
	args = append(args, c.extraArgs...)

	// Targets after "--" can never be read as options
	args = append(args, "--")
	return append(args, req.Targets...)
}

// sanitizeOption strips characters mpv treats as list separators.
func sanitizeOption(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}

// Pause toggles pause on the running player.
func (c *Controller) Pause(ctx context.Context) error {
	return c.fire(ctx, mpv.NewCommand("cycle", "pause"))
}

func (c *Controller) fire(ctx context.Context, cmd mpv.Command) error {
	err := mpv.Do(ctx, c.dialer, cmd)
	switch {
	case mpv.IsNotRunning(err):
		fmt.Fprintln(c.out, "mpv is not running")
	case err != nil:
		c.logger.Warn().Err(err).Str("command", cmd.Name()).Msg("Command not delivered")
		fmt.Fprintf(c.out, "%s: command not delivered\n", cmd.Name())
	}
	return nil
}

// Stop stops playback. When the command cannot be delivered the recorded
// player process is terminated instead.
func (c *Controller) Stop(ctx context.Context) error {
	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		c.forceKill(err)
		return nil
	}
	defer conn.Close()

	if err := conn.Send(mpv.NewCommand("stop")); err != nil {
		c.forceKill(err)
		return nil
	}

	// Delivered; the reply only keeps the socket drained
	if _, err := conn.ReadResponse(); err != nil {
		c.logger.Debug().Err(err).Msg("No reply to stop")
	}
	return nil
}

func (c *Controller) forceKill(cause error) {
	c.logger.Debug().Err(cause).Msg("Stop not delivered, falling back to signal")
	if c.supervisor != nil {
		c.supervisor.ForceKill()
	}
}

// Next skips to the next playlist entry.
func (c *Controller) Next(ctx context.Context) (Transition, error) {
	return c.skip(ctx, mpv.NewCommand("playlist-next", "force"))
}

// Previous goes back to the previous playlist entry.
func (c *Controller) Previous(ctx context.Context) (Transition, error) {
	return c.skip(ctx, mpv.NewCommand("playlist-prev", "force"))
}

// skip sends cmd, polls playlist-pos until it moves, the attempts run out
// or ctx ends, then always renders a snapshot. An unchanged position is
// reported but is not an error.
func (c *Controller) skip(ctx context.Context, cmd mpv.Command) (Transition, error) {
	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		fmt.Fprintln(c.out, "mpv is not running")
		return Transition{}, nil
	}
	defer conn.Close()

	t := Transition{Before: playlistPos(conn)}
	t.After = t.Before

	delivered := true
	if err := conn.SendAndForget(cmd); err != nil {
		delivered = false
		c.logger.Warn().Err(err).Str("command", cmd.Name()).Msg("Command not delivered")
		fmt.Fprintf(c.out, "%s: command not delivered\n", cmd.Name())
	} else {
		for attempt := 0; attempt < c.confirmAttempts; attempt++ {
			if !sleep(ctx, c.confirmDelay) {
				c.logger.Debug().Int("attempt", attempt).Msg("Confirmation cut short")
				break
			}
			t.After = playlistPos(conn)
			if !sameOption(t.Before, t.After) {
				t.Changed = true
				break
			}
		}
	}

	c.logger.Debug().
		Str("command", cmd.Name()).
		Bool("changed", t.Changed).
		Msg("Playlist transition")

	if !t.Changed {
		fmt.Fprintln(c.out, "playlist position unchanged")
	}

	RenderStatus(c.out, c.finalSnapshot(ctx, conn, delivered))
	return t, nil
}

// finalSnapshot reads the closing snapshot. After a failed command the
// connection may still carry its reply, so a fresh one is dialed.
func (c *Controller) finalSnapshot(ctx context.Context, conn *mpv.Conn, reuse bool) *mpv.Snapshot {
	if reuse {
		return conn.Status()
	}
	snap, err := mpv.ReadStatus(context.WithoutCancel(ctx), c.dialer)
	if err != nil {
		c.logger.Debug().Err(err).Msg("No snapshot after failed command")
		return nil
	}
	return snap
}

func playlistPos(conn *mpv.Conn) mo.Option[int] {
	res := conn.Exchange([]mpv.Command{mpv.GetProperty("playlist-pos")})[0]
	var pos int
	if res.Err != nil || !res.Response.Decode(&pos) {
		return mo.None[int]()
	}
	return mo.Some(pos)
}

func sameOption(a, b mo.Option[int]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	return aok == bok && av == bv
}

// Status renders one snapshot, or reports that the player is not running.
func (c *Controller) Status(ctx context.Context) (State, error) {
	snap, state := c.Snapshot(ctx)
	if state == StateNotRunning {
		fmt.Fprintln(c.out, "mpv is not running")
		return state, nil
	}
	RenderStatus(c.out, snap)
	return state, nil
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

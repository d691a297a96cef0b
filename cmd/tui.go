package cmd

import (
	"context"
	"io"

	"github.com/nepochemu/ytm/internal/player"
	"github.com/nepochemu/ytm/internal/tui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Live view of the background player",
	Long: `Display a terminal UI showing what the background player is playing,
refreshed continuously.

Keys:
  space  toggle pause
  n / p  next / previous playlist entry
  s      stop
  q      quit (the player keeps running)`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Anything written to the terminal would scribble over the screen
	if logFile == "" {
		logger = zerolog.Nop()
	}
	controller := newController(cfg, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan player.Update)
	poller := player.NewPoller(controller, cfg.TUI.RefreshRate, logger)
	go func() {
		_ = poller.Run(ctx, updates)
	}()

	app := tui.New(tui.Config{
		RefreshRate: cfg.TUI.RefreshRate,
		SocketPath:  cfg.MPV.Socket,
	}, controller, logger)

	return app.Run(ctx, updates)
}

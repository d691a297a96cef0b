package cmd

import (
	"context"
	"os"
	"time"

	"github.com/nepochemu/ytm/internal/config"
	"github.com/nepochemu/ytm/internal/player"
	"github.com/spf13/cobra"
)

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Toggle pause on the background player",
	Long:  `Toggle pause on the player started with --background. Does nothing if mpv is not running.`,
	Args:  cobra.NoArgs,
	RunE: withController(func(ctx context.Context, c *player.Controller) error {
		return c.Pause(ctx)
	}),
}

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background player",
	Long: `Stop playback on the background player.

If the control socket does not answer, the recorded mpv process is
terminated instead.`,
	Args: cobra.NoArgs,
	RunE: withController(func(ctx context.Context, c *player.Controller) error {
		return c.Stop(ctx)
	}),
}

// nextCmd represents the next command
var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next playlist entry",
	Long: `Skip to the next playlist entry and show what is playing.

On the last entry of a playlist the position does not change; the
current status is shown anyway.`,
	Args: cobra.NoArgs,
	RunE: withController(func(ctx context.Context, c *player.Controller) error {
		_, err := c.Next(ctx)
		return err
	}),
}

// prevCmd represents the prev command
var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go back to the previous playlist entry",
	Long:  `Go back to the previous playlist entry and show what is playing.`,
	Args:  cobra.NoArgs,
	RunE: withController(func(ctx context.Context, c *player.Controller) error {
		_, err := c.Previous(ctx)
		return err
	}),
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
}

// withController builds a controller from config and runs fn with a
// bounded context.
func withController(fn func(context.Context, *player.Controller) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout(cfg.Control))
		defer cancel()

		return fn(ctx, newController(cfg, os.Stdout))
	}
}

// commandTimeout leaves room for the whole confirmation budget on top of
// the base allowance for dialing and reading.
func commandTimeout(cc config.ControlConfig) time.Duration {
	attempts := cc.ConfirmAttempts
	if attempts <= 0 {
		attempts = player.DefaultConfirmAttempts
	}
	delay := cc.ConfirmDelay
	if delay <= 0 {
		delay = player.DefaultConfirmDelay
	}
	return 10*time.Second + time.Duration(attempts)*delay
}

package cmd

import (
	"fmt"
	"os"
	"time"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/nepochemu/ytm/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	logFile  string
	logLevel string

	// logger is configured before any command runs
	logger = zerolog.Nop()
)

// rootCmd searches and plays when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "ytm [flags] <query...>",
	Short: "Search YouTube and play the result in mpv",
	Long: `ytm searches YouTube, lets you pick a result with fzf, and plays it in mpv.

With --background the player is detached and can be controlled afterwards
with the pause, stop, next, prev and status commands, or interactively
with 'ytm tui'.

Configuration lives in ~/.config/ytm/config.yaml. Every key can be
overridden with a YTM_ environment variable, e.g. YTM_MPV_SOCKET.`,
	Example: `  ytm lofi hip hop
  ytm -b -n "radiohead in rainbows"
  ytm next`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	Args:    cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = setupLogger(logFile, logLevel)
	},
	RunE:          runSearch,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.Flags().BoolP("audio-only", "n", false, "Play audio only (no video window)")
	rootCmd.Flags().BoolP("background", "b", false, "Detach the player and return immediately")
	rootCmd.Flags().IntP("results", "r", 0, "Number of search results (overrides config)")
}

// loadConfig wraps config.Load with the error message every command uses
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nepochemu/ytm/internal/mpv"
	"github.com/nepochemu/ytm/internal/player"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the background player is playing",
	Long: `Query the background player and show the current track.

With --line the output is a single line built from a Go template, which
suits tmux and other status bars. The template comes from output_format in
~/.config/ytm/config.yaml unless --format is given. Available fields:
.Name, .Elapsed, .Total, .Progress, .Track, .Collection

Exit codes in line mode:
  0 - Something is playing
  1 - Nothing loaded or mpv not running`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolP("line", "l", false, "Single-line output for status bars")
	statusCmd.Flags().StringP("format", "f", "", "Output format template (implies --line, overrides config)")
	statusCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
	statusCmd.Flags().Bool("marquee", false, "Enable marquee scrolling for long text (overrides config)")
	statusCmd.Flags().BoolP("verbose", "v", false, "Also show the socket and recorded player pid")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	controller := newController(cfg, os.Stdout)

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		describePlayer(os.Stdout, cfg.MPV.Socket, newSupervisor(cfg))
	}

	format, _ := cmd.Flags().GetString("format")
	line, _ := cmd.Flags().GetBool("line")
	if format == "" && !line {
		_, err := controller.Status(ctx)
		return err
	}
	if format == "" {
		format = cfg.OutputFormat
	}

	snap, state := controller.Snapshot(ctx)
	if state != player.StatePlaying {
		os.Exit(1)
		return nil
	}

	output, err := formatSnapshot(snap, format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = cfg.OutputWidth
	}
	marquee := cfg.MarqueeEnabled
	if cmd.Flags().Changed("marquee") {
		marquee, _ = cmd.Flags().GetBool("marquee")
	}

	if width > 0 {
		if marquee {
			output = marqueeText(output, width, cfg.MarqueeSpeed, cfg.MarqueeSeparator, time.Now())
		} else {
			output = padToWidth(output, width)
		}
	}

	fmt.Println(output)
	return nil
}

// formatSnapshot applies the template to the snapshot
func formatSnapshot(snap *mpv.Snapshot, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, snap); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth fits text to exactly width display columns, truncating with
// "..." or padding with spaces. width <= 0 leaves text unchanged.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if runewidth.StringWidth(text) > width {
		if width <= 3 {
			return runewidth.Truncate("...", width, "")
		}
		text = runewidth.Truncate(text, width, "...")
	}
	return runewidth.FillRight(text, width)
}

// extractWindow returns exactly width display columns of text starting at
// column start. A wide rune straddling either edge is replaced by padding.
func extractWindow(text string, start, width int) string {
	if width <= 0 {
		return ""
	}

	var sb strings.Builder
	col, used := 0, 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if col < start {
			col += rw
			continue
		}
		if used+rw > width {
			break
		}
		sb.WriteRune(r)
		used += rw
	}

	return sb.String() + strings.Repeat(" ", width-used)
}

// marqueeText scrolls text that does not fit through a width-column window.
// The offset advances speed columns per second of now, so repeated calls
// from a status bar step through the text. Text that fits is padded.
func marqueeText(text string, width, speed int, separator string, now time.Time) string {
	if width <= 0 {
		return text
	}
	if runewidth.StringWidth(text) <= width {
		return padToWidth(text, width)
	}
	if speed <= 0 {
		speed = 1
	}

	loop := text + separator
	loopWidth := runewidth.StringWidth(loop)
	offset := int(now.Unix()*int64(speed)) % loopWidth

	return extractWindow(loop+loop, offset, width)
}

// describePlayer prints where the background player is reached and which
// process the supervisor would terminate.
func describePlayer(w io.Writer, socket string, sup *mpv.Supervisor) {
	pid := "none"
	if p, ok := sup.PID(); ok {
		pid = strconv.Itoa(p)
	}
	fmt.Fprintf(w, "socket:   %s\npid file: %s\npid:      %s\n", socket, sup.PIDFile(), pid)
}

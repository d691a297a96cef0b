// Package picker hands a list of lines to fzf and reports which one the
// user chose. Lines go through stdin as plain text; no preview commands or
// shell-evaluated strings are passed.
package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoSelection means the user closed the picker without choosing. It is
// not a failure; callers print a notice and stop.
var ErrNoSelection = errors.New("no selection made")

// fzf exits with 130 when interrupted with Esc or Ctrl-C
const exitInterrupted = 130

// Picker runs fzf.
type Picker struct {
	Path   string
	Stderr io.Writer
}

// New returns a Picker for the fzf binary at path ("fzf" when empty).
func New(path string) *Picker {
	if path == "" {
		path = "fzf"
	}
	return &Picker{Path: path, Stderr: os.Stderr}
}

// Select shows items under prompt, a bare name that gets the " > " suffix,
// and returns the index of the chosen one.
func (p *Picker) Select(ctx context.Context, prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	fzfPath, err := exec.LookPath(p.Path)
	if err != nil {
		return -1, fmt.Errorf("fzf not found in PATH: %w", err)
	}

	// Prefix each line with its index so the choice maps back reliably
	var input strings.Builder
	for i, item := range items {
		fmt.Fprintf(&input, "%d\t%s\n", i, strings.ReplaceAll(item, "\n", " "))
	}

	cmd := exec.CommandContext(ctx, fzfPath,
		"--prompt", prompt+" > ",
		"--height", "40%",
		"--reverse",
		"--with-nth", "2..",
		"--delimiter", "\t",
		"--no-multi",
		"--cycle",
	)

	cmd.Stdin = strings.NewReader(input.String())
	cmd.Stderr = p.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && (exitErr.ExitCode() == exitInterrupted || exitErr.ExitCode() == 1) {
			return -1, ErrNoSelection
		}
		return -1, fmt.Errorf("fzf failed: %w", err)
	}

	return parseSelection(stdout.String(), len(items))
}

// parseSelection extracts the index from fzf's output line.
func parseSelection(output string, count int) (int, error) {
	selected := strings.TrimSpace(output)
	if selected == "" {
		return -1, ErrNoSelection
	}

	field, _, _ := strings.Cut(selected, "\t")
	idx, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return -1, fmt.Errorf("parsing selection index: %w", err)
	}

	if idx < 0 || idx >= count {
		return -1, fmt.Errorf("selection index %d out of range", idx)
	}

	return idx, nil
}

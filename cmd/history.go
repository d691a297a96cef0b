package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/nepochemu/ytm/internal/history"
	"github.com/nepochemu/ytm/internal/picker"
	"github.com/nepochemu/ytm/internal/player"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [filter...]",
	Short: "List or replay recent plays",
	Long: `List recently played videos and playlists, newest first.

A filter narrows the list to titles that fuzzily match it. With --play the
list is shown in fzf and the chosen entry is played again with the same
audio-only setting it was first played with.`,
	Args: cobra.ArbitraryArgs,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune <age>",
	Short: "Forget plays older than age (e.g. 720h)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().IntP("limit", "L", 20, "Number of entries to show (0 = all)")
	historyCmd.Flags().BoolP("play", "p", false, "Pick an entry and play it")
	historyCmd.Flags().BoolP("background", "b", false, "Detach the player when replaying")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := h.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if filter := strings.Join(args, " "); filter != "" {
		entries = lo.Filter(entries, func(e history.Entry, _ int) bool {
			return fuzzy.MatchNormalizedFold(filter, e.Title)
		})
	}
	if len(entries) == 0 {
		fmt.Println("No matching plays.")
		return nil
	}

	labels := lo.Map(entries, func(e history.Entry, _ int) string { return e.Label() })

	if replay, _ := cmd.Flags().GetBool("play"); !replay {
		for _, l := range labels {
			fmt.Println(l)
		}
		total, err := h.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Println(historySummary(len(entries), total))
		return nil
	}

	idx, err := picker.New(cfg.PickerPath).Select(ctx, "history", labels)
	if errors.Is(err, picker.ErrNoSelection) {
		fmt.Println("No selection made.")
		return nil
	}
	if err != nil {
		return err
	}

	e := entries[idx]
	background, _ := cmd.Flags().GetBool("background")
	req := player.Request{
		Targets:    e.URLs,
		Title:      e.Title,
		AudioOnly:  e.AudioOnly,
		Background: background,
	}
	if e.Kind == "playlist" {
		req.PlaylistTitle = e.Title
	}

	return play(ctx, cfg, req, e.Kind)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	age, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid age %q: %w", args[0], err)
	}

	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	n, err := h.Cleanup(context.Background(), age)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d entries.\n", n)
	return nil
}

func historySummary(shown, total int) string {
	if shown == total {
		return fmt.Sprintf("%d plays.", total)
	}
	return fmt.Sprintf("Showing %d of %d plays.", shown, total)
}

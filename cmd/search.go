package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/nepochemu/ytm/internal/config"
	"github.com/nepochemu/ytm/internal/history"
	"github.com/nepochemu/ytm/internal/picker"
	"github.com/nepochemu/ytm/internal/player"
	"github.com/nepochemu/ytm/pkg/youtube"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return cmd.Help()
	}

	// mpv gets Ctrl-C in the foreground; we only need to outlive it
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if n, _ := cmd.Flags().GetInt("results"); n > 0 {
		cfg.MaxResults = n
	}
	audioOnly, _ := cmd.Flags().GetBool("audio-only")
	background, _ := cmd.Flags().GetBool("background")

	client, err := newSearchClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := client.Search(ctx, query, cfg.MaxResults)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(items) == 0 {
		fmt.Println("No results.")
		return nil
	}

	labels := lo.Map(items, func(item youtube.Item, _ int) string { return item.Label() })
	idx, err := picker.New(cfg.PickerPath).Select(ctx, "ytm", labels)
	if errors.Is(err, picker.ErrNoSelection) {
		fmt.Println("No selection made.")
		return nil
	}
	if err != nil {
		return err
	}

	req, err := requestFor(ctx, client.Client, items[idx])
	if err != nil {
		return err
	}
	if len(req.Targets) == 0 {
		fmt.Println("Playlist is empty.")
		return nil
	}
	req.AudioOnly = audioOnly
	req.Background = background

	return play(ctx, cfg, req, string(items[idx].Kind))
}

// requestFor turns a picked item into play targets, expanding playlists
// into their videos.
func requestFor(ctx context.Context, client *youtube.Client, item youtube.Item) (player.Request, error) {
	req := player.Request{Title: item.Title}

	if item.Kind != youtube.KindPlaylist {
		req.Targets = []string{item.URL()}
		return req, nil
	}

	entries, err := client.PlaylistItems(ctx, item.ID)
	if err != nil {
		return req, fmt.Errorf("failed to load playlist: %w", err)
	}
	req.Targets = youtube.URLs(entries)
	req.PlaylistTitle = item.Title
	return req, nil
}

// play records req in the history and hands it to the controller.
func play(ctx context.Context, cfg *config.Config, req player.Request, kind string) error {
	if h, err := openHistory(); err != nil {
		logger.Warn().Err(err).Msg("History unavailable")
	} else {
		if _, err := h.Add(ctx, history.Entry{
			Title:     req.Title,
			Kind:      kind,
			URLs:      req.Targets,
			AudioOnly: req.AudioOnly,
		}); err != nil {
			logger.Warn().Err(err).Msg("Failed to record play")
		}
		_ = h.Close()
	}

	return newController(cfg, os.Stdout).Start(ctx, req)
}

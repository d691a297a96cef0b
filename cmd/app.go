package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/nepochemu/ytm/internal/cache"
	"github.com/nepochemu/ytm/internal/config"
	"github.com/nepochemu/ytm/internal/credential"
	"github.com/nepochemu/ytm/internal/history"
	"github.com/nepochemu/ytm/internal/mpv"
	"github.com/nepochemu/ytm/internal/player"
	"github.com/nepochemu/ytm/pkg/youtube"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

// youtubeLogger routes client debug output into zerolog
type youtubeLogger struct {
	logger zerolog.Logger
}

func (l youtubeLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func newDialer(cfg *config.Config) mpv.Dialer {
	return mpv.Dialer{
		SocketPath:  cfg.MPV.Socket,
		DialTimeout: cfg.MPV.DialTimeout,
		ReadTimeout: cfg.MPV.ReadTimeout,
		Logger:      logger,
	}
}

func newSupervisor(cfg *config.Config) *mpv.Supervisor {
	return mpv.NewSupervisor(afero.NewOsFs(), cfg.MPV.PIDFile, logger)
}

func newController(cfg *config.Config, out io.Writer) *player.Controller {
	return player.New(player.Options{
		MPVPath:         cfg.MPV.Path,
		ExtraArgs:       cfg.MPV.ExtraArgs,
		Dialer:          newDialer(cfg),
		Supervisor:      newSupervisor(cfg),
		Out:             out,
		SettleDelay:     cfg.MPV.SettleDelay,
		ConfirmAttempts: cfg.Control.ConfirmAttempts,
		ConfirmDelay:    cfg.Control.ConfirmDelay,
		Logger:          logger,
	})
}

// searchClient bundles the API client with the cache it reads through.
type searchClient struct {
	*youtube.Client
	cache *cache.Cache
}

func (s *searchClient) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

func newSearchClient(ctx context.Context, cfg *config.Config) (*searchClient, error) {
	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	sc := &searchClient{}

	// A broken cache only costs quota, so fall back to uncached requests
	c, err := cache.New(filepath.Join(config.GetCacheDir(), "cache.db"), cfg.CacheTTL)
	if err != nil {
		logger.Warn().Err(err).Msg("Search cache unavailable")
	} else {
		if n, err := c.Cleanup(ctx); err != nil {
			logger.Debug().Err(err).Msg("Failed to prune cache")
		} else if n > 0 {
			logger.Debug().Int64("pruned", n).Msg("Pruned expired cache entries")
		}
		sc.cache = c
	}

	ytCfg := youtube.Config{
		APIKey: apiKey,
		Logger: youtubeLogger{logger: logger.With().Str("component", "youtube").Logger()},
	}
	if sc.cache != nil {
		ytCfg.Cache = sc.cache
	}

	sc.Client, err = youtube.NewClient(ytCfg)
	if err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	return sc, nil
}

// resolveAPIKey reads the stored key, prompting for one on a terminal.
func resolveAPIKey(cfg *config.Config) (string, error) {
	store, err := credential.ForConfig(cfg)
	if err != nil {
		return "", err
	}

	key, err := store.Get()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, credential.ErrNotFound) {
		return "", err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no YouTube API key configured. Run 'ytm api <key>' first")
	}

	key, err = promptAPIKey()
	if err != nil {
		return "", err
	}
	if err := store.Set(key); err != nil {
		return "", fmt.Errorf("failed to store API key: %w", err)
	}
	fmt.Println("API key saved.")
	return key, nil
}

func promptAPIKey() (string, error) {
	var key string
	prompt := &survey.Password{
		Message: "YouTube Data API key:",
		Help:    "Create one at https://console.cloud.google.com/apis/credentials",
	}
	if err := survey.AskOne(prompt, &key, survey.WithValidator(survey.Required)); err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(key), nil
}

func openHistory() (*history.History, error) {
	h, err := history.Open(filepath.Join(config.GetDataDir(), "history.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return h, nil
}

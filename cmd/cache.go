package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nepochemu/ytm/internal/cache"
	"github.com/nepochemu/ytm/internal/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the search result cache",
	Long: `Search results are cached for cache_ttl (default 5h) to save API quota.
Without a subcommand, lists the cached requests that are still valid.`,
	Args: cobra.NoArgs,
	RunE: runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached search result",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCache() (*cache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := cache.New(filepath.Join(config.GetCacheDir(), "cache.db"), cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return c, nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	keys, err := c.Keys(context.Background())
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.Clear(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d cached results.\n", n)
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command and its subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk article cache",
		Long: `Cache inspects and cleans the article cache.

Fetched articles are kept in an SQLite database in the XDG cache directory
(~/.cache/wikirace on Linux) so that revisiting a page does not hit the
network. Only article content is stored; game progress never is.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache size and age",
		Args:  cobra.NoArgs,
		RunE:  runCacheStatsCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete articles older than the cache TTL",
		Args:  cobra.NoArgs,
		RunE:  runCachePruneCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached article",
		Args:  cobra.NoArgs,
		RunE:  runCacheClearCmd,
	})

	return cmd
}

// runCacheStatsCmd executes the cache stats command.
func runCacheStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cache, err := openCache(cfg, false)
	if isMissingCache(err) {
		fmt.Fprintf(out, "Cache is empty (%s)\n", cfg.CacheDir)
		return nil
	}
	if err != nil {
		return err
	}
	defer cache.Close()

	stats, err := cache.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Path:      %s\n", cache.Path())
	fmt.Fprintf(out, "Articles:  %d (%d expired)\n", stats.Entries, stats.Expired)
	fmt.Fprintf(out, "Markup:    %s\n", formatBytes(stats.MarkupBytes))
	fmt.Fprintf(out, "TTL:       %s\n", formatTTL(cfg.CacheTTL))
	if stats.Entries > 0 {
		fmt.Fprintf(out, "Oldest:    %s\n", stats.Oldest.Format(time.DateTime))
		fmt.Fprintf(out, "Newest:    %s\n", stats.Newest.Format(time.DateTime))
	}
	return nil
}

// runCachePruneCmd executes the cache prune command.
func runCachePruneCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cache, err := openCache(cfg, false)
	if isMissingCache(err) {
		fmt.Fprintln(out, "Cache is empty")
		return nil
	}
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Prune(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d expired articles\n", n)
	return nil
}

// runCacheClearCmd executes the cache clear command.
func runCacheClearCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cache, err := openCache(cfg, false)
	if isMissingCache(err) {
		fmt.Fprintln(out, "Cache is empty")
		return nil
	}
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Clear(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d articles\n", n)
	return nil
}

// formatBytes formats a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatTTL formats the cache TTL, where zero means no expiry.
func formatTTL(d time.Duration) string {
	if d == 0 {
		return "never expires"
	}
	return d.String()
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikirace/internal/config"
	"github.com/nao1215/wikirace/internal/database"
	wlog "github.com/nao1215/wikirace/internal/log"
	"github.com/nao1215/wikirace/internal/wiki"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config file path from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig builds the configuration from the config file, the
// environment and the global flags.
// If the user explicitly specified a config file path, a missing file is
// an error. If no path is specified, defaults are used when no file is found.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(getConfigFlag(cmd))
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newStderrLogger creates the logger of the non-interactive commands.
func newStderrLogger(cfg *config.Config) *slog.Logger {
	return wlog.NewLogger(os.Stderr, cfg.Verbose)
}

// openLogFile opens the log file of the interactive game for appending,
// creating its directory if needed.
func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// nopCloser is returned when there is nothing to close.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newGateway creates the content gateway for cfg: the API client, wrapped
// in the article cache when caching is enabled.
// A cache that cannot be opened is logged and skipped; the game works
// without it.
func newGateway(cfg *config.Config, logger *slog.Logger) (wiki.Gateway, io.Closer) {
	client := wiki.NewClient(
		wiki.WithEndpoint(cfg.APIURL),
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithLogger(logger),
	)

	if !cfg.CacheEnabled {
		return client, nopCloser{}
	}

	cache, err := openCache(cfg, true)
	if err != nil {
		logger.Warn("article cache disabled", "dir", cfg.CacheDir, "error", err)
		return client, nopCloser{}
	}
	logger.Debug("article cache opened", "path", cache.Path())

	return wiki.NewCachedGateway(client, cache, logger), cache
}

// openCache opens the article cache configured in cfg.
func openCache(cfg *config.Config, create bool) (*database.ArticleCache, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create
	opts.TTL = cfg.CacheTTL
	return database.Open(cfg.CacheDir, opts)
}

// isMissingCache reports whether err means the cache was never created.
func isMissingCache(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

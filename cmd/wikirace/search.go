package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/nao1215/wikirace/internal/title"
	"github.com/nao1215/wikirace/internal/wiki"
)

// rankedTitle is a search result with its edit distance to the query.
type rankedTitle struct {
	Title    string
	Distance int
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search article titles",
		Long: `Search looks up article titles on the content site. Results closest to
the query by spelling are listed first, which helps when writing your own
challenges.

Examples:
  wikirace search "albert einstein"
  wikirace search banana --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().IntP("limit", "l", wiki.DefaultSearchLimit, "Maximum number of results")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	logger := newStderrLogger(cfg)
	cfg.CacheEnabled = false // search results are not articles
	gateway, closer := newGateway(cfg, logger)
	defer closer.Close()

	query := strings.Join(args, " ")
	titles, err := gateway.SearchArticles(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(titles) == 0 {
		fmt.Fprintf(out, "No articles found for %q\n", query)
		return nil
	}

	for i, r := range rankTitles(query, titles) {
		fmt.Fprintf(out, "%3d. %s\n", i+1, r.Title)
	}
	return nil
}

// rankTitles orders titles by Levenshtein distance between their
// normalized form and the normalized query. Ties keep the order the
// search API returned, which is its relevance order.
func rankTitles(query string, titles []string) []rankedTitle {
	q := title.Normalize(query)

	ranked := make([]rankedTitle, len(titles))
	for i, t := range titles {
		ranked[i] = rankedTitle{
			Title:    t,
			Distance: levenshtein.ComputeDistance(q, title.Normalize(t)),
		}
	}

	slices.SortStableFunc(ranked, func(a, b rankedTitle) int {
		return a.Distance - b.Distance
	})
	return ranked
}

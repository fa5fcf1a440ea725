// Package main provides the entry point for the wikirace CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikirace.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikirace",
		Short: "Race between encyclopedia articles by following links",
		Long: `wikirace is a terminal game played on Wikipedia.

Each challenge names a start article and a destination article. You begin
on the start article and may only move by following links inside the page.
The timer runs while pages load and while you read; it stops when you reach
the destination.

Articles are fetched from the MediaWiki API and cached on disk so that
revisiting a page is instant.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .wikirace in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewChallengesCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

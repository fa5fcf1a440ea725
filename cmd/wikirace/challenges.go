package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// challengeEntry is the JSON form of a numbered challenge.
type challengeEntry struct {
	Number int    `json:"number"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// NewChallengesCmd creates the challenges command.
func NewChallengesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenges",
		Short: "List the available challenges",
		Long: `Challenges lists every challenge with its number. Pass the number to
'wikirace play --challenge N' to play it.

The list is the built-in catalog unless the configuration file defines its
own 'challenges'.`,
		Args: cobra.NoArgs,
		RunE: runChallengesCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

// runChallengesCmd executes the challenges command.
func runChallengesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	all := catalog.All()
	out := cmd.OutOrStdout()

	if asJSON {
		entries := make([]challengeEntry, len(all))
		for i, ch := range all {
			entries[i] = challengeEntry{Number: i + 1, Start: ch.Start, End: ch.End}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	rows := make([][]string, len(all))
	for i, ch := range all {
		rows[i] = []string{strconv.Itoa(i + 1), ch.Start, ch.End}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Start", "Destination").
		Rows(rows...)

	fmt.Fprintln(out, t.String())
	fmt.Fprintf(out, "%d challenges. Play one with: wikirace play --challenge N\n", len(all))
	return nil
}

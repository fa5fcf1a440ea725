package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikirace/internal/config"
)

// configTemplate is the commented configuration written by init. Every
// setting in it is commented out, so a fresh file changes nothing.
//
//go:embed templates/wikirace.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented configuration file",
		Long: `Init writes a commented .wikirace configuration file. Uncomment the
settings you want to change: the wiki to play on, fetch timeout, the
article cache, or your own list of challenges.

wikirace looks for .wikirace in the current directory, then in your home
directory, unless --config names a file.

Examples:
  # Create .wikirace in the current directory
  wikirace init

  # Create it in your home directory
  wikirace init -o ~/.wikirace

  # Print the template instead of writing a file
  wikirace init --stdout`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite an existing configuration file")
	cmd.Flags().Bool("stdout", false,
		"Print the template to stdout instead of writing a file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	if toStdout {
		_, err := cmd.OutOrStdout().Write(configTemplate)
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if info, err := os.Stat(outputPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", outputPath)
		}
		if !force {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	if err := writeFileAtomic(outputPath, configTemplate); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "Uncomment the settings you want to change, then check them with:")
	fmt.Fprintf(out, "  wikirace --config %s challenges\n", outputPath)
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so an interrupted write never leaves a truncated file.
// Missing parent directories are created.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nao1215/wikirace/internal/challenge"
	"github.com/nao1215/wikirace/internal/config"
	wlog "github.com/nao1215/wikirace/internal/log"
	"github.com/nao1215/wikirace/internal/report"
	"github.com/nao1215/wikirace/internal/session"
	"github.com/nao1215/wikirace/internal/tui"
)

// Report format names accepted by --report.
const (
	reportText     = "text"
	reportJSON     = "json"
	reportMarkdown = "markdown"
)

// errUnknownReportFormat is returned for an unsupported --report value.
var errUnknownReportFormat = errors.New("unknown report format")

// playOptions are the flags of the play command that are not part of
// config.Config.
type playOptions struct {
	// challenge is the 1-based catalog index; 0 picks at random.
	challenge int

	// seed seeds challenge selection; 0 seeds from the clock.
	seed uint64
}

// NewPlayCmd creates the play command.
func NewPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a challenge in the terminal",
		Long: `Play starts the interactive game on a random challenge, or on the
challenge selected with --challenge (see 'wikirace challenges').

Keys:
  ↑/↓      select a link         enter   follow the link
  /        filter links          tab     switch to the outline
  space    expand a section      r       new random challenge
  R        retry a failed load   c       cancel a failed load
  s        copy the share text   q       quit

When you reach the destination and quit, the result is printed.

Examples:
  # Play a random challenge
  wikirace play

  # Play challenge number 3
  wikirace play --challenge 3

  # Print the result as Markdown into a file
  wikirace play --markdown -o result.md`,
		Args: cobra.NoArgs,
		RunE: runPlayCmd,
	}

	cmd.Flags().IntP("challenge", "n", 0,
		"Challenge number from 'wikirace challenges' (default: random)")
	cmd.Flags().Uint64("seed", 0,
		"Seed for random challenge selection (default: random)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each article fetch")
	cmd.Flags().Bool("no-cache", false,
		"Do not read or write the article cache")

	// Report flags
	cmd.Flags().StringP("report", "r", reportText,
		"Result format: text, json or markdown")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON result (same as --report json)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown result (same as --report markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write result to specified file path (creates directories if needed)")

	return cmd
}

// runPlayCmd executes the play command.
func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, opts, err := buildPlayConfig(cmd)
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

	chosen, err := pickChallenge(catalog, opts.challenge)
	if err != nil {
		return err
	}

	// The terminal belongs to the game, so logs go to a file.
	logger := wlog.Discard()
	if logFile, err := openLogFile(cfg.LogFile); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
	} else {
		defer logFile.Close()
		logger = wlog.NewJSONLogger(logFile, cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := play(ctx, cfg, opts, catalog, chosen, logger)
	if err != nil {
		return err
	}

	if !snap.Won() {
		if snap.PageCount > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Gave up after %d pages and %s. Try again!\n",
				snap.PageCount, snap.FormatElapsed())
		}
		return nil
	}

	return outputReport(cfg, snap, cmd.OutOrStdout())
}

// buildPlayConfig creates a Config from the configuration sources and the
// play command flags.
func buildPlayConfig(cmd *cobra.Command) (*config.Config, playOptions, error) {
	var opts playOptions

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, opts, err
	}

	opts.challenge, err = cmd.Flags().GetInt("challenge")
	if err != nil {
		return nil, opts, err
	}

	opts.seed, err = cmd.Flags().GetUint64("seed")
	if err != nil {
		return nil, opts, err
	}

	if cmd.Flags().Changed("timeout") {
		cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, opts, err
		}
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, opts, err
	}
	if noCache {
		cfg.CacheEnabled = false
	}

	format, err := cmd.Flags().GetString("report")
	if err != nil {
		return nil, opts, err
	}
	switch format {
	case reportText:
	case reportJSON:
		cfg.JSONReport = true
	case reportMarkdown:
		cfg.MarkdownReport = true
	default:
		return nil, opts, fmt.Errorf("%w: %q (want text, json or markdown)", errUnknownReportFormat, format)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, opts, err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, opts, err
	}
	cfg.JSONReport = cfg.JSONReport || asJSON
	cfg.MarkdownReport = cfg.MarkdownReport || asMarkdown

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, opts, err
	}

	return cfg, opts, nil
}

// pickChallenge returns the challenge with the given 1-based number, or
// nil when number is 0 and the controller should pick at random.
func pickChallenge(catalog *challenge.Catalog, number int) (*challenge.Challenge, error) {
	if number == 0 {
		return nil, nil
	}
	ch, ok := catalog.At(number - 1)
	if !ok {
		return nil, fmt.Errorf("challenge %d does not exist (choose 1-%d)", number, catalog.Len())
	}
	return &ch, nil
}

// newRand returns the challenge picker for seed.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // game randomness
	}
	return rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // game randomness
}

// play runs the controller and the terminal UI until the player quits,
// and returns the final state of the session.
func play(
	ctx context.Context,
	cfg *config.Config,
	opts playOptions,
	catalog *challenge.Catalog,
	chosen *challenge.Challenge,
	logger *slog.Logger,
) (session.Snapshot, error) {
	gateway, closer := newGateway(cfg, logger)
	defer closer.Close()

	ctrl := session.NewController(gateway, catalog,
		session.WithFetchTimeout(cfg.FetchTimeout),
		session.WithTickInterval(cfg.TickInterval),
		session.WithRand(newRand(opts.seed)),
		session.WithLogger(logger),
		session.WithSessionOptions(session.WithClassifier(cfg.Classifier())),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- ctrl.Run(runCtx)
	}()

	if chosen != nil {
		ctrl.StartChallenge(*chosen)
	} else {
		ctrl.Start()
	}

	program := tea.NewProgram(tui.New(runCtx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-runErr
		return session.Snapshot{}, fmt.Errorf("terminal UI failed: %w", err)
	}

	snapCtx, snapCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer snapCancel()
	snap, snapErr := ctrl.Snapshot(snapCtx)

	cancel()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("controller stopped with error", "error", err)
	}
	if snapErr != nil {
		return session.Snapshot{}, fmt.Errorf("failed to read final state: %w", snapErr)
	}

	logger.Info("game finished",
		"session", snap.ID,
		"phase", snap.Phase.String(),
		"pages", snap.PageCount,
		"elapsed", snap.FormatElapsed(),
	)
	return snap, nil
}

// outputReport writes the result of a won session in the configured
// format, to ReportFile or to stdout. When a file is used, the share line
// is printed to stdout as well.
func outputReport(cfg *config.Config, snap session.Snapshot, stdout io.Writer) error {
	result, err := report.NewResult(snap, time.Now())
	if err != nil {
		return err
	}

	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	// A report written to a file still leaves the share line on the terminal.
	if output != stdout {
		w = report.NewMultiWriter(w, report.NewShareWriter(stdout))
	}

	if _, err := w.Write(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

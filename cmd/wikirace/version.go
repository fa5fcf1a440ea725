package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// develVersion is reported when neither ldflags nor the module build info
// carries a version, as in `go run`.
const develVersion = "(devel)"

// buildInfo describes the running binary.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Modified  bool   `json:"modified"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// currentBuild reads the build information of the running binary.
func currentBuild() buildInfo {
	bi, _ := debug.ReadBuildInfo()
	return newBuildInfo(bi)
}

// newBuildInfo combines ldflags values with the module build info.
// Values set with ldflags win. bi may be nil.
func newBuildInfo(bi *debug.BuildInfo) buildInfo {
	info := buildInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi != nil {
		if info.Version == "" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.Date == "" {
					info.Date = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	if info.Version == "" {
		info.Version = develVersion
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	} else if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}

// getVersion returns the version of the running binary.
func getVersion() string {
	return currentBuild().Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit, build date and Go toolchain of wikirace.

Include this output when reporting a bug.`,
		Args: cobra.NoArgs,
		RunE: runVersionCmd,
	}

	cmd.Flags().Bool("short", false, "Print only the version")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

// runVersionCmd executes the version command.
func runVersionCmd(cmd *cobra.Command, _ []string) error {
	short, err := cmd.Flags().GetBool("short")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	info := currentBuild()
	out := cmd.OutOrStdout()

	switch {
	case short:
		fmt.Fprintln(out, info.Version)
		return nil
	case asJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	default:
		writeBuildInfo(out, info)
		return nil
	}
}

// writeBuildInfo prints info in the human-readable layout.
func writeBuildInfo(w io.Writer, info buildInfo) {
	rev := info.Commit
	if info.Modified {
		rev += " (modified)"
	}
	fmt.Fprintf(w, "wikirace version %s\n", info.Version)
	fmt.Fprintf(w, "  commit: %s\n", rev)
	fmt.Fprintf(w, "  built:  %s\n", info.Date)
	fmt.Fprintf(w, "  go:     %s %s\n", info.GoVersion, info.Platform)
}

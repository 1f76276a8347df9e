package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/nao1215/peptiscan/internal/model"
	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags. Release builds inject
// all three; everything else is recovered from the embedded build info.
var (
	version = ""
	commit  = ""
	date    = ""
)

// versionInfo collects everything the version command prints.
type versionInfo struct {
	// Version is the release version or module version.
	Version string

	// Commit is the short VCS revision.
	Commit string

	// Date is the build or commit timestamp.
	Date string

	// GoVersion is the toolchain that built the binary.
	GoVersion string
}

// collectVersionInfo resolves version fields with ldflags taking priority
// over the embedded build info.
func collectVersionInfo() versionInfo {
	info := versionInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info.withDefaults()
	}

	if info.Version == "" {
		info.Version = buildInfo.Main.Version
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = shortRevision(setting.Value)
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = setting.Value
			}
		}
	}

	return info.withDefaults()
}

// withDefaults fills unresolved fields with placeholders.
func (v versionInfo) withDefaults() versionInfo {
	if v.Version == "" {
		v.Version = "(devel)"
	}
	if v.Commit == "" {
		v.Commit = "unknown"
	}
	if v.Date == "" {
		v.Date = "unknown"
	}
	return v
}

// shortRevision truncates a VCS revision to the conventional seven
// characters.
func shortRevision(revision string) string {
	if len(revision) > 7 {
		return revision[:7]
	}
	return revision
}

// getVersion returns the version string for the root command.
func getVersion() string {
	return collectVersionInfo().Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit hash, and build date of peptiscan, along with
the default analysis parameters this build ships with.`,
		Run: func(cmd *cobra.Command, _ []string) {
			info := collectVersionInfo()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "peptiscan version %s\n", info.Version)
			fmt.Fprintf(out, "  commit:   %s\n", info.Commit)
			fmt.Fprintf(out, "  built:    %s\n", info.Date)
			fmt.Fprintf(out, "  go:       %s\n", info.GoVersion)
			fmt.Fprintf(out, "  defaults: signal-length=%d min-sites=%d min-spacing=%d\n",
				model.DefaultSignalPeptideLength,
				model.DefaultMinCleavageSites,
				model.DefaultMinCleavageSpacing,
			)
		},
	}
}

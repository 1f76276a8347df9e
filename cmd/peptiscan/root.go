// Package main provides the entry point for the peptiscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for peptiscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peptiscan",
		Short: "Bioactive peptide prediction for protein precursors",
		Long: `Peptiscan predicts bioactive peptides hidden in protein precursor sequences.

It detects dibasic proprotein-convertase cleavage sites, extracts the peptide
fragments between them, and scores each fragment's likely bioactivity using a
remote prediction service with a local physicochemical fallback.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewCatalogCmd())
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

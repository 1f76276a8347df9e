package main

import (
	"fmt"
	"os"

	"github.com/nao1215/peptiscan/internal/config"
	"github.com/nao1215/peptiscan/internal/refdb"
	"github.com/spf13/cobra"
)

// NewCatalogCmd creates the catalog command group.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the known-peptide reference catalog",
		Long: `Catalog manages the local reference catalog of experimentally observed
peptides. During analysis, extracted fragments are matched against this
catalog and annotated with MS/MS observation counts and amidation status.

The catalog is stored as a SQLite database in the XDG data directory.`,
	}

	cmd.AddCommand(newCatalogImportCmd())
	cmd.AddCommand(newCatalogCountCmd())

	return cmd
}

// newCatalogImportCmd creates the catalog import subcommand.
func newCatalogImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <catalog.json>",
		Short: "Import a known-peptide catalog from a JSON file",
		Long: `Import loads a known-peptide catalog into the local database.

The input is a JSON file mapping peptide sequences to their metadata:

  {
    "peptides": {
      "YGGFMRF": {
        "proteinName": "Pro-enkephalin",
        "uniprot": "P01210",
        "msmsCount": 24,
        "mascotScore": 61.5,
        "isAmidated": true,
        "isProhormone": true
      }
    }
  }

Importing the same file twice updates existing entries in place.`,
		Args: cobra.ExactArgs(1),
		RunE: runCatalogImportCmd,
	}

	cmd.Flags().StringP("dir", "d", "",
		"Catalog database directory (default: XDG data directory)")

	return cmd
}

// runCatalogImportCmd executes the catalog import subcommand.
func runCatalogImportCmd(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}

	f, err := os.Open(args[0]) //nolint:gosec // User-provided catalog path is intentional
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	db, err := refdb.Open(dir, refdb.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer db.Close()

	count, err := db.ImportJSON(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d peptides into %s\n", count, dir)
	return nil
}

// newCatalogCountCmd creates the catalog count subcommand.
func newCatalogCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of peptides in the catalog",
		RunE:  runCatalogCountCmd,
	}

	cmd.Flags().StringP("dir", "d", "",
		"Catalog database directory (default: XDG data directory)")

	return cmd
}

// runCatalogCountCmd executes the catalog count subcommand.
func runCatalogCountCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}

	opts := refdb.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := refdb.Open(dir, opts)
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer db.Close()

	count, err := db.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count catalog entries: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d peptides\n", count)
	return nil
}

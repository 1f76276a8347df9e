package main

import (
	"encoding/json"
	"fmt"

	"github.com/nao1215/peptiscan/internal/uniprot"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <gene-name|accession>",
		Short: "Find secreted precursor proteins in UniProt",
		Long: `Search finds reviewed, secreted human proteins in UniProt by gene name
or accession. Each hit is reported with the analysis parameters its
annotations suggest, ready to paste into an analyze invocation.

Examples:
  # Find precursors by gene name
  peptiscan search POMC

  # Accessions are recognized and searched directly
  peptiscan search P01189

  # Machine-readable output
  peptiscan search --json INS`,
		Args: cobra.ExactArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().IntP("limit", "l", uniprot.DefaultSearchLimit,
		fmt.Sprintf("Maximum number of results (1-%d)", uniprot.MaxSearchLimit))
	cmd.Flags().BoolP("json", "j", false,
		"Output results as JSON")
	cmd.Flags().String("endpoint", "",
		"UniProt REST endpoint URL override")

	return cmd
}

// searchResult is the JSON shape of one search hit.
type searchResult struct {
	Accession        string `json:"accession"`
	GeneName         string `json:"gene_name"`
	ProteinName      string `json:"protein_name"`
	Length           int    `json:"length"`
	SignalPeptideEnd int    `json:"signal_peptide_end"`
	CuratedPeptides  int    `json:"curated_peptides"`
	FASTAHeader      string `json:"fasta_header"`
	Recommended      struct {
		SignalPeptideLength int `json:"signal_peptide_length"`
		MinCleavageSites    int `json:"min_cleavage_sites"`
		MinCleavageSpacing  int `json:"min_cleavage_spacing"`
	} `json:"recommended"`
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	endpoint, err := cmd.Flags().GetString("endpoint")
	if err != nil {
		return err
	}

	var clientOpts []uniprot.Option
	if endpoint != "" {
		clientOpts = append(clientOpts, uniprot.WithBaseURL(endpoint))
	}
	client := uniprot.NewClient(clientOpts...)

	results, err := client.Search(cmd.Context(), args[0], limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if asJSON {
		return writeSearchJSON(cmd, results)
	}
	return writeSearchText(cmd, args[0], results)
}

// writeSearchJSON prints search results as a JSON array.
func writeSearchJSON(cmd *cobra.Command, results []uniprot.SearchResult) error {
	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		item := searchResult{
			Accession:        r.Entry.Accession,
			GeneName:         r.Entry.GeneName,
			ProteinName:      r.Entry.ProteinName,
			Length:           r.Length,
			SignalPeptideEnd: r.Entry.SignalPeptideEnd,
			CuratedPeptides:  len(r.Entry.Peptides),
			FASTAHeader:      r.FASTAHeader,
		}
		item.Recommended.SignalPeptideLength = r.Recommended.SignalPeptideLength
		item.Recommended.MinCleavageSites = r.Recommended.MinCleavageSites
		item.Recommended.MinCleavageSpacing = r.Recommended.MinCleavageSpacing
		out = append(out, item)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeSearchText prints search results as human-readable blocks, each with
// a ready-to-run analyze invocation.
func writeSearchText(cmd *cobra.Command, query string, results []uniprot.SearchResult) error {
	out := cmd.OutOrStdout()

	if len(results) == 0 {
		fmt.Fprintf(out, "No secreted human proteins found for %q\n", query)
		return nil
	}

	fmt.Fprintf(out, "Found %d secreted human protein(s) for %q\n\n", len(results), query)

	for i, r := range results {
		fmt.Fprintf(out, "%d. %s  %s\n", i+1, r.Entry.Accession, r.Entry.ProteinName)
		fmt.Fprintf(out, "   Gene: %s  Length: %d aa  Signal peptide: 1-%d  Curated peptides: %d\n",
			r.Entry.GeneName, r.Length, r.Entry.SignalPeptideEnd, len(r.Entry.Peptides))
		fmt.Fprintf(out, "   Suggested: peptiscan analyze --accession %s --signal-length %d --min-sites %d --min-spacing %d\n\n",
			r.Entry.Accession,
			r.Recommended.SignalPeptideLength,
			r.Recommended.MinCleavageSites,
			r.Recommended.MinCleavageSpacing,
		)
	}

	return nil
}

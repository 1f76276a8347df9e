// Package main provides the entry point for the peptiscan CLI.
//
// Peptiscan predicts bioactive peptides hidden in protein precursor
// sequences. It detects dibasic proprotein-convertase cleavage sites,
// extracts the peptide fragments between them, and scores each fragment's
// likely bioactivity.
//
// Usage:
//
//	peptiscan analyze <sequence|fasta-file>
//	peptiscan analyze --accession P01189
//
// See --help for all available options.
package main

// main is the entry point for peptiscan.
func main() {
	Execute()
}

// Package seq normalizes and validates precursor protein sequences.
//
// Raw input text arrives in several shapes: bare residue strings, single
// FASTA records with a header line, multi-line wrapped sequences, and mixed
// case. Normalize collapses all of these into one canonical form (uppercase,
// whitespace free, alphabet checked) that the rest of the pipeline can trust.
//
// The package also contains a small FASTA parser used by the CLI to read
// multi-record input files and extract accession information from headers.
package seq

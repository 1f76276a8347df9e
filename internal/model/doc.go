// Package model defines the core data structures used throughout PeptiScan.
//
// This package contains the following main types:
//   - CleavageSite: A detected proprotein-convertase cleavage point
//   - PeptideFragment: A candidate peptide cut out of a precursor protein
//   - Parameters: Immutable per-run analysis configuration
//   - AnalysisReport: The main analysis result structure
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (cleavage, extract, bioactivity, report) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model

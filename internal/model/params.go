package model

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters is returned when an analysis parameter set cannot be
// used to construct a detection run. Callers should treat this as a caller
// error, not a degraded-result condition: no partial analysis is produced.
var ErrInvalidParameters = errors.New("invalid analysis parameters")

// Default analysis parameters. These follow the prohormone screening
// criteria from Coassolo et al. (Nature 2025): a 20-residue signal peptide
// estimate, at least four cleavage sites for a precursor to count as a
// prohormone candidate, and five residues of minimum spacing between cuts.
const (
	// DefaultSignalPeptideLength is the assumed signal peptide length when
	// no precursor-specific value is known. Secreted human proteins carry
	// signal peptides of roughly 15-30 residues; 20 is the common estimate.
	DefaultSignalPeptideLength = 20

	// DefaultMinCleavageSites is the minimum number of detected sites for a
	// precursor to yield any fragments at all.
	DefaultMinCleavageSites = 4

	// DefaultMinCleavageSpacing is the minimum residue distance between
	// accepted cleavage points.
	DefaultMinCleavageSpacing = 5
)

// Parameters is the immutable configuration for one analysis run.
//
// SignalPeptideLength defines the offset before which no motif is considered
// and where fragment extraction starts. MinCleavageSpacing does double duty:
// the strict-mode detector uses it to collapse nearby candidates, and the
// extractor uses it to skip sites that would produce tiny fragments.
type Parameters struct {
	// SignalPeptideLength is the number of N-terminal residues treated as
	// the signal peptide and excluded from detection and extraction.
	SignalPeptideLength int `json:"signal_peptide_length"`

	// MinCleavageSites is the minimum number of detected cleavage sites
	// required before any fragment is extracted. Below this threshold the
	// precursor is treated as "insufficient evidence" and yields nothing.
	MinCleavageSites int `json:"min_cleavage_sites"`

	// MinCleavageSpacing is the minimum residue distance between accepted
	// cleavage points.
	MinCleavageSpacing int `json:"min_cleavage_spacing"`
}

// DefaultParameters returns the recommended parameter set.
func DefaultParameters() Parameters {
	return Parameters{
		SignalPeptideLength: DefaultSignalPeptideLength,
		MinCleavageSites:    DefaultMinCleavageSites,
		MinCleavageSpacing:  DefaultMinCleavageSpacing,
	}
}

// Validate checks whether the parameters can drive a detection run.
// All failures wrap ErrInvalidParameters so callers can match with errors.Is.
//
// Design decision: We validate once up front rather than at each point of
// use so a bad parameter set fails fast before any scanning begins, and so
// the detector itself never has to distinguish "bad config" from "no sites".
func (p Parameters) Validate() error {
	if p.SignalPeptideLength < 0 {
		return fmt.Errorf("%w: signal peptide length must be non-negative, got %d",
			ErrInvalidParameters, p.SignalPeptideLength)
	}
	if p.MinCleavageSites < 1 {
		return fmt.Errorf("%w: minimum cleavage sites must be at least 1, got %d",
			ErrInvalidParameters, p.MinCleavageSites)
	}
	if p.MinCleavageSpacing < 1 {
		return fmt.Errorf("%w: minimum cleavage spacing must be at least 1, got %d",
			ErrInvalidParameters, p.MinCleavageSpacing)
	}
	return nil
}

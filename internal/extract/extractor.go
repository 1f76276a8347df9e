// Package extract converts ordered cleavage sites into peptide fragments.
package extract

import (
	"log/slog"

	"github.com/nao1215/peptiscan/internal/model"
)

// Extractor slices a precursor sequence into peptide fragments between
// accepted cleavage sites.
//
// Design decision: The extractor re-applies the minimum spacing rule even
// though strict-mode detection already collapses nearby sites. Permissive
// mode skips the collapse pass, so without the cursor-distance check here a
// permissive run would emit confetti fragments between every adjacent motif.
type Extractor struct {
	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates a new peptide extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract walks the detected sites in order and emits the fragments between
// accepted cut points.
//
// When fewer than MinCleavageSites sites were detected the precursor is not
// a prohormone candidate and no fragments are produced; this is insufficient
// evidence, not an error. Otherwise a cursor starts at the signal peptide
// boundary. A site is accepted when its cut point lies at least
// MinCleavageSpacing residues past the cursor; acceptance emits the fragment
// [cursor, position) - if it is longer than model.MinFragmentLength - and
// moves the cursor to the cut point. Rejected sites leave the cursor where
// it is. The tail from the final cursor to the sequence end becomes a
// trailing fragment with the END sentinel motif, again only when longer
// than model.MinFragmentLength.
func (e *Extractor) Extract(sequence string, sites []model.CleavageSite, params model.Parameters) []*model.PeptideFragment {
	fragments := []*model.PeptideFragment{}

	if len(sites) < params.MinCleavageSites {
		e.logger.Debug("not enough cleavage sites for extraction",
			"sites", len(sites),
			"required", params.MinCleavageSites,
		)
		return fragments
	}

	cursor := params.SignalPeptideLength
	for _, site := range sites {
		if site.Position-cursor < params.MinCleavageSpacing {
			continue
		}
		if site.Position-cursor > model.MinFragmentLength {
			fragments = append(fragments, model.NewPeptideFragment(sequence, cursor, site.Position, site.Motif))
		}
		cursor = site.Position
	}

	if len(sequence)-cursor > model.MinFragmentLength {
		fragments = append(fragments, model.NewPeptideFragment(sequence, cursor, len(sequence), model.TerminalMotif))
	}

	e.logger.Debug("fragment extraction complete",
		"fragments", len(fragments),
	)
	return fragments
}

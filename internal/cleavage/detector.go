package cleavage

import (
	"log/slog"

	"github.com/nao1215/peptiscan/internal/model"
)

// blockedFollowers are residues that disqualify a dibasic pair when they
// appear immediately after it. Basic residues (R, K) indicate a longer basic
// run handled elsewhere; the branched/hydrophobic set (I, L, P, V) and
// histidine make the pair a poor convertase substrate.
const blockedFollowers = "RKILPVH"

// Detector finds dibasic cleavage sites in normalized precursor sequences.
//
// Detection is purely a function of (sequence, mode, parameters): no I/O,
// no concurrency, deterministic output. The zero-value Detector is not
// usable; create one with NewDetector.
type Detector struct {
	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets a custom logger for the detector.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a new cleavage-site detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Detect scans sequence for cleavage sites after the signal-peptide offset,
// qualified by the given mode, and returns them ordered by position.
//
// A non-constructible parameter set returns model.ErrInvalidParameters.
// Degenerate-but-valid inputs (offset at or beyond the sequence end, or a
// region too short to hold a motif) soft-fail to an empty site list: callers
// must treat zero sites as "no sites found", never as an error.
func (d *Detector) Detect(sequence string, mode model.DetectionMode, params model.Parameters) ([]model.CleavageSite, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	offset := params.SignalPeptideLength
	if offset >= len(sequence) {
		d.logger.Debug("signal peptide offset beyond sequence end",
			"offset", offset,
			"sequence_length", len(sequence),
		)
		return []model.CleavageSite{}, nil
	}

	candidates := d.scan(sequence, offset, mode)

	if mode == model.ModeStrict {
		candidates = collapseBySpacing(candidates, params.MinCleavageSpacing)
	}

	d.logger.Debug("cleavage detection complete",
		"mode", mode.String(),
		"sites", len(candidates),
	)
	return candidates, nil
}

// scan collects qualifying dibasic motifs from sequence[offset:].
//
// The scan is non-overlapping: an accepted motif advances the cursor past
// both residues, a rejected position advances by one. This matches the
// left-to-right non-overlapping semantics the site definition was originally
// written against, so e.g. "RRR <follower>" yields one site, not two.
func (d *Detector) scan(sequence string, offset int, mode model.DetectionMode) []model.CleavageSite {
	region := sequence[offset:]
	sites := []model.CleavageSite{}

	for i := 0; i+model.MotifLength <= len(region); {
		if !isBasic(region[i]) || !isBasic(region[i+1]) {
			i++
			continue
		}

		if !followerQualifies(region, i) {
			i++
			continue
		}

		// Strict mode refuses motifs fed by another basic residue: a
		// triple-basic run is a trimming substrate, not a clean cut point.
		// The predecessor check stays inside the scan region so the signal
		// peptide's own residues never disqualify the first motif.
		if mode == model.ModeStrict && i > 0 && isBasic(region[i-1]) {
			i++
			continue
		}

		rawIndex := offset + i
		sites = append(sites, model.CleavageSite{
			Position: rawIndex + model.MotifLength,
			Motif:    region[i : i+model.MotifLength],
			RawIndex: rawIndex,
		})
		i += model.MotifLength
	}

	return sites
}

// followerQualifies checks the residue after the motif at region[i:i+2].
// A motif qualifies when it sits at the end of the sequence, when the
// follower is outside the blocked set, or - as the one exception - when a
// KR pair is followed by histidine.
func followerQualifies(region string, i int) bool {
	next := i + model.MotifLength
	if next >= len(region) {
		return true
	}

	follower := region[next]
	blocked := false
	for j := 0; j < len(blockedFollowers); j++ {
		if follower == blockedFollowers[j] {
			blocked = true
			break
		}
	}
	if !blocked {
		return true
	}

	// KR followed by H is cleavable despite H being blocked for the
	// other pairs.
	return region[i] == 'K' && region[i+1] == 'R' && follower == 'H'
}

// collapseBySpacing drops candidates that crowd their predecessor.
//
// Walking candidates in order, a candidate survives only when its motif
// start lies at least minSpacing residues after the previous survivor's cut
// point. The earlier site always wins, so the pass is a single forward walk
// with no lookahead state.
func collapseBySpacing(candidates []model.CleavageSite, minSpacing int) []model.CleavageSite {
	if len(candidates) <= 1 {
		return candidates
	}

	kept := make([]model.CleavageSite, 0, len(candidates))
	kept = append(kept, candidates[0])
	for _, cand := range candidates[1:] {
		if cand.RawIndex-kept[len(kept)-1].Position >= minSpacing {
			kept = append(kept, cand)
		}
	}
	return kept
}

// isBasic reports whether c is a positively charged basic residue that can
// form a dibasic cleavage motif.
func isBasic(c byte) bool {
	return c == 'K' || c == 'R'
}

// IsProhormone reports whether the detected sites qualify the precursor as a
// prohormone candidate, i.e. whether extraction will produce any fragments.
func IsProhormone(sites []model.CleavageSite, minSites int) bool {
	return len(sites) >= minSites
}

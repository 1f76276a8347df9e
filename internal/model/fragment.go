package model

// Fragment length thresholds.
const (
	// MinFragmentLength is the exclusive lower bound on fragment length.
	// Fragments of three residues or fewer are discarded during extraction;
	// they are too short to act as signaling peptides and too short to score
	// meaningfully.
	MinFragmentLength = 3

	// OptimalMinLength and OptimalMaxLength bound the length range in which
	// most known bioactive peptides fall. Fragments inside the range are
	// flagged InOptimalRange and rewarded by the heuristic scorer.
	OptimalMinLength = 5
	OptimalMaxLength = 25
)

// TerminalMotif is the sentinel cleavage motif recorded on the trailing
// fragment that runs from the last accepted cleavage site to the end of the
// precursor. It marks the fragment as non-cleavage-terminated.
const TerminalMotif = "END"

// PeptideFragment is a candidate bioactive peptide cut out of a precursor.
//
// Lifecycle: created by the extractor with score fields unset, mutated exactly
// once by the bioactivity scorer, optionally enriched by the annotation and
// PTM steps, then read-only through ranking and output. Each fragment belongs
// to a single analysis run; fragments are never shared across runs.
type PeptideFragment struct {
	// Sequence is the fragment's residue string.
	Sequence string `json:"sequence"`

	// Start is the zero-based offset of the fragment's first residue in the
	// normalized precursor sequence.
	Start int `json:"start"`

	// End is the exclusive end offset. End - Start == Length always holds.
	End int `json:"end"`

	// Length is the fragment length in residues.
	Length int `json:"length"`

	// InOptimalRange is true when Length falls within
	// [OptimalMinLength, OptimalMaxLength].
	InOptimalRange bool `json:"in_optimal_range"`

	// CleavageMotif is the dibasic motif of the site that terminated this
	// fragment, or TerminalMotif for the trailing fragment.
	CleavageMotif string `json:"cleavage_motif"`

	// BioactivityScore is the predicted bioactivity in [0,100].
	// Zero until the scorer runs.
	BioactivityScore float64 `json:"bioactivity_score"`

	// ScoreSource records which tier produced BioactivityScore.
	ScoreSource ScoreSource `json:"score_source"`

	// Amphipathic is the fragment's amphipathic composition profile.
	// Nil until the scorer runs.
	Amphipathic *AmphipathicProfile `json:"amphipathic,omitempty"`

	// PTMs lists post-translational modification motifs detected in the
	// fragment. Empty when the PTM step is disabled or finds nothing.
	PTMs []PTM `json:"ptms,omitempty"`

	// Known holds the reference-catalog annotation when the fragment matches
	// an experimentally observed peptide. Nil when no catalog is configured
	// or no match was found.
	Known *KnownPeptide `json:"known,omitempty"`

	// Curated classifies the fragment against curated UniProt peptide
	// features, when the precursor's entry was available.
	Curated *CuratedMatch `json:"curated,omitempty"`
}

// NewPeptideFragment creates a fragment spanning [start, end) of the given
// precursor sequence. Length and InOptimalRange are derived; score fields
// start unset.
func NewPeptideFragment(precursor string, start, end int, motif string) *PeptideFragment {
	seq := precursor[start:end]
	length := len(seq)
	return &PeptideFragment{
		Sequence:       seq,
		Start:          start,
		End:            end,
		Length:         length,
		InOptimalRange: length >= OptimalMinLength && length <= OptimalMaxLength,
		CleavageMotif:  motif,
		ScoreSource:    ScoreSourceNone,
	}
}

// IsTrailing reports whether this is the trailing fragment after the last
// cleavage site.
func (f *PeptideFragment) IsTrailing() bool {
	return f.CleavageMotif == TerminalMotif
}

// AmphipathicProfile describes how much of a fragment is covered by basic
// (positively charged) and lipophilic (hydrophobic) residues. High combined
// coverage suggests an amphipathic helix, a common feature of membrane-active
// peptides.
type AmphipathicProfile struct {
	// Score is the combined basic + lipophilic coverage percentage.
	Score float64 `json:"score"`

	// BasicCount is the number of K, R, and H residues.
	BasicCount int `json:"basic_count"`

	// LipophilicCount is the number of A, V, L, I, M, F, W, and Y residues.
	LipophilicCount int `json:"lipophilic_count"`

	// BasicRatio is the basic coverage percentage.
	BasicRatio float64 `json:"basic_ratio"`

	// LipophilicRatio is the lipophilic coverage percentage.
	LipophilicRatio float64 `json:"lipophilic_ratio"`
}

// PTM is a post-translational modification motif detected in a fragment.
type PTM struct {
	// Type is the machine-readable modification identifier
	// (e.g. "c_terminal_amidation", "n_glycosylation").
	Type string `json:"type"`

	// Name is the human-readable modification name.
	Name string `json:"name"`

	// Position is the zero-based residue offset within the fragment where
	// the motif starts.
	Position int `json:"position"`

	// Motif is the matched residue pattern.
	Motif string `json:"motif"`

	// Enzyme names the enzyme responsible for the modification.
	Enzyme string `json:"enzyme,omitempty"`

	// Description explains the biological relevance of the modification.
	Description string `json:"description,omitempty"`
}

// KnownPeptide is a reference-catalog annotation for a fragment that matches
// an experimentally observed peptide.
type KnownPeptide struct {
	// ProteinName is the precursor protein the observed peptide belongs to.
	ProteinName string `json:"protein_name"`

	// Accession is the UniProt accession of the precursor.
	Accession string `json:"accession,omitempty"`

	// MSMSCount is the number of MS/MS spectra supporting the observation.
	MSMSCount int `json:"msms_count"`

	// MascotScore is the best Mascot identification score reported for the
	// peptide in the source dataset.
	MascotScore float64 `json:"mascot_score"`

	// IsAmidated is true when the observed peptide carries C-terminal
	// amidation.
	IsAmidated bool `json:"is_amidated"`

	// IsProhormone is true when the source dataset classifies the precursor
	// as a prohormone.
	IsProhormone bool `json:"is_prohormone"`

	// MatchNote describes non-exact matches, e.g. a match found after
	// removing the C-terminal glycine that amidation consumes.
	MatchNote string `json:"match_note,omitempty"`
}

// CuratedMatch classifies a fragment against the curated peptide features
// of its precursor's UniProt entry.
type CuratedMatch struct {
	// Status is "exact", "partial", or "unknown".
	Status string `json:"status"`

	// Name is the curated peptide name for non-unknown matches.
	Name string `json:"name,omitempty"`

	// Note qualifies partial matches: which part of the curated peptide
	// the fragment covers, or that it extends one.
	Note string `json:"note,omitempty"`
}

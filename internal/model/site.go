package model

// MotifLength is the length of a dibasic cleavage motif in residues.
// Proprotein convertases of the PCSK1/3 family cut after paired basic
// residues, so every motif we detect is exactly two residues long.
const MotifLength = 2

// CleavageSite is a single detected proprotein-convertase cleavage point.
// Sites are produced by the cleavage detector in sequence order and consumed
// once by the peptide extractor; they are never mutated after creation.
type CleavageSite struct {
	// Position is the cut point: the zero-based offset immediately after the
	// dibasic motif. The peptide upstream of the site ends here.
	Position int `json:"position"`

	// Motif is the two-residue basic pair that triggered the site
	// (one of KK, KR, RR, RK).
	Motif string `json:"motif"`

	// RawIndex is the zero-based offset of the first motif residue in the
	// normalized sequence. Position == RawIndex + MotifLength always holds.
	RawIndex int `json:"raw_index"`
}

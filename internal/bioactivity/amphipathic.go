package bioactivity

import "github.com/nao1215/peptiscan/internal/model"

// lipophilicResidues is the residue class used for the amphipathic profile.
// Unlike hydrophobicResidues it includes tyrosine and excludes proline,
// matching the helical-wheel convention for amphipathicity rather than the
// bulk hydrophobicity scale the heuristic uses.
const lipophilicResidues = "AVLIMFWY"

// AmphipathicProfile computes the basic/lipophilic coverage profile of a
// fragment sequence. The score is the combined percentage of residues that
// are either basic or lipophilic; peptides near 100% with both classes
// present are strong amphipathic-helix candidates.
//
// Pure function; an empty sequence yields the zero profile.
func AmphipathicProfile(sequence string) *model.AmphipathicProfile {
	if len(sequence) == 0 {
		return &model.AmphipathicProfile{}
	}

	basic := countAny(sequence, positiveResidues)
	lipophilic := countAny(sequence, lipophilicResidues)
	length := float64(len(sequence))

	basicRatio := float64(basic) / length * 100
	lipophilicRatio := float64(lipophilic) / length * 100

	return &model.AmphipathicProfile{
		Score:           basicRatio + lipophilicRatio,
		BasicCount:      basic,
		LipophilicCount: lipophilic,
		BasicRatio:      basicRatio,
		LipophilicRatio: lipophilicRatio,
	}
}

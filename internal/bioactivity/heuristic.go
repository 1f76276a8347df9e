package bioactivity

import "github.com/nao1215/peptiscan/internal/model"

// Residue classes used by the heuristic and the amphipathic profile.
const (
	// hydrophobicResidues drive membrane interaction and receptor binding.
	hydrophobicResidues = "ALIVMFWP"

	// positiveResidues carry positive charge at physiological pH.
	positiveResidues = "KRH"

	// negativeResidues carry negative charge at physiological pH.
	negativeResidues = "DE"
)

// Heuristic term weights. The terms approximate what empirical bioactivity
// predictors reward: hydrophobic patches, mixed charge, peptide-typical
// length, and structural stability. The exact numbers are calibration
// constants, not biology; the contract is only that the result is a
// deterministic function of the sequence.
const (
	hydrophobicityWeight = 30.0

	chargeBonus = 10.0

	optimalLengthBonus = 35.0
	shortLengthPenalty = 10.0
	longLengthPenalty  = 15.0
	longLengthCutoff   = 100

	cysteineBonus        = 8.0
	prolineBonus         = 7.0
	prolinePenalty       = 5.0
	maxToleratedProlines = 2

	diversityBonus     = 5.0
	minDiverseResidues = 6
)

// Heuristic computes the local fallback bioactivity score for a fragment
// sequence. It is a pure function: same input, same output, no I/O. The
// result is clamped to [0,100] and an empty sequence scores zero.
func Heuristic(sequence string) float64 {
	if len(sequence) == 0 {
		return 0
	}

	score := 0.0
	length := float64(len(sequence))

	// Hydrophobicity term: fraction of hydrophobic residues.
	score += float64(countAny(sequence, hydrophobicResidues)) / length * hydrophobicityWeight

	// Charge terms: presence of each charge class, not abundance.
	if countAny(sequence, positiveResidues) > 0 {
		score += chargeBonus
	}
	if countAny(sequence, negativeResidues) > 0 {
		score += chargeBonus
	}

	// Length preference term.
	switch {
	case len(sequence) >= model.OptimalMinLength && len(sequence) <= model.OptimalMaxLength:
		score += optimalLengthBonus
	case len(sequence) < model.OptimalMinLength:
		score -= shortLengthPenalty
	case len(sequence) > longLengthCutoff:
		score -= longLengthPenalty
	}

	// Stability terms: disulfide potential, proline content, composition
	// diversity.
	if countAny(sequence, "C") > 0 {
		score += cysteineBonus
	}
	if countAny(sequence, "P") <= maxToleratedProlines {
		score += prolineBonus
	} else {
		score -= prolinePenalty
	}
	if distinctResidues(sequence) >= minDiverseResidues {
		score += diversityBonus
	}

	return clamp(score, 0, 100)
}

// countAny counts residues of sequence that appear in class.
func countAny(sequence, class string) int {
	n := 0
	for i := 0; i < len(sequence); i++ {
		for j := 0; j < len(class); j++ {
			if sequence[i] == class[j] {
				n++
				break
			}
		}
	}
	return n
}

// distinctResidues counts the number of distinct residue types present.
func distinctResidues(sequence string) int {
	var seen [256]bool
	n := 0
	for i := 0; i < len(sequence); i++ {
		if !seen[sequence[i]] {
			seen[sequence[i]] = true
			n++
		}
	}
	return n
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

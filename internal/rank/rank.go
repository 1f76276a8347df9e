// Package rank orders scored peptide fragments for presentation.
package rank

import (
	"sort"

	"github.com/nao1215/peptiscan/internal/model"
)

// ByScore returns a new slice of fragments ordered by bioactivity score,
// highest first. The sort is stable: fragments with equal scores keep
// their precursor order, so ranking never reshuffles ties between runs.
// The input slice is not modified.
func ByScore(fragments []*model.PeptideFragment) []*model.PeptideFragment {
	ranked := make([]*model.PeptideFragment, len(fragments))
	copy(ranked, fragments)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BioactivityScore > ranked[j].BioactivityScore
	})

	return ranked
}

// Top returns the n highest-scoring fragments. Fewer than n fragments
// returns them all; n below one returns an empty slice.
func Top(fragments []*model.PeptideFragment, n int) []*model.PeptideFragment {
	if n < 1 {
		return []*model.PeptideFragment{}
	}

	ranked := ByScore(fragments)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CountInRange reports how many fragments fall in the optimal length range.
func CountInRange(fragments []*model.PeptideFragment) int {
	n := 0
	for _, fragment := range fragments {
		if fragment.InOptimalRange {
			n++
		}
	}
	return n
}

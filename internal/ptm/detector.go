// Package ptm detects likely post-translational modifications on peptide
// fragments using sequence-motif rules.
//
// The rules are deliberately simple pattern matches; they flag candidates
// for a curator, they do not prove a modification occurs. All positions in
// the emitted annotations are zero-based offsets within the fragment.
package ptm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/peptiscan/internal/model"
)

// Modification type identifiers.
const (
	TypeCTerminalAmidation = "c_terminal_amidation"
	TypePyroglutamate      = "n_terminal_pyroglutamate"
	TypeDisulfideBond      = "disulfide_bond"
	TypeGhrelinAcylation   = "ghrelin_acylation"
	TypeTyrosineSulfation  = "tyrosine_sulfation"
	TypeNGlycosylation     = "n_glycosylation"
)

// sulfationWindow is the number of residues on each side of a tyrosine
// inspected for acidic context.
const sulfationWindow = 5

// minAcidicContext is the number of D/E residues required in the window
// around a tyrosine for sulfation to be plausible.
const minAcidicContext = 2

// glycosylationPattern is the N-X-S/T sequon with proline excluded from
// the X position. Matches are non-overlapping.
var glycosylationPattern = regexp.MustCompile(`N[^P][ST]`)

// Detect runs all modification rules against a fragment and returns the
// annotations in rule order. The precursor sequence provides the context
// needed by the amidation rule: amidation is only called when the residues
// cleaved off after the fragment's terminal glycine are basic.
func Detect(fragment *model.PeptideFragment, precursor string) []model.PTM {
	if fragment == nil || fragment.Sequence == "" {
		return nil
	}

	var ptms []model.PTM

	if p := detectAmidation(fragment, precursor); p != nil {
		ptms = append(ptms, *p)
	}
	if p := detectPyroglutamate(fragment.Sequence); p != nil {
		ptms = append(ptms, *p)
	}
	if p := detectDisulfide(fragment.Sequence); p != nil {
		ptms = append(ptms, *p)
	}
	if p := detectGhrelinAcylation(fragment.Sequence); p != nil {
		ptms = append(ptms, *p)
	}
	ptms = append(ptms, detectTyrosineSulfation(fragment.Sequence)...)
	ptms = append(ptms, detectNGlycosylation(fragment.Sequence)...)

	return ptms
}

// detectAmidation flags C-terminal amidation: the fragment ends in glycine
// and the precursor continues with one or two basic residues. The basic
// residues are removed by the prohormone convertase and the exposed glycine
// is then converted to an amide group.
func detectAmidation(fragment *model.PeptideFragment, precursor string) *model.PTM {
	if !strings.HasSuffix(fragment.Sequence, "G") {
		return nil
	}
	if precursor == "" || fragment.End >= len(precursor) {
		return nil
	}

	after := precursor[fragment.End:]
	if len(after) > 2 {
		after = after[:2]
	}

	basic := 0
	for basic < len(after) && (after[basic] == 'K' || after[basic] == 'R') {
		basic++
	}
	if basic == 0 {
		return nil
	}

	motif := "G" + after[:basic]
	return &model.PTM{
		Type:        TypeCTerminalAmidation,
		Name:        "C-terminal amidation",
		Position:    len(fragment.Sequence) - 1,
		Motif:       motif,
		Enzyme:      "PAM",
		Description: fmt.Sprintf("%s converted to C-terminal amide", motif),
	}
}

// detectPyroglutamate flags N-terminal pyroglutamate formation from a
// leading glutamine or glutamate.
func detectPyroglutamate(sequence string) *model.PTM {
	var enzyme string
	switch sequence[0] {
	case 'Q':
		enzyme = "QPCT"
	case 'E':
		enzyme = "QPCTL"
	default:
		return nil
	}

	return &model.PTM{
		Type:        TypePyroglutamate,
		Name:        "N-terminal pyroglutamate",
		Position:    0,
		Motif:       sequence[:1],
		Enzyme:      enzyme,
		Description: fmt.Sprintf("%c converted to pyroglutamate", sequence[0]),
	}
}

// detectDisulfide flags disulfide bond potential when a fragment carries
// two or more cysteines. One annotation covers the whole fragment; the
// position is the first cysteine.
func detectDisulfide(sequence string) *model.PTM {
	first := -1
	count := 0
	for i := 0; i < len(sequence); i++ {
		if sequence[i] == 'C' {
			if first < 0 {
				first = i
			}
			count++
		}
	}
	if count < 2 {
		return nil
	}

	return &model.PTM{
		Type:        TypeDisulfideBond,
		Name:        "Disulfide bonds",
		Position:    first,
		Motif:       "C",
		Enzyme:      "PDI",
		Description: fmt.Sprintf("%d cysteines allow up to %d disulfide bonds", count, count/2),
	}
}

// detectGhrelinAcylation flags the ghrelin-specific octanoylation of the
// third serine, recognized by the GSSF N-terminal motif.
func detectGhrelinAcylation(sequence string) *model.PTM {
	if !strings.HasPrefix(sequence, "GSSF") {
		return nil
	}

	return &model.PTM{
		Type:        TypeGhrelinAcylation,
		Name:        "Ghrelin acylation",
		Position:    2,
		Motif:       "GSSF",
		Enzyme:      "GOAT",
		Description: "Ser3 octanoylation",
	}
}

// detectTyrosineSulfation flags each tyrosine sitting in an acidic context:
// at least two D/E residues within five positions on either side.
func detectTyrosineSulfation(sequence string) []model.PTM {
	var ptms []model.PTM

	for i := 0; i < len(sequence); i++ {
		if sequence[i] != 'Y' {
			continue
		}

		lo := max(0, i-sulfationWindow)
		hi := min(len(sequence), i+sulfationWindow+1)

		acidic := 0
		for j := lo; j < hi; j++ {
			if sequence[j] == 'D' || sequence[j] == 'E' {
				acidic++
			}
		}
		if acidic < minAcidicContext {
			continue
		}

		ptms = append(ptms, model.PTM{
			Type:        TypeTyrosineSulfation,
			Name:        "Tyrosine O-sulfation",
			Position:    i,
			Motif:       "Y",
			Enzyme:      "TPST1/TPST2",
			Description: fmt.Sprintf("Y%d sulfation in acidic context", i+1),
		})
	}

	return ptms
}

// detectNGlycosylation flags each non-overlapping N-X-S/T sequon where X is
// not proline.
func detectNGlycosylation(sequence string) []model.PTM {
	var ptms []model.PTM

	for _, loc := range glycosylationPattern.FindAllStringIndex(sequence, -1) {
		ptms = append(ptms, model.PTM{
			Type:        TypeNGlycosylation,
			Name:        "N-glycosylation",
			Position:    loc[0],
			Motif:       sequence[loc[0]:loc[1]],
			Enzyme:      "OST",
			Description: fmt.Sprintf("N%d glycosylation sequon", loc[0]+1),
		})
	}

	return ptms
}

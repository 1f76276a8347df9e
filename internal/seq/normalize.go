package seq

import (
	"fmt"
	"strings"
)

// Alphabet is the set of accepted residue symbols: the 20 standard amino
// acids plus the '*' translation terminator.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY*"

// MinPropeptideResidues is the number of residues that must remain after the
// signal peptide for an analysis to be worthwhile. Shorter inputs cannot hold
// even a single optimal-range peptide plus a cleavage motif.
const MinPropeptideResidues = 10

// validResidue is a lookup table over the accepted alphabet.
// Built once at init; byte indexing keeps validation allocation free.
var validResidue [256]bool

func init() {
	for i := 0; i < len(Alphabet); i++ {
		validResidue[Alphabet[i]] = true
	}
}

// Normalize cleans raw input text into a canonical residue string.
//
// It strips a single leading FASTA header line if present, removes all
// whitespace (spaces, tabs, CR, LF), uppercases the remainder, and validates
// every character against Alphabet. The returned string is safe to index
// byte-wise: the alphabet is pure ASCII.
//
// Normalize is idempotent: normalizing an already normalized sequence
// returns it unchanged. It has no side effects.
func Normalize(raw string) (string, error) {
	text := strings.TrimSpace(raw)

	// Drop one header line. Multi-record input must go through ParseFASTA;
	// Normalize deals with a single sequence only.
	if strings.HasPrefix(text, ">") {
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = ""
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if !validResidue[c] {
			return "", fmt.Errorf("%w: %q at offset %d", ErrInvalidSequence, string(rune(c)), i)
		}
		b.WriteByte(c)
	}

	normalized := b.String()
	if normalized == "" {
		return "", ErrEmptySequence
	}
	return normalized, nil
}

// ValidateLength checks that a normalized sequence is long enough to analyze
// with the given signal peptide offset. The minimum is the signal peptide
// plus MinPropeptideResidues.
func ValidateLength(sequence string, signalPeptideLength int) error {
	minLength := signalPeptideLength + MinPropeptideResidues
	if len(sequence) < minLength {
		return fmt.Errorf("%w: %d residues, minimum %d for signal peptide length %d",
			ErrSequenceTooShort, len(sequence), minLength, signalPeptideLength)
	}
	return nil
}

package seq

import "errors"

// Validation errors returned by Normalize and ValidateLength.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances at each return site. This allows callers to use
// errors.Is() for programmatic handling (the transport layer maps these to
// client errors) while wrapped messages still carry the offending detail.
var (
	// ErrInvalidSequence is returned when a sequence contains characters
	// outside the 20-letter amino-acid alphabet plus the '*' terminator.
	ErrInvalidSequence = errors.New("invalid sequence: contains non-amino-acid characters")

	// ErrSequenceTooShort is returned when a sequence is too short to carry
	// both the signal peptide and a meaningful propeptide region.
	ErrSequenceTooShort = errors.New("sequence too short for analysis")

	// ErrEmptySequence is returned when normalization leaves nothing, e.g.
	// the input was blank or only a FASTA header.
	ErrEmptySequence = errors.New("empty sequence")
)

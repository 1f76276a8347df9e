package model

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned when a detection mode string cannot be parsed.
var ErrUnknownMode = errors.New("unknown detection mode")

// DetectionMode selects how strictly the cleavage-site detector qualifies
// dibasic motifs.
//
// Design decision: We use iota-based constants rather than raw strings
// because mode checks happen on every candidate motif during detection,
// and integer comparison keeps that loop branch-cheap. The String() and
// ParseDetectionMode functions cover the CLI/JSON boundary.
type DetectionMode int

const (
	// ModeStrict rejects motifs embedded in longer basic runs and collapses
	// candidates that sit closer together than the minimum cleavage spacing.
	// This mirrors the conservative site definition used for prohormone
	// screening and is the recommended default.
	ModeStrict DetectionMode = iota

	// ModePermissive accepts every qualifying dibasic motif after the signal
	// peptide. More sensitive, more false positives.
	ModePermissive
)

// String returns the lowercase mode name used on the CLI and in reports.
func (m DetectionMode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModePermissive:
		return "permissive"
	default:
		return "unknown"
	}
}

// ParseDetectionMode converts a mode name into a DetectionMode.
// It accepts exactly "strict" and "permissive".
func ParseDetectionMode(s string) (DetectionMode, error) {
	switch s {
	case "strict":
		return ModeStrict, nil
	case "permissive":
		return ModePermissive, nil
	default:
		return ModeStrict, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

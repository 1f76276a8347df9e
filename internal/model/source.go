package model

// ScoreSource records which scoring tier produced a fragment's bioactivity
// score. Fragments start out unscored; the scorer assigns exactly one of the
// other two values.
type ScoreSource int

const (
	// ScoreSourceNone means the fragment has not been scored yet.
	// Freshly extracted fragments carry this value together with a zero score.
	ScoreSourceNone ScoreSource = iota

	// ScoreSourceRemote means the score came from the remote prediction
	// service (probability rescaled to 0-100).
	ScoreSourceRemote

	// ScoreSourceHeuristic means the score came from the local
	// physicochemical heuristic, either because the remote service was
	// unavailable or because the fragment was too short to submit.
	ScoreSourceHeuristic
)

// String returns a human-readable representation of the score source.
func (s ScoreSource) String() string {
	switch s {
	case ScoreSourceNone:
		return "none"
	case ScoreSourceRemote:
		return "remote"
	case ScoreSourceHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the source as its string name so JSON reports stay
// readable without a lookup table.
func (s ScoreSource) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses the string form written by MarshalJSON.
// Unknown names decode as ScoreSourceNone rather than failing, so reports
// produced by newer versions remain loadable.
func (s *ScoreSource) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"remote"`:
		*s = ScoreSourceRemote
	case `"heuristic"`:
		*s = ScoreSourceHeuristic
	default:
		*s = ScoreSourceNone
	}
	return nil
}

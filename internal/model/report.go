package model

import "time"

// TopFragmentCount is the number of highest-scoring fragments selected into
// AnalysisReport.TopFragments.
const TopFragmentCount = 5

// AnalysisReport is the main analysis result structure.
// It is created empty at the start of a pipeline run and filled in by the
// pipeline steps: normalization writes Sequence, detection writes Sites,
// extraction writes Fragments, scoring mutates the fragments in place, and
// ranking fills TopFragments and FragmentsInRange. After the pipeline
// completes the report is read-only.
//
// Design decision: We use a single accumulating struct rather than separate
// per-stage result types because every stage needs most of what the previous
// stages produced, and a single struct serializes directly into the JSON
// report without a mapping layer.
type AnalysisReport struct {
	// === Input ===

	// RawInput is the unprocessed input text (possibly FASTA-formatted).
	// Excluded from JSON: it may be large and Sequence carries the
	// canonical form.
	RawInput string `json:"-"`

	// Header is the FASTA header line without the leading '>', if the input
	// carried one.
	Header string `json:"header,omitempty"`

	// Accession is the UniProt accession parsed from the header or supplied
	// by the caller. Used for reference-catalog annotation.
	Accession string `json:"accession,omitempty"`

	// ProteinName is the human-readable precursor name, when known.
	ProteinName string `json:"protein_name,omitempty"`

	// Mode is the detection mode the run used.
	Mode DetectionMode `json:"-"`

	// ModeName is the serialized mode name.
	ModeName string `json:"mode"`

	// Params is the parameter set the run used.
	Params Parameters `json:"params"`

	// === Normalization ===

	// Sequence is the normalized precursor sequence: uppercase, whitespace
	// free, alphabet checked. Empty until the normalize step runs.
	Sequence string `json:"-"`

	// SequenceLength is the length of the normalized sequence.
	SequenceLength int `json:"sequence_length"`

	// === Detection ===

	// Sites lists detected cleavage sites in sequence order.
	Sites []CleavageSite `json:"cleavage_sites"`

	// CleavageSiteCount is len(Sites), kept explicit for JSON consumers.
	CleavageSiteCount int `json:"cleavage_site_count"`

	// === Extraction and scoring ===

	// Fragments lists extracted fragments in detection order.
	Fragments []*PeptideFragment `json:"fragments"`

	// FragmentsInRange counts fragments whose length falls in the optimal
	// bioactive range.
	FragmentsInRange int `json:"fragments_in_range"`

	// TopFragments holds up to TopFragmentCount fragments sorted by
	// bioactivity score descending, ties broken by detection order.
	TopFragments []*PeptideFragment `json:"top_fragments"`

	// === Run metadata ===

	// DateAnalyzed is when the analysis was performed.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut indicates the run was cancelled before completing.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error holds the first fatal error, if any. Excluded from JSON;
	// ErrorMessage carries the serializable form.
	Error error `json:"-"`

	// ErrorMessage is the human-readable form of Error.
	ErrorMessage string `json:"error,omitempty"`
}

// NewAnalysisReport creates a report for one precursor analysis run.
func NewAnalysisReport(rawInput string, mode DetectionMode, params Parameters) *AnalysisReport {
	return &AnalysisReport{
		RawInput:     rawInput,
		Mode:         mode,
		ModeName:     mode.String(),
		Params:       params,
		DateAnalyzed: time.Now(),
	}
}

// AddSite appends a detected cleavage site and keeps CleavageSiteCount in sync.
func (r *AnalysisReport) AddSite(site CleavageSite) {
	r.Sites = append(r.Sites, site)
	r.CleavageSiteCount = len(r.Sites)
}

// AddFragment appends an extracted fragment.
func (r *AnalysisReport) AddFragment(f *PeptideFragment) {
	r.Fragments = append(r.Fragments, f)
}

// RecordError stores the first fatal error on the report.
// Later errors are ignored so the root cause is preserved.
func (r *AnalysisReport) RecordError(err error) {
	if r.Error != nil || err == nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
}

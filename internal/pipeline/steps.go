package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/peptiscan/internal/bioactivity"
	"github.com/nao1215/peptiscan/internal/cleavage"
	"github.com/nao1215/peptiscan/internal/extract"
	"github.com/nao1215/peptiscan/internal/model"
	"github.com/nao1215/peptiscan/internal/ptm"
	"github.com/nao1215/peptiscan/internal/rank"
	"github.com/nao1215/peptiscan/internal/refdb"
	"github.com/nao1215/peptiscan/internal/seq"
	"github.com/nao1215/peptiscan/internal/uniprot"
)

// NormalizeStep parses and normalizes the raw input into a canonical
// precursor sequence. FASTA headers are consumed here: the header line, the
// accession, and the protein name move onto the report and the residues
// become the working sequence.
//
// Design decision: Normalization failures are fatal. Every later step
// consumes the normalized sequence, so there is nothing useful a run can
// produce from input this step rejects.
type NormalizeStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// NormalizeStepOption configures a NormalizeStep.
type NormalizeStepOption func(*NormalizeStep)

// WithNormalizeLogger sets a custom logger for the normalize step.
func WithNormalizeLogger(logger *slog.Logger) NormalizeStepOption {
	return func(s *NormalizeStep) {
		s.logger = logger
	}
}

// NewNormalizeStep creates a new normalization step.
func NewNormalizeStep(opts ...NormalizeStepOption) *NormalizeStep {
	s := &NormalizeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do executes the normalization step.
func (s *NormalizeStep) Do(_ context.Context, report *model.AnalysisReport) error {
	records, err := seq.ParseFASTA(strings.NewReader(report.RawInput))
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	if len(records) == 0 {
		return seq.ErrEmptySequence
	}

	// A multi-record file is split before the pipeline runs; here one
	// record is the contract.
	record := records[0]
	if record.Header != "" {
		report.Header = record.Header
	}
	if report.Accession == "" {
		report.Accession = record.Accession
	}
	if report.ProteinName == "" {
		report.ProteinName = record.Name
	}

	sequence, err := seq.Normalize(record.Sequence)
	if err != nil {
		return err
	}
	if err := seq.ValidateLength(sequence, report.Params.SignalPeptideLength); err != nil {
		return err
	}

	report.Sequence = sequence
	report.SequenceLength = len(sequence)

	s.logger.Debug("sequence normalized",
		"sequence", sequence,
		"length", len(sequence),
	)

	return nil
}

// DetectStep finds dibasic cleavage sites in the normalized sequence.
type DetectStep struct {
	// detector performs the motif scan.
	detector *cleavage.Detector

	// logger for structured logging.
	logger *slog.Logger
}

// DetectStepOption configures a DetectStep.
type DetectStepOption func(*DetectStep)

// WithDetectLogger sets a custom logger for the detect step.
func WithDetectLogger(logger *slog.Logger) DetectStepOption {
	return func(s *DetectStep) {
		s.logger = logger
	}
}

// NewDetectStep creates a new cleavage site detection step.
func NewDetectStep(opts ...DetectStepOption) *DetectStep {
	s := &DetectStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.detector = cleavage.NewDetector(cleavage.WithLogger(s.logger))
	return s
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect_sites"
}

// Do executes the detection step.
func (s *DetectStep) Do(_ context.Context, report *model.AnalysisReport) error {
	sites, err := s.detector.Detect(report.Sequence, report.Mode, report.Params)
	if err != nil {
		return fmt.Errorf("detect cleavage sites: %w", err)
	}

	for _, site := range sites {
		report.AddSite(site)
	}

	s.logger.Debug("cleavage sites detected",
		"count", len(sites),
		"mode", report.ModeName,
		"prohormone", cleavage.IsProhormone(sites, report.Params.MinCleavageSites),
	)

	return nil
}

// ExtractStep cuts the sequence into peptide fragments at the detected
// sites.
type ExtractStep struct {
	// extractor performs the cursor walk.
	extractor *extract.Extractor

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new fragment extraction step.
func NewExtractStep(opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.extractor = extract.NewExtractor(extract.WithLogger(s.logger))
	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract_fragments"
}

// Do executes the extraction step.
func (s *ExtractStep) Do(_ context.Context, report *model.AnalysisReport) error {
	fragments := s.extractor.Extract(report.Sequence, report.Sites, report.Params)
	for _, fragment := range fragments {
		report.AddFragment(fragment)
	}

	s.logger.Debug("fragments extracted", "count", len(fragments))
	return nil
}

// ScoreStep assigns bioactivity scores to every extracted fragment using
// the two-tier scorer: remote prediction with heuristic fallback.
type ScoreStep struct {
	// scorer resolves each fragment's score.
	scorer *bioactivity.Scorer

	// logger for structured logging.
	logger *slog.Logger
}

// ScoreStepOption configures a ScoreStep.
type ScoreStepOption func(*ScoreStep)

// WithScoreLogger sets a custom logger for the scoring step.
func WithScoreLogger(logger *slog.Logger) ScoreStepOption {
	return func(s *ScoreStep) {
		s.logger = logger
	}
}

// WithScorer sets the scorer. If not set, a default scorer with the
// built-in prediction endpoint is used.
func WithScorer(scorer *bioactivity.Scorer) ScoreStepOption {
	return func(s *ScoreStep) {
		s.scorer = scorer
	}
}

// NewScoreStep creates a new scoring step.
func NewScoreStep(opts ...ScoreStepOption) *ScoreStep {
	s := &ScoreStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.scorer == nil {
		s.scorer = bioactivity.NewScorer(bioactivity.WithLogger(s.logger))
	}

	return s
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score_fragments"
}

// Do executes the scoring step.
func (s *ScoreStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if err := s.scorer.Score(ctx, report.Fragments); err != nil {
		return fmt.Errorf("score fragments: %w", err)
	}

	s.logger.Debug("fragments scored", "count", len(report.Fragments))
	return nil
}

// CatalogStep annotates fragments that were experimentally observed in
// brain tissue, using the local reference catalog.
//
// The step is best-effort: a missing or broken catalog downgrades to a
// warning and the run keeps its prediction results.
type CatalogStep struct {
	// catalog is the known-peptide database. Nil disables the step.
	catalog *refdb.DB

	// logger for structured logging.
	logger *slog.Logger
}

// CatalogStepOption configures a CatalogStep.
type CatalogStepOption func(*CatalogStep)

// WithCatalogLogger sets a custom logger for the catalog step.
func WithCatalogLogger(logger *slog.Logger) CatalogStepOption {
	return func(s *CatalogStep) {
		s.logger = logger
	}
}

// NewCatalogStep creates a new known-peptide annotation step.
// A nil catalog makes the step a no-op.
func NewCatalogStep(catalog *refdb.DB, opts ...CatalogStepOption) *CatalogStep {
	s := &CatalogStep{
		catalog: catalog,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CatalogStep) Name() string {
	return "annotate_known"
}

// Do executes the catalog annotation step.
func (s *CatalogStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if s.catalog == nil {
		return nil
	}

	if err := s.catalog.Annotate(ctx, report.Fragments); err != nil {
		s.logger.Warn("known-peptide annotation failed", "error", err)
		return nil
	}

	known := 0
	for _, fragment := range report.Fragments {
		if fragment.Known != nil {
			known++
		}
	}
	s.logger.Debug("known-peptide annotation complete", "matches", known)
	return nil
}

// UniProtStep classifies fragments against the curated peptide features of
// the precursor's UniProt entry. It only runs when the report carries an
// accession, and it degrades to unknown annotations on any lookup failure.
type UniProtStep struct {
	// client fetches the precursor entry. Nil disables the step.
	client *uniprot.Client

	// logger for structured logging.
	logger *slog.Logger
}

// UniProtStepOption configures a UniProtStep.
type UniProtStepOption func(*UniProtStep)

// WithUniProtLogger sets a custom logger for the UniProt step.
func WithUniProtLogger(logger *slog.Logger) UniProtStepOption {
	return func(s *UniProtStep) {
		s.logger = logger
	}
}

// NewUniProtStep creates a new curated-annotation step.
// A nil client makes the step a no-op.
func NewUniProtStep(client *uniprot.Client, opts ...UniProtStepOption) *UniProtStep {
	s := &UniProtStep{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *UniProtStep) Name() string {
	return "annotate_curated"
}

// Do executes the curated annotation step.
func (s *UniProtStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if s.client == nil || report.Accession == "" || len(report.Fragments) == 0 {
		return nil
	}

	entry, err := s.client.Fetch(ctx, report.Accession)
	if err != nil {
		if errors.Is(err, uniprot.ErrNotFound) {
			s.logger.Debug("no uniprot entry", "accession", report.Accession)
		} else {
			s.logger.Warn("uniprot lookup failed", "accession", report.Accession, "error", err)
		}
		return nil
	}

	if report.ProteinName == "" {
		report.ProteinName = entry.ProteinName
	}

	for _, fragment := range report.Fragments {
		match := entry.MatchFragment(fragment.Sequence)
		fragment.Curated = &model.CuratedMatch{
			Status: match.Status,
			Name:   match.Name,
			Note:   match.Note,
		}
	}

	s.logger.Debug("curated annotation complete",
		"accession", report.Accession,
		"curated_peptides", len(entry.Peptides),
	)
	return nil
}

// PTMStep detects likely post-translational modifications on each
// fragment. The precursor sequence supplies the context the amidation rule
// needs.
type PTMStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// PTMStepOption configures a PTMStep.
type PTMStepOption func(*PTMStep)

// WithPTMLogger sets a custom logger for the PTM step.
func WithPTMLogger(logger *slog.Logger) PTMStepOption {
	return func(s *PTMStep) {
		s.logger = logger
	}
}

// NewPTMStep creates a new modification detection step.
func NewPTMStep(opts ...PTMStepOption) *PTMStep {
	s := &PTMStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PTMStep) Name() string {
	return "detect_ptms"
}

// Do executes the modification detection step.
func (s *PTMStep) Do(_ context.Context, report *model.AnalysisReport) error {
	total := 0
	for _, fragment := range report.Fragments {
		fragment.PTMs = ptm.Detect(fragment, report.Sequence)
		total += len(fragment.PTMs)
	}

	s.logger.Debug("modifications detected", "count", total)
	return nil
}

// RankStep orders the scored fragments and selects the top candidates.
type RankStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// RankStepOption configures a RankStep.
type RankStepOption func(*RankStep)

// WithRankLogger sets a custom logger for the rank step.
func WithRankLogger(logger *slog.Logger) RankStepOption {
	return func(s *RankStep) {
		s.logger = logger
	}
}

// NewRankStep creates a new ranking step.
func NewRankStep(opts ...RankStepOption) *RankStep {
	s := &RankStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RankStep) Name() string {
	return "rank_fragments"
}

// Do executes the ranking step.
func (s *RankStep) Do(_ context.Context, report *model.AnalysisReport) error {
	report.FragmentsInRange = rank.CountInRange(report.Fragments)
	report.TopFragments = rank.Top(report.Fragments, model.TopFragmentCount)

	s.logger.Debug("fragments ranked",
		"in_range", report.FragmentsInRange,
		"top", len(report.TopFragments),
	)
	return nil
}

// NewAnalysisPipeline assembles the standard analysis pipeline:
// normalize, detect, extract, score, annotate, detect PTMs, rank.
//
// The scorer is required in spirit but a nil scorer gets the default
// two-tier scorer. A nil catalog or client simply omits the corresponding
// annotation. Annotation steps run with continue-on-error semantics built
// into the steps themselves, so the pipeline keeps the default fail-fast
// behavior for the core stages.
func NewAnalysisPipeline(scorer *bioactivity.Scorer, catalog *refdb.DB, client *uniprot.Client, opts ...Option) *Pipeline {
	p := New(opts...)
	logger := p.logger

	p.AddSteps(
		NewNormalizeStep(WithNormalizeLogger(logger)),
		NewDetectStep(WithDetectLogger(logger)),
		NewExtractStep(WithExtractLogger(logger)),
		NewScoreStep(WithScorer(scorer), WithScoreLogger(logger)),
		NewCatalogStep(catalog, WithCatalogLogger(logger)),
		NewUniProtStep(client, WithUniProtLogger(logger)),
		NewPTMStep(WithPTMLogger(logger)),
		NewRankStep(WithRankLogger(logger)),
	)

	return p
}

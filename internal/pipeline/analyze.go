package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/peptiscan/internal/bioactivity"
	"github.com/nao1215/peptiscan/internal/model"
	"github.com/nao1215/peptiscan/internal/refdb"
	"github.com/nao1215/peptiscan/internal/uniprot"
)

// analyzeConfig collects the per-run knobs of Analyze.
type analyzeConfig struct {
	// mode selects strict or permissive site detection.
	mode model.DetectionMode

	// params is the analysis parameter set.
	params model.Parameters

	// scorer resolves fragment bioactivity. Nil gets the default
	// two-tier scorer.
	scorer *bioactivity.Scorer

	// catalog enables known-peptide annotation when non-nil.
	catalog *refdb.DB

	// client enables curated UniProt annotation when non-nil.
	client *uniprot.Client

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeOption configures a single Analyze run.
type AnalyzeOption func(*analyzeConfig)

// WithAnalyzeMode selects the detection mode. The default is strict.
func WithAnalyzeMode(mode model.DetectionMode) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.mode = mode
	}
}

// WithAnalyzeParameters sets the analysis parameters. The default is
// model.DefaultParameters.
func WithAnalyzeParameters(params model.Parameters) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.params = params
	}
}

// WithAnalyzeScorer sets the bioactivity scorer.
func WithAnalyzeScorer(scorer *bioactivity.Scorer) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.scorer = scorer
	}
}

// WithAnalyzeCatalog enables known-peptide annotation against the given
// reference catalog.
func WithAnalyzeCatalog(catalog *refdb.DB) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.catalog = catalog
	}
}

// WithAnalyzeUniProt enables curated annotation through the given UniProt
// client. The lookup only fires for inputs that carry an accession.
func WithAnalyzeUniProt(client *uniprot.Client) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.client = client
	}
}

// WithAnalyzeLogger sets a custom logger for the run.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.logger = logger
	}
}

// Analyze runs one precursor through the standard pipeline and returns its
// report. It is the single-call entry point for library callers; the CLI
// and the batch processor assemble the same pipeline themselves.
//
// The report is returned even when the run fails, so callers can inspect
// partial results and the recorded error. A timed-out run marks the report
// rather than discarding it.
func Analyze(ctx context.Context, input Input, opts ...AnalyzeOption) (*model.AnalysisReport, error) {
	cfg := &analyzeConfig{
		mode:   model.ModeStrict,
		params: model.DefaultParameters(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.scorer == nil {
		cfg.scorer = bioactivity.NewScorer(bioactivity.WithLogger(cfg.logger))
	}

	report := model.NewAnalysisReport(input.Raw, cfg.mode, cfg.params)
	report.Accession = input.Accession
	report.ProteinName = input.ProteinName

	p := NewAnalysisPipeline(cfg.scorer, cfg.catalog, cfg.client, WithLogger(cfg.logger))
	if err := p.Execute(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

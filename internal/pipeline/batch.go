package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/peptiscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// Input is one unit of batch work: the raw text of a single precursor,
// optionally tagged with an accession the text itself doesn't carry.
type Input struct {
	// Raw is the precursor input, FASTA-formatted or bare residues.
	Raw string

	// Accession is an optional UniProt accession for the precursor,
	// used when the raw input has no header to parse one from.
	Accession string

	// ProteinName optionally names the precursor up front.
	ProteinName string
}

// BatchProcessor handles concurrent analysis of multiple precursors.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-precursor execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each analysis.
	// We use a factory to ensure each run gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// mode and params seed each run's report.
	mode   model.DetectionMode
	params model.Parameters

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed analysis reports.
	// Access is synchronized via mutex.
	results []*model.AnalysisReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithBatchConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each analysis to create a
// fresh pipeline instance. This ensures that pipeline state doesn't leak
// between runs and allows for per-run customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, mode model.DetectionMode, params model.Parameters, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		mode:            mode,
		params:          params,
		concurrency:     4,
		results:         make([]*model.AnalysisReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes multiple precursors concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each precursor gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports in input order, even for precursors that failed.
// The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []Input) ([]*model.AnalysisReport, error) {
	bp.logger.Info("starting batch processing",
		"total_inputs", len(inputs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.AnalysisReport, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("analyzing precursor",
				"index", i+1,
				"total", len(inputs),
				"accession", input.Accession,
			)

			// Create report for this precursor
			report := model.NewAnalysisReport(input.Raw, bp.mode, bp.params)
			report.Accession = input.Accession
			report.ProteinName = input.ProteinName

			// Create and execute pipeline
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report contains error information if the run failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("analysis failed",
					"index", i+1,
					"accession", input.Accession,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue
				// the remaining analyses. The error is in the report.
				return nil
			}

			bp.logger.Debug("analysis completed",
				"index", i+1,
				"accession", input.Accession,
			)

			return nil
		})
	}

	// Wait for all analyses to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_inputs", len(inputs),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback analyzes multiple precursors and calls a
// callback for each completed run. This is useful for streaming results.
//
// The callback receives the report and the index of the input in the
// original slice. The callback is called from the goroutine that completed
// the run, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	inputs []Input,
	callback func(report *model.AnalysisReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_inputs", len(inputs),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewAnalysisReport(input.Raw, bp.mode, bp.params)
			report.Accession = input.Accession
			report.ProteinName = input.ProteinName

			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			// Call the callback with the result
			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}

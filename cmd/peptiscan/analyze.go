package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/peptiscan/internal/bioactivity"
	"github.com/nao1215/peptiscan/internal/config"
	"github.com/nao1215/peptiscan/internal/log"
	"github.com/nao1215/peptiscan/internal/model"
	"github.com/nao1215/peptiscan/internal/pipeline"
	"github.com/nao1215/peptiscan/internal/refdb"
	"github.com/nao1215/peptiscan/internal/report"
	"github.com/nao1215/peptiscan/internal/seq"
	"github.com/nao1215/peptiscan/internal/uniprot"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [sequence|fasta-file]...",
		Short: "Predict bioactive peptides in a protein precursor",
		Long: `Analyze runs the peptide prediction pipeline on precursor sequences.

For each precursor it:
- Normalizes and validates the input sequence
- Detects dibasic proprotein-convertase cleavage sites
- Extracts the peptide fragments between accepted sites
- Scores each fragment's bioactivity (remote prediction with local fallback)
- Annotates fragments against the known-peptide catalog and UniProt
- Ranks the fragments and reports the top candidates

Examples:
  # Analyze a raw sequence
  peptiscan analyze MKILLTCLVAVALARPKHPIKHQGLPQEVLNENLLRF

  # Analyze all records in a FASTA file
  peptiscan analyze precursors.fasta

  # Fetch a precursor from UniProt by accession
  peptiscan analyze --accession P01189

  # Permissive detection with a lower site threshold
  peptiscan analyze --mode permissive --min-sites 2 precursors.fasta

  # Output JSON report to a file
  peptiscan analyze --json -o report.json precursors.fasta

Configuration file (.peptiscan) example:
  defaults:
    mode: strict
  profiles:
    pomc:
      mode: permissive
      minCleavageSpacing: 3`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Detection flags
	cmd.Flags().StringP("mode", "M", "strict",
		"Cleavage site detection mode: strict or permissive")
	cmd.Flags().Int("signal-length", model.DefaultSignalPeptideLength,
		"Number of N-terminal residues treated as the signal peptide")
	cmd.Flags().Int("min-sites", model.DefaultMinCleavageSites,
		"Minimum cleavage sites for prohormone classification")
	cmd.Flags().Int("min-spacing", model.DefaultMinCleavageSpacing,
		"Minimum residue distance between accepted cleavage sites")

	// Input flags
	cmd.Flags().StringSliceP("accession", "a", nil,
		"UniProt accession to fetch and analyze (repeatable)")

	// Scoring flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each remote prediction request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum concurrent prediction requests per precursor")
	cmd.Flags().String("predictor", "",
		"Bioactivity prediction endpoint URL (\"off\" disables remote scoring)")

	// Annotation flags
	cmd.Flags().BoolP("uniprot", "u", false,
		"Annotate fragments against curated UniProt peptide features")
	cmd.Flags().String("catalog", "",
		"Known-peptide catalog directory (default: XDG data directory)")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .peptiscan in current or home directory)")
	cmd.Flags().StringP("profile", "p", "",
		"Named analysis profile from the configuration file")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with sequence truncation
	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	modeName, err := cmd.Flags().GetString("mode")
	if err != nil {
		return nil, err
	}
	cfg.Mode, err = model.ParseDetectionMode(modeName)
	if err != nil {
		return nil, err
	}

	cfg.Params.SignalPeptideLength, err = cmd.Flags().GetInt("signal-length")
	if err != nil {
		return nil, err
	}

	cfg.Params.MinCleavageSites, err = cmd.Flags().GetInt("min-sites")
	if err != nil {
		return nil, err
	}

	cfg.Params.MinCleavageSpacing, err = cmd.Flags().GetInt("min-spacing")
	if err != nil {
		return nil, err
	}

	cfg.Accessions, err = cmd.Flags().GetStringSlice("accession")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.PredictorURL, err = cmd.Flags().GetString("predictor")
	if err != nil {
		return nil, err
	}

	cfg.UniProtLookup, err = cmd.Flags().GetBool("uniprot")
	if err != nil {
		return nil, err
	}

	cfg.CatalogDir, err = cmd.Flags().GetString("catalog")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load analysis profiles from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Profiles = &config.File{Profiles: make(map[string]config.Profile)}
	}

	// Apply the requested profile (or the file's defaults) on top of the
	// flag-derived parameters. Profile zero values leave flags untouched.
	profileName, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		if _, ok := cfg.Profiles.Profiles[profileName]; !ok {
			return nil, fmt.Errorf("profile not found in configuration file: %s", profileName)
		}
		cfg.Profiles.GetProfile(profileName).Apply(cfg)
	} else if configPath != "" {
		cfg.Profiles.Defaults.Apply(cfg)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Get positional arguments (sequences or FASTA file paths)
	cfg.Inputs = args

	return cfg, nil
}

// runAnalyze executes the analysis.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	logger.Info("starting analysis",
		"inputs", len(cfg.Inputs),
		"accessions", len(cfg.Accessions),
		"mode", cfg.Mode.String(),
		"batchSize", cfg.BatchSize,
	)

	// Open the known-peptide catalog if present. A missing catalog is not
	// an error: annotation is simply skipped.
	catalog := openCatalog(cfg, logger)
	if catalog != nil {
		defer catalog.Close()
	}

	// UniProt client serves both accession fetching and curated-feature
	// annotation.
	var upClient *uniprot.Client
	if cfg.UniProtLookup || len(cfg.Accessions) > 0 {
		upClient = uniprot.NewClient()
	}

	// Collect all inputs up front so invalid accessions fail before any
	// analysis starts.
	inputs, err := collectInputs(ctx, cfg, upClient)
	if err != nil {
		return err
	}

	scorer := newScorer(cfg, logger)

	// Curated-feature annotation is opt-in; without it the client is only
	// used for fetching.
	annotateClient := upClient
	if !cfg.UniProtLookup {
		annotateClient = nil
	}

	analyzeOpts := []pipeline.AnalyzeOption{
		pipeline.WithAnalyzeMode(cfg.Mode),
		pipeline.WithAnalyzeParameters(cfg.Params),
		pipeline.WithAnalyzeScorer(scorer),
		pipeline.WithAnalyzeCatalog(catalog),
		pipeline.WithAnalyzeUniProt(annotateClient),
		pipeline.WithAnalyzeLogger(logger),
	}

	// Open the report destination once so multi-input runs append rather
	// than overwrite. When reports go to a file, a summary is echoed to
	// stdout so the run is not silent.
	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()

	var echo io.Writer
	if cfg.ReportFile != "" {
		echo = stdout
	}

	// Use batch processor for parallel analysis if multiple inputs
	if len(inputs) > 1 && cfg.BatchSize > 1 {
		factory := func() *pipeline.Pipeline {
			return pipeline.NewAnalysisPipeline(scorer, catalog, annotateClient,
				pipeline.WithLogger(logger))
		}
		return runBatchAnalysis(ctx, cfg, inputs, factory, output, echo, logger)
	}

	return runSequentialAnalysis(ctx, cfg, inputs, analyzeOpts, output, echo, logger)
}

// openCatalog opens the known-peptide catalog database, if one exists.
// Returns nil when no catalog has been imported.
func openCatalog(cfg *config.Config, logger *slog.Logger) *refdb.DB {
	dir := cfg.CatalogDir
	if dir == "" {
		dir = config.XDGDataDir()
	}

	opts := refdb.DefaultOptions()
	opts.CreateIfNotExists = false

	catalog, err := refdb.Open(dir, opts)
	if err != nil {
		if cfg.CatalogDir != "" {
			// User pointed at a catalog explicitly; tell them it's unusable.
			logger.Warn("known-peptide catalog unavailable", "dir", dir, "error", err)
		} else {
			logger.Debug("no known-peptide catalog found", "dir", dir)
		}
		return nil
	}

	logger.Info("known-peptide catalog opened", "dir", dir)
	return catalog
}

// newScorer builds the bioactivity scorer from the configuration.
func newScorer(cfg *config.Config, logger *slog.Logger) *bioactivity.Scorer {
	scorerOpts := []bioactivity.ScorerOption{
		bioactivity.WithConcurrency(cfg.Concurrency),
		bioactivity.WithLogger(logger),
	}

	if cfg.PredictorURL == "off" {
		scorerOpts = append(scorerOpts, bioactivity.WithClient(nil))
	} else {
		clientOpts := []bioactivity.ClientOption{
			bioactivity.WithTimeout(cfg.Timeout),
		}
		if cfg.PredictorURL != "" {
			clientOpts = append(clientOpts, bioactivity.WithBaseURL(cfg.PredictorURL))
		}
		scorerOpts = append(scorerOpts, bioactivity.WithClient(bioactivity.NewClient(clientOpts...)))
	}

	return bioactivity.NewScorer(scorerOpts...)
}

// collectInputs assembles the batch inputs from positional arguments and
// fetched UniProt accessions. Positional arguments naming readable files are
// read as FASTA; everything else is treated as a raw sequence.
func collectInputs(ctx context.Context, cfg *config.Config, upClient *uniprot.Client) ([]pipeline.Input, error) {
	var inputs []pipeline.Input

	for _, arg := range cfg.Inputs {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			fileInputs, err := readFASTAFile(arg)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, fileInputs...)
			continue
		}
		inputs = append(inputs, pipeline.Input{Raw: arg})
	}

	for _, accession := range cfg.Accessions {
		entry, err := upClient.Fetch(ctx, accession)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", accession, err)
		}
		inputs = append(inputs, pipeline.Input{
			Raw:         entry.Sequence,
			Accession:   entry.Accession,
			ProteinName: entry.ProteinName,
		})
	}

	return inputs, nil
}

// readFASTAFile reads a FASTA file and returns one input per record, so
// multi-record files fan out into independent analyses.
func readFASTAFile(path string) ([]pipeline.Input, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	records, err := seq.ParseFASTA(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no sequences found in %s", path)
	}

	inputs := make([]pipeline.Input, 0, len(records))
	for _, record := range records {
		raw := record.Sequence
		if record.Header != "" {
			raw = ">" + record.Header + "\n" + record.Sequence
		}
		inputs = append(inputs, pipeline.Input{
			Raw:         raw,
			Accession:   record.Accession,
			ProteinName: record.Name,
		})
	}
	return inputs, nil
}

// openOutput returns the report destination and a cleanup function.
// When no output file is configured, stdout is used and cleanup is a no-op.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return stdout, func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// runSequentialAnalysis analyzes inputs one at a time through the
// single-run entry point.
func runSequentialAnalysis(ctx context.Context, cfg *config.Config, inputs []pipeline.Input, analyzeOpts []pipeline.AnalyzeOption, output, echo io.Writer, logger *slog.Logger) error {
	for _, input := range inputs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		startTime := time.Now()

		analysisReport, err := pipeline.Analyze(ctx, input, analyzeOpts...)
		if err != nil {
			logger.Error("analysis failed", "accession", input.Accession, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", describeInput(input), err)
			continue
		}

		logger.Debug("analysis completed",
			"accession", input.Accession,
			"elapsed", time.Since(startTime).Round(time.Millisecond),
		)

		if err := outputReport(cfg, output, echo, analysisReport); err != nil {
			logger.Error("report failed", "accession", input.Accession, "error", err)
		}
	}

	return nil
}

// runBatchAnalysis analyzes multiple inputs concurrently using BatchProcessor.
func runBatchAnalysis(ctx context.Context, cfg *config.Config, inputs []pipeline.Input, factory func() *pipeline.Pipeline, output, echo io.Writer, logger *slog.Logger) error {
	logger.Info("starting batch analysis",
		"inputs", len(inputs),
		"concurrency", cfg.BatchSize,
	)

	bp := pipeline.NewBatchProcessor(factory, cfg.Mode, cfg.Params,
		pipeline.WithBatchConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// JSON batch output is a single array in input order, so the whole
	// batch is gathered before writing.
	if cfg.JSONReport {
		reports, err := bp.ProcessBatch(ctx, inputs)
		if err != nil {
			return err
		}

		succeeded := make([]*model.AnalysisReport, 0, len(reports))
		for i, analysisReport := range reports {
			if analysisReport.Error != nil {
				fmt.Fprintf(os.Stderr, "[%d/%d] Analysis error for %s: %v\n",
					i+1, len(inputs), describeInput(inputs[i]), analysisReport.Error)
				continue
			}
			succeeded = append(succeeded, analysisReport)
		}

		writer := report.NewBatchJSONWriter(output, report.WithPrettyPrint())
		if _, err := writer.WriteBatch(succeeded); err != nil {
			return fmt.Errorf("failed to write batch report: %w", err)
		}
		return nil
	}

	// Process with callback for streaming output; the mutex serializes
	// writes from concurrent workers.
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, inputs, func(analysisReport *model.AnalysisReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		if analysisReport.Error != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Analysis error for %s: %v\n",
				index+1, len(inputs), describeInput(inputs[index]), analysisReport.Error)
			return
		}

		if err := outputReport(cfg, output, echo, analysisReport); err != nil {
			logger.Error("report failed", "accession", analysisReport.Accession, "error", err)
		}
	})

	return err
}

// describeInput returns a short label for error messages: the accession when
// known, otherwise a truncated form of the raw input.
func describeInput(input pipeline.Input) string {
	if input.Accession != "" {
		return input.Accession
	}
	raw := strings.TrimSpace(input.Raw)
	if line, _, found := strings.Cut(raw, "\n"); found {
		raw = line
	}
	if len(raw) > 40 {
		return raw[:37] + "..."
	}
	if raw == "" {
		return "(empty input)"
	}
	return raw
}

// outputReport writes the analysis report in the requested format. JSON
// reports carry a version envelope so consumers can detect schema changes.
// A non-nil echo writer additionally receives a human-readable summary,
// used when the primary output is a file.
func outputReport(cfg *config.Config, output, echo io.Writer, analysisReport *model.AnalysisReport) error {
	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if echo != nil {
		writer = report.NewMultiWriter(writer, report.NewSimpleWriter(echo))
	}

	_, err := writer.Write(analysisReport)
	return err
}

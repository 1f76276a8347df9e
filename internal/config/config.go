package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/peptiscan/internal/model"
)

// Default configuration values.
// Analysis parameter defaults (signal peptide length, site thresholds)
// live in the model package next to the types they parameterize; the
// values here cover the tool's ambient behavior.
const (
	// DefaultTimeout bounds one remote bioactivity prediction. The
	// prediction service is best-effort; a fragment whose prediction runs
	// longer than this is scored heuristically instead.
	DefaultTimeout = 10 * time.Second

	// DefaultConcurrency caps the number of fragments scored at once.
	// Eight keeps the prediction service comfortable while hiding most of
	// its round-trip latency.
	DefaultConcurrency = 8

	// DefaultBatchSize of 4 concurrent analyses balances throughput with
	// resource usage when analyzing multi-record FASTA files. Each analysis
	// already fans out its own scoring requests, so this stays modest.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "peptiscan"
)

// Config holds all configuration options for peptiscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., AnalysisConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Mode selects strict or permissive cleavage site detection.
	Mode model.DetectionMode

	// Params are the analysis parameters applied to every input: signal
	// peptide length, minimum site count, and minimum site spacing.
	Params model.Parameters

	// Timeout is the per-request timeout for remote predictions and
	// UniProt lookups.
	Timeout time.Duration

	// PredictorURL is the bioactivity prediction endpoint. Empty means the
	// built-in default; "off" disables the remote tier entirely.
	PredictorURL string

	// Concurrency caps the scoring fan-out within one analysis.
	Concurrency int

	// BatchSize is the number of concurrent analyses when processing
	// multiple inputs.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .peptiscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Profiles holds named analysis profiles loaded from the config file.
	// This is populated by LoadConfigFile and consulted per input.
	Profiles *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Inputs is the list of raw sequences or FASTA file paths to analyze.
	Inputs []string

	// Accessions is the list of UniProt accessions to fetch and analyze.
	Accessions []string

	// CatalogDir is the directory holding the known-peptide catalog
	// database. When empty, known-peptide annotation is skipped.
	// Defaults to the XDG data directory when init has imported a catalog.
	CatalogDir string

	// UniProtLookup enables annotation of predicted fragments against
	// curated UniProt peptide features. Only meaningful when the precursor
	// has an accession.
	UniProtLookup bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, the
// analysis parameters). This also serves as documentation of the defaults.
func NewConfig() *Config {
	return &Config{
		Mode:        model.ModeStrict,
		Params:      model.DefaultParameters(),
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		BatchSize:   DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for peptiscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/peptiscan
// On macOS: ~/Library/Application Support/peptiscan
// On Windows: %LOCALAPPDATA%\peptiscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for peptiscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/peptiscan
// On macOS: ~/Library/Application Support/peptiscan
// On Windows: %APPDATA%\peptiscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for peptiscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/peptiscan
// On macOS: ~/Library/Caches/peptiscan
// On Windows: %LOCALAPPDATA%\peptiscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any analysis begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have something to analyze
	if len(c.Inputs) == 0 && len(c.Accessions) == 0 {
		return ErrNoInput
	}

	// Timeout must be positive; zero timeout would fail every prediction
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Concurrency must be positive; zero would score nothing
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// BatchSize must be positive; zero would mean no analyses
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// Analysis parameters carry their own sentinel
	if err := c.Params.Validate(); err != nil {
		return err
	}

	return nil
}

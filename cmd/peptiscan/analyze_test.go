package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/peptiscan/internal/config"
	"github.com/nao1215/peptiscan/internal/model"
	"github.com/nao1215/peptiscan/internal/pipeline"
	"github.com/nao1215/peptiscan/internal/report"
)

// testPrecursor is a 40-residue precursor with a single KR cleavage site
// after the 20-residue signal peptide region.
const testPrecursor = "AAAAAAAAAAAAAAAAAAAA" + "GGGGG" + "KR" + "S" + "GGGGGGGGGGGG"

// TestNewAnalyzeCmd tests the analyze command creation.
func TestNewAnalyzeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAnalyzeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "analyze [sequence|fasta-file]..." {
			t.Errorf("unexpected use: %q", cmd.Use)
		}
	})

	t.Run("has detection flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"mode", "signal-length", "min-sites", "min-spacing"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has scoring flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"timeout", "concurrency", "predictor"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has report flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has annotation flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"accession", "uniprot", "catalog"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestGetVerboseFlag tests verbose flag retrieval from the command tree.
func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("defaults to false", func(t *testing.T) {
		t.Parallel()
		if getVerboseFlag(NewAnalyzeCmd()) {
			t.Error("expected false by default")
		}
	})

	t.Run("reads parent persistent flag", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		analyzeCmd, _, err := root.Find([]string{"analyze"})
		if err != nil {
			t.Fatalf("failed to find analyze command: %v", err)
		}
		if !getVerboseFlag(analyzeCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		cfg, err := buildConfig(cmd, []string{testPrecursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Inputs) != 1 || cfg.Inputs[0] != testPrecursor {
			t.Errorf("expected inputs [%s], got %v", testPrecursor, cfg.Inputs)
		}
		if cfg.Mode != model.ModeStrict {
			t.Errorf("expected strict mode, got %v", cfg.Mode)
		}
		if cfg.Params != model.DefaultParameters() {
			t.Errorf("expected default parameters, got %+v", cfg.Params)
		}
	})

	t.Run("builds config with permissive mode", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("mode", "permissive")
		cfg, err := buildConfig(cmd, []string{testPrecursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Mode != model.ModePermissive {
			t.Errorf("expected permissive mode, got %v", cfg.Mode)
		}
	})

	t.Run("returns error for unknown mode", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("mode", "aggressive")
		_, err := buildConfig(cmd, []string{testPrecursor})
		if err == nil {
			t.Fatal("expected error for unknown mode")
		}
	})

	t.Run("builds config with custom detection parameters", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("signal-length", "24")
		_ = cmd.Flags().Set("min-sites", "2")
		_ = cmd.Flags().Set("min-spacing", "3")
		cfg, err := buildConfig(cmd, []string{testPrecursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Params.SignalPeptideLength != 24 {
			t.Errorf("expected signal length 24, got %d", cfg.Params.SignalPeptideLength)
		}
		if cfg.Params.MinCleavageSites != 2 {
			t.Errorf("expected min sites 2, got %d", cfg.Params.MinCleavageSites)
		}
		if cfg.Params.MinCleavageSpacing != 3 {
			t.Errorf("expected min spacing 3, got %d", cfg.Params.MinCleavageSpacing)
		}
	})

	t.Run("builds config with accessions", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("accession", "P01189,P01308")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Accessions) != 2 {
			t.Errorf("expected 2 accessions, got %v", cfg.Accessions)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{testPrecursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("builds config with output file", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("output", "/tmp/report.json")
		cfg, err := buildConfig(cmd, []string{testPrecursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/report.json" {
			t.Errorf("expected ReportFile '/tmp/report.json', got %q", cfg.ReportFile)
		}
	})

	t.Run("applies named profile from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "peptiscan.yaml")

		content := []byte(`
defaults:
  signalPeptideLength: 22
profiles:
  pomc:
    mode: permissive
    minCleavageSpacing: 3
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("config", configPath)
		_ = cmd.Flags().Set("profile", "pomc")
		cfg, err := buildConfig(cmd, []string{testPrecursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Mode != model.ModePermissive {
			t.Errorf("expected permissive mode from profile, got %v", cfg.Mode)
		}
		if cfg.Params.MinCleavageSpacing != 3 {
			t.Errorf("expected spacing 3 from profile, got %d", cfg.Params.MinCleavageSpacing)
		}
		if cfg.Params.SignalPeptideLength != 22 {
			t.Errorf("expected signal length 22 from defaults, got %d", cfg.Params.SignalPeptideLength)
		}
	})

	t.Run("applies file defaults when no profile selected", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "peptiscan.yaml")

		content := []byte(`
defaults:
  signalPeptideLength: 22
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{testPrecursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Params.SignalPeptideLength != 22 {
			t.Errorf("expected signal length 22 from defaults, got %d", cfg.Params.SignalPeptideLength)
		}
		if cfg.Mode != model.ModeStrict {
			t.Errorf("expected strict mode preserved, got %v", cfg.Mode)
		}
	})

	t.Run("returns error for unknown profile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "peptiscan.yaml")
		if err := os.WriteFile(configPath, []byte("profiles: {}\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("config", configPath)
		_ = cmd.Flags().Set("profile", "missing")
		_, err := buildConfig(cmd, []string{testPrecursor})
		if err == nil {
			t.Fatal("expected error for unknown profile")
		}
		if !strings.Contains(err.Error(), "profile not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := buildConfig(cmd, []string{testPrecursor})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("{invalid yaml"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, []string{testPrecursor})
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})
}

// TestCollectInputs tests input assembly from arguments.
func TestCollectInputs(t *testing.T) {
	t.Parallel()

	t.Run("raw sequence argument", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Inputs = []string{testPrecursor}

		inputs, err := collectInputs(context.Background(), cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inputs) != 1 {
			t.Fatalf("expected 1 input, got %d", len(inputs))
		}
		if inputs[0].Raw != testPrecursor {
			t.Errorf("unexpected raw input: %q", inputs[0].Raw)
		}
	})

	t.Run("multi-record FASTA file fans out", func(t *testing.T) {
		t.Parallel()

		fastaPath := filepath.Join(t.TempDir(), "precursors.fasta")
		fasta := ">sp|P01189|COLI_HUMAN Pro-opiomelanocortin\n" + testPrecursor + "\n" +
			">sp|P01308|INS_HUMAN Insulin\n" + testPrecursor + "\n"
		if err := os.WriteFile(fastaPath, []byte(fasta), 0o600); err != nil {
			t.Fatalf("failed to write fasta: %v", err)
		}

		cfg := config.NewConfig()
		cfg.Inputs = []string{fastaPath}

		inputs, err := collectInputs(context.Background(), cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inputs) != 2 {
			t.Fatalf("expected 2 inputs, got %d", len(inputs))
		}
		if inputs[0].Accession != "P01189" {
			t.Errorf("first accession = %q, want P01189", inputs[0].Accession)
		}
		if inputs[1].Accession != "P01308" {
			t.Errorf("second accession = %q, want P01308", inputs[1].Accession)
		}
		if !strings.HasPrefix(inputs[0].Raw, ">sp|P01189|") {
			t.Errorf("expected FASTA header preserved, got %q", inputs[0].Raw)
		}
	})

	t.Run("empty FASTA file is an error", func(t *testing.T) {
		t.Parallel()

		fastaPath := filepath.Join(t.TempDir(), "empty.fasta")
		if err := os.WriteFile(fastaPath, nil, 0o600); err != nil {
			t.Fatalf("failed to write fasta: %v", err)
		}

		cfg := config.NewConfig()
		cfg.Inputs = []string{fastaPath}

		_, err := collectInputs(context.Background(), cfg, nil)
		if err == nil {
			t.Fatal("expected error for empty FASTA file")
		}
	})
}

// TestDescribeInput tests the error-message label for inputs.
func TestDescribeInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input pipeline.Input
		want  string
	}{
		{
			name:  "accession wins",
			input: pipeline.Input{Raw: testPrecursor, Accession: "P01189"},
			want:  "P01189",
		},
		{
			name:  "short raw sequence",
			input: pipeline.Input{Raw: "YGGFM"},
			want:  "YGGFM",
		},
		{
			name:  "long raw sequence truncated",
			input: pipeline.Input{Raw: strings.Repeat("A", 60)},
			want:  strings.Repeat("A", 37) + "...",
		},
		{
			name:  "fasta input uses header line",
			input: pipeline.Input{Raw: ">header line\n" + testPrecursor},
			want:  ">header line",
		},
		{
			name:  "empty input",
			input: pipeline.Input{},
			want:  "(empty input)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := describeInput(tt.input); got != tt.want {
				t.Errorf("describeInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestOutputReport tests report format selection.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	newReport := func() *model.AnalysisReport {
		r := model.NewAnalysisReport(testPrecursor, model.ModeStrict, model.DefaultParameters())
		r.SequenceLength = len(testPrecursor)
		return r
	}

	t.Run("default is human-readable", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cfg := config.NewConfig()

		if err := outputReport(cfg, &buf, nil, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "PEPTISCAN ANALYSIS REPORT") {
			t.Error("expected human-readable output")
		}
	})

	t.Run("json format wraps the report in a version envelope", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cfg := config.NewConfig()
		cfg.JSONReport = true

		if err := outputReport(cfg, &buf, nil, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded report.JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Version == "" {
			t.Error("expected version in JSON envelope")
		}
		if decoded.Report == nil || decoded.Report.SequenceLength != len(testPrecursor) {
			t.Errorf("decoded report = %+v, want sequence length %d", decoded.Report, len(testPrecursor))
		}
	})

	t.Run("markdown format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cfg := config.NewConfig()
		cfg.MarkdownReport = true

		if err := outputReport(cfg, &buf, nil, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "# Peptide Analysis Report") {
			t.Error("expected markdown output")
		}
	})

	t.Run("echo writer receives a summary alongside the report", func(t *testing.T) {
		t.Parallel()

		var file, echo bytes.Buffer
		cfg := config.NewConfig()
		cfg.MarkdownReport = true

		if err := outputReport(cfg, &file, &echo, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(file.String(), "# Peptide Analysis Report") {
			t.Error("expected markdown in primary output")
		}
		if !strings.Contains(echo.String(), "PEPTISCAN ANALYSIS REPORT") {
			t.Error("expected human-readable summary in echo output")
		}
	})
}

// TestAnalyzeCommandEndToEnd tests full command execution without any
// network access.
func TestAnalyzeCommandEndToEnd(t *testing.T) {
	t.Run("analyzes raw sequence to stdout", func(t *testing.T) {
		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetErr(&buf)
		root.SetArgs([]string{
			"analyze",
			"--predictor", "off",
			"--mode", "permissive",
			"--min-sites", "1",
			testPrecursor,
		})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PEPTISCAN ANALYSIS REPORT") {
			t.Error("expected report header in output")
		}
		if !strings.Contains(output, "TOP CANDIDATES") {
			t.Error("expected top candidates section")
		}
		if !strings.Contains(output, "[+] KR at position 27") {
			t.Error("expected detected cleavage site")
		}
	})

	t.Run("writes JSON report to file", func(t *testing.T) {
		reportPath := filepath.Join(t.TempDir(), "out", "report.json")

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{
			"analyze",
			"--predictor", "off",
			"--mode", "permissive",
			"--min-sites", "1",
			"--json",
			"-o", reportPath,
			testPrecursor,
		})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}

		var decoded report.JSONReport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("report is not valid JSON: %v", err)
		}
		if decoded.Version == "" {
			t.Error("expected version in JSON envelope")
		}
		if decoded.Report == nil {
			t.Fatal("expected report in JSON envelope")
		}
		if decoded.Report.SequenceLength != len(testPrecursor) {
			t.Errorf("sequence length = %d, want %d", decoded.Report.SequenceLength, len(testPrecursor))
		}
		if len(decoded.Report.Fragments) != 2 {
			t.Errorf("expected 2 fragments, got %d", len(decoded.Report.Fragments))
		}
	})

	t.Run("batch analyzes multi-record FASTA file", func(t *testing.T) {
		fastaPath := filepath.Join(t.TempDir(), "precursors.fasta")
		fasta := ">sp|P01189|COLI_HUMAN Pro-opiomelanocortin\n" + testPrecursor + "\n" +
			">sp|P01308|INS_HUMAN Insulin\n" + testPrecursor + "\n"
		if err := os.WriteFile(fastaPath, []byte(fasta), 0o600); err != nil {
			t.Fatalf("failed to write fasta: %v", err)
		}

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{
			"analyze",
			"--predictor", "off",
			"--mode", "permissive",
			"--min-sites", "1",
			fastaPath,
		})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := strings.Count(buf.String(), "PEPTISCAN ANALYSIS REPORT"); got != 2 {
			t.Errorf("expected 2 reports, got %d", got)
		}
	})

	t.Run("batch JSON output is a single ordered array", func(t *testing.T) {
		fastaPath := filepath.Join(t.TempDir(), "precursors.fasta")
		fasta := ">sp|P01189|COLI_HUMAN Pro-opiomelanocortin\n" + testPrecursor + "\n" +
			">sp|P01308|INS_HUMAN Insulin\n" + testPrecursor + "\n"
		if err := os.WriteFile(fastaPath, []byte(fasta), 0o600); err != nil {
			t.Fatalf("failed to write fasta: %v", err)
		}

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{
			"analyze",
			"--predictor", "off",
			"--mode", "permissive",
			"--min-sites", "1",
			"--json",
			fastaPath,
		})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []*model.AnalysisReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("batch output is not one JSON array: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 reports in array, got %d", len(decoded))
		}
		if decoded[0].Accession != "P01189" || decoded[1].Accession != "P01308" {
			t.Errorf("reports out of input order: %s, %s",
				decoded[0].Accession, decoded[1].Accession)
		}
	})

	t.Run("fails without input", func(t *testing.T) {
		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"analyze"})

		err := root.Execute()
		if err == nil {
			t.Fatal("expected error without input")
		}
		if !strings.Contains(err.Error(), "configuration error") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects conflicting report formats", func(t *testing.T) {
		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"analyze", "--json", "--markdown", testPrecursor})

		if err := root.Execute(); err == nil {
			t.Fatal("expected error for conflicting formats")
		}
	})
}

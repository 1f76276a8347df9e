package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/peptiscan/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.AnalysisReport {
	report := model.NewAnalysisReport("", model.ModeStrict, model.DefaultParameters())
	report.Accession = "P01189"
	report.ProteinName = "Pro-opiomelanocortin"
	report.Sequence = strings.Repeat("A", 60)
	report.SequenceLength = 60
	report.DateAnalyzed = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	report.AddSite(model.CleavageSite{Position: 30, Motif: "KR", RawIndex: 28})

	first := model.NewPeptideFragment("SYSMEHFRWGKPVKKRYGGFM", 0, 10, "KR")
	first.BioactivityScore = 82.5
	first.ScoreSource = model.ScoreSourceRemote
	first.Amphipathic = &model.AmphipathicProfile{
		Score:           40.0,
		BasicCount:      2,
		LipophilicCount: 2,
		BasicRatio:      20.0,
		LipophilicRatio: 20.0,
	}
	first.Known = &model.KnownPeptide{
		ProteinName: "Pro-opiomelanocortin",
		Accession:   "P01189",
		MSMSCount:   42,
		IsAmidated:  true,
	}
	first.Curated = &model.CuratedMatch{
		Status: "exact",
		Name:   "Melanotropin alpha",
	}
	first.PTMs = []model.PTM{
		{
			Type:     "c_terminal_amidation",
			Name:     "C-terminal amidation",
			Position: 9,
			Motif:    "GK",
			Enzyme:   "PAM",
		},
	}
	report.AddFragment(first)

	second := model.NewPeptideFragment("SYSMEHFRWGKPVKKRYGGFM", 16, 21, "END")
	second.BioactivityScore = 54.0
	second.ScoreSource = model.ScoreSourceHeuristic
	report.AddFragment(second)

	report.FragmentsInRange = 2
	report.TopFragments = []*model.PeptideFragment{first, second}

	return report
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PEPTISCAN ANALYSIS REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "P01189") {
			t.Error("expected output to contain accession")
		}
		if !strings.Contains(output, "Pro-opiomelanocortin") {
			t.Error("expected output to contain protein name")
		}
		if !strings.Contains(output, "Status:          Complete") {
			t.Error("expected complete status")
		}
	})

	t.Run("writes summary counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SUMMARY") {
			t.Error("expected output to contain summary section")
		}
		if !strings.Contains(output, "Cleavage sites:     1") {
			t.Error("expected cleavage site count")
		}
		if !strings.Contains(output, "Peptide fragments:  2") {
			t.Error("expected fragment count")
		}
	})

	t.Run("writes cleavage sites", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[+] KR at position 30") {
			t.Error("expected cleavage site line")
		}
	})

	t.Run("writes top candidates with annotations", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "TOP CANDIDATES") {
			t.Error("expected top candidates section")
		}
		if !strings.Contains(output, "1. SYSMEHFRWG") {
			t.Error("expected top-ranked fragment sequence")
		}
		if !strings.Contains(output, "Score: 82.5 (remote)") {
			t.Error("expected score with source")
		}
		if !strings.Contains(output, "Known: Pro-opiomelanocortin") {
			t.Error("expected known peptide annotation")
		}
		if !strings.Contains(output, "Curated: exact - Melanotropin alpha") {
			t.Error("expected curated annotation")
		}
		if !strings.Contains(output, "PTM: C-terminal amidation at position 9") {
			t.Error("expected PTM annotation")
		}
	})

	t.Run("timed out report shows partial status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()
		report.TimedOut = true

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "TIMED OUT") {
			t.Error("expected timed out status")
		}
	})

	t.Run("hides empty sections by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewAnalysisReport("", model.ModeStrict, model.DefaultParameters())

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "CLEAVAGE SITES") {
			t.Error("expected empty sites section to be hidden")
		}
		if strings.Contains(output, "TOP CANDIDATES") {
			t.Error("expected empty candidates section to be hidden")
		}
	})

	t.Run("shows empty sections with option", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))
		report := model.NewAnalysisReport("", model.ModeStrict, model.DefaultParameters())

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No cleavage sites detected") {
			t.Error("expected empty sites placeholder")
		}
		if !strings.Contains(output, "No candidate peptides") {
			t.Error("expected empty candidates placeholder")
		}
	})

	t.Run("verbose shows all fragments and amphipathic profile", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "ALL FRAGMENTS") {
			t.Error("expected all fragments section in verbose mode")
		}
		if !strings.Contains(output, "Amphipathic: 40.0%") {
			t.Error("expected amphipathic profile in verbose mode")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		n, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes written, buffer has %d", n, buf.Len())
		}

		var decoded model.AnalysisReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Accession != "P01189" {
			t.Errorf("decoded accession = %q, want P01189", decoded.Accession)
		}
		if len(decoded.Fragments) != 2 {
			t.Errorf("decoded %d fragments, want 2", len(decoded.Fragments))
		}
		if decoded.Fragments[0].ScoreSource != model.ScoreSourceRemote {
			t.Errorf("decoded score source = %v, want remote", decoded.Fragments[0].ScoreSource)
		}
	})

	t.Run("compact output has no newlines in body", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		body := strings.TrimSuffix(buf.String(), "\n")
		if strings.Contains(body, "\n") {
			t.Error("compact output should not contain newlines")
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps report with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("version = %q, want 1.2.3", wrapped.Version)
		}
		if wrapped.Report == nil || wrapped.Report.Accession != "P01189" {
			t.Error("expected wrapped report with accession")
		}
	})

	t.Run("batch writer outputs array in order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewBatchJSONWriter(&buf)

		first := createTestReport()
		second := model.NewAnalysisReport("", model.ModePermissive, model.DefaultParameters())
		second.Accession = "P01308"

		_, err := w.WriteBatch([]*model.AnalysisReport{first, second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []*model.AnalysisReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("decoded %d reports, want 2", len(decoded))
		}
		if decoded[0].Accession != "P01189" || decoded[1].Accession != "P01308" {
			t.Error("batch order not preserved")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Peptide Analysis Report") {
			t.Error("expected H1 title")
		}
		if !strings.Contains(output, "`P01189`") {
			t.Error("expected accession in header table")
		}
		if !strings.Contains(output, "## Summary") {
			t.Error("expected summary section")
		}
		if !strings.Contains(output, "Cleavage Sites") {
			t.Error("expected cleavage site row")
		}
	})

	t.Run("writes top candidates with title-cased labels", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Top Candidates") {
			t.Error("expected top candidates section")
		}
		if !strings.Contains(output, "Remote") {
			t.Error("expected title-cased score source")
		}
		if !strings.Contains(output, "Curated: Exact") {
			t.Error("expected title-cased curated status")
		}
		if !strings.Contains(output, "82.5") {
			t.Error("expected top candidate score")
		}
	})

	t.Run("writes strong candidate alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Strong bioactive candidate detected with score 82.5") {
			t.Error("expected strong candidate alert")
		}
	})

	t.Run("writes score source pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "```mermaid") {
			t.Error("expected mermaid code block")
		}
		if !strings.Contains(output, "Score Source Distribution") {
			t.Error("expected pie chart title")
		}
	})

	t.Run("writes PTM detail with enzyme", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "C-terminal amidation at position 9 (enzyme: PAM)") {
			t.Error("expected PTM detail with enzyme")
		}
	})

	t.Run("empty report notes missing fragments", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := model.NewAnalysisReport("", model.ModeStrict, model.DefaultParameters())

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No peptide fragments extracted") {
			t.Error("expected empty-report alert")
		}
		if !strings.Contains(output, "No fragments extracted.") {
			t.Error("expected empty fragment section")
		}
	})
}

// TestMultiWriter tests writing to multiple outputs at once.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	w := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

	total, err := w.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != text.Len()+jsonBuf.Len() {
		t.Errorf("total = %d, want %d", total, text.Len()+jsonBuf.Len())
	}
	if !strings.Contains(text.String(), "PEPTISCAN ANALYSIS REPORT") {
		t.Error("expected text output")
	}
	if !strings.HasPrefix(jsonBuf.String(), "{") {
		t.Error("expected JSON output")
	}
}

// TestTruncateString tests the table cell truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "YGGFM", maxLen: 10, want: "YGGFM"},
		{name: "exact length unchanged", input: "YGGFM", maxLen: 5, want: "YGGFM"},
		{name: "long string truncated", input: "SYSMEHFRWG", maxLen: 8, want: "SYSME..."},
		{name: "tiny max keeps prefix", input: "YGGFM", maxLen: 2, want: "YG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

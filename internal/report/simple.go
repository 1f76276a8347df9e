package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/peptiscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no results are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeSites(&sb, report)
	w.writeTopCandidates(&sb, report)
	if w.verbose {
		w.writeAllFragments(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with precursor information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AnalysisReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       PEPTISCAN ANALYSIS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if report.ProteinName != "" {
		sb.WriteString(fmt.Sprintf("Precursor:       %s\n", report.ProteinName))
	}
	if report.Accession != "" {
		sb.WriteString(fmt.Sprintf("Accession:       %s\n", report.Accession))
	}
	sb.WriteString(fmt.Sprintf("Sequence Length: %d aa\n", report.SequenceLength))
	sb.WriteString(fmt.Sprintf("Detection Mode:  %s\n", report.ModeName))
	sb.WriteString(fmt.Sprintf("Analyzed:        %s\n", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")))

	if report.TimedOut {
		sb.WriteString("Status:          TIMED OUT (partial results)\n")
	} else if report.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:          ERROR - %s\n", report.ErrorMessage))
	} else {
		sb.WriteString("Status:          Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the analysis summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AnalysisReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Cleavage sites:     %d\n", report.CleavageSiteCount))
	sb.WriteString(fmt.Sprintf("  Peptide fragments:  %d\n", len(report.Fragments)))
	sb.WriteString(fmt.Sprintf("  In optimal range:   %d (%d-%d aa)\n",
		report.FragmentsInRange, model.OptimalMinLength, model.OptimalMaxLength))

	remote, heuristic := countScoreSources(report.Fragments)
	if remote+heuristic > 0 {
		sb.WriteString(fmt.Sprintf("  Scored remotely:    %d\n", remote))
		sb.WriteString(fmt.Sprintf("  Scored heuristically: %d\n", heuristic))
	}
	sb.WriteString("\n")
}

// writeSites writes the detected cleavage sites section.
func (w *SimpleWriter) writeSites(sb *strings.Builder, report *model.AnalysisReport) {
	if len(report.Sites) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CLEAVAGE SITES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Sites) == 0 {
		sb.WriteString("  No cleavage sites detected\n")
	} else {
		for _, site := range report.Sites {
			sb.WriteString(fmt.Sprintf("  [+] %s at position %d\n", site.Motif, site.Position))
		}
	}
	sb.WriteString("\n")
}

// writeTopCandidates writes the top-ranked bioactive peptide candidates.
func (w *SimpleWriter) writeTopCandidates(sb *strings.Builder, report *model.AnalysisReport) {
	if len(report.TopFragments) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TOP CANDIDATES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.TopFragments) == 0 {
		sb.WriteString("  No candidate peptides\n\n")
		return
	}

	for i, fragment := range report.TopFragments {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, fragment.Sequence))
		sb.WriteString(fmt.Sprintf("   Span: %d-%d (%d aa)  Score: %.1f (%s)\n",
			fragment.Start, fragment.End, fragment.Length,
			fragment.BioactivityScore, fragment.ScoreSource))
		w.writeAnnotations(sb, fragment)
	}
	sb.WriteString("\n")
}

// writeAnnotations writes catalog, curated, PTM, and amphipathic annotations
// for a single fragment.
func (w *SimpleWriter) writeAnnotations(sb *strings.Builder, fragment *model.PeptideFragment) {
	if fragment.Known != nil {
		sb.WriteString(fmt.Sprintf("   Known: %s", fragment.Known.ProteinName))
		if fragment.Known.MatchNote != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", fragment.Known.MatchNote))
		}
		sb.WriteString("\n")
	}
	if fragment.Curated != nil && fragment.Curated.Status != "" {
		sb.WriteString(fmt.Sprintf("   Curated: %s", fragment.Curated.Status))
		if fragment.Curated.Name != "" {
			sb.WriteString(fmt.Sprintf(" - %s", fragment.Curated.Name))
		}
		if fragment.Curated.Note != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", fragment.Curated.Note))
		}
		sb.WriteString("\n")
	}
	for _, ptm := range fragment.PTMs {
		sb.WriteString(fmt.Sprintf("   PTM: %s at position %d\n", ptm.Name, ptm.Position))
	}
	if w.verbose && fragment.Amphipathic != nil {
		sb.WriteString(fmt.Sprintf("   Amphipathic: %.1f%% (basic %d, lipophilic %d)\n",
			fragment.Amphipathic.Score,
			fragment.Amphipathic.BasicCount,
			fragment.Amphipathic.LipophilicCount))
	}
}

// writeAllFragments writes every extracted fragment in precursor order.
// Only shown in verbose mode because large precursors produce many fragments.
func (w *SimpleWriter) writeAllFragments(sb *strings.Builder, report *model.AnalysisReport) {
	if len(report.Fragments) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ALL FRAGMENTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, fragment := range report.Fragments {
		sb.WriteString(fmt.Sprintf("  * %-30s %4d-%-4d %5.1f (%s)\n",
			fragment.Sequence, fragment.Start, fragment.End,
			fragment.BioactivityScore, fragment.ScoreSource))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by peptiscan\n")
	sb.WriteString("https://github.com/nao1215/peptiscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// countScoreSources counts fragments by scoring tier.
func countScoreSources(fragments []*model.PeptideFragment) (remote, heuristic int) {
	for _, f := range fragments {
		switch f.ScoreSource {
		case model.ScoreSourceRemote:
			remote++
		case model.ScoreSourceHeuristic:
			heuristic++
		}
	}
	return remote, heuristic
}

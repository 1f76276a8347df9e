package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/peptiscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strongCandidateScore is the bioactivity score above which a fragment is
// highlighted as a strong candidate in the report alert.
const strongCandidateScore = 70.0

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// titler converts lowercase annotation labels ("exact", "heuristic")
	// into title case for display.
	titler cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeTopCandidates(md, report)
	w.writeFragments(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with precursor information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H1("Peptide Analysis Report")
	md.PlainText("")

	rows := [][]string{}
	if report.ProteinName != "" {
		rows = append(rows, []string{"Precursor", report.ProteinName})
	}
	if report.Accession != "" {
		rows = append(rows, []string{"Accession", "`" + report.Accession + "`"})
	}
	rows = append(rows,
		[]string{"Sequence Length", strconv.Itoa(report.SequenceLength) + " aa"},
		[]string{"Detection Mode", w.titler.String(report.ModeName)},
		[]string{"Analyzed", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")},
		[]string{"Status", w.getStatusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.AnalysisReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the analysis summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Summary")
	md.PlainText("")

	remote, heuristic := countScoreSources(report.Fragments)

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Cleavage Sites", strconv.Itoa(report.CleavageSiteCount)},
			{"Peptide Fragments", strconv.Itoa(len(report.Fragments))},
			{fmt.Sprintf("In Optimal Range (%d-%d aa)", model.OptimalMinLength, model.OptimalMaxLength),
				strconv.Itoa(report.FragmentsInRange)},
			{"Scored Remotely", strconv.Itoa(remote)},
			{"Scored Heuristically", strconv.Itoa(heuristic)},
		},
	})
	md.PlainText("")

	if remote+heuristic > 0 {
		w.writePieChart(md, remote, heuristic)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the score source distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, remote, heuristic int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Score Source Distribution"),
		piechart.WithShowData(true),
	)

	if remote > 0 {
		chart.LabelAndIntValue("Remote", uint64(remote))
	}
	if heuristic > 0 {
		chart.LabelAndIntValue("Heuristic", uint64(heuristic))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the top candidate scores.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.AnalysisReport) {
	switch {
	case len(report.Fragments) == 0:
		md.Note("No peptide fragments extracted. The precursor may lack sufficient dibasic cleavage sites.")
	case topScore(report) >= strongCandidateScore:
		md.Tipf(
			"Strong bioactive candidate detected with score %.1f. Experimental validation is recommended.",
			topScore(report),
		)
	case countKnown(report.Fragments) > 0:
		md.Importantf(
			"%d fragment(s) match experimentally observed peptides in the reference catalog.",
			countKnown(report.Fragments),
		)
	default:
		md.Note("Only moderate bioactivity scores predicted for this precursor.")
	}
	md.PlainText("")
}

// writeTopCandidates writes the top-ranked candidates table with annotations.
func (w *MarkdownWriter) writeTopCandidates(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Top Candidates")
	md.PlainText("")

	if len(report.TopFragments) == 0 {
		md.PlainText("No candidate peptides.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.TopFragments))
	for i, f := range report.TopFragments {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			"`" + truncateString(f.Sequence, 40) + "`",
			fmt.Sprintf("%d-%d", f.Start, f.End),
			fmt.Sprintf("%.1f", f.BioactivityScore),
			w.titler.String(f.ScoreSource.String()),
			w.annotationSummary(f),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Sequence", "Span", "Score", "Source", "Annotations"},
		Rows:   rows,
	})
	md.PlainText("")

	// Expandable detail per candidate with known-peptide and PTM specifics.
	for _, f := range report.TopFragments {
		detail := w.candidateDetail(f)
		if detail != "" {
			md.Details("`"+truncateString(f.Sequence, 40)+"`", detail)
		}
	}
	md.PlainText("")
}

// annotationSummary returns a short annotation string for the candidate table.
func (w *MarkdownWriter) annotationSummary(f *model.PeptideFragment) string {
	var parts []string
	if f.Known != nil {
		parts = append(parts, "Known")
	}
	if f.Curated != nil && f.Curated.Status != "" {
		parts = append(parts, "Curated: "+w.titler.String(f.Curated.Status))
	}
	if len(f.PTMs) > 0 {
		parts = append(parts, fmt.Sprintf("%d PTM(s)", len(f.PTMs)))
	}
	if len(parts) == 0 {
		return "-"
	}

	summary := parts[0]
	for _, p := range parts[1:] {
		summary += ", " + p
	}
	return summary
}

// candidateDetail builds the expandable detail text for a top candidate.
// Returns an empty string when the candidate has nothing beyond its score.
func (w *MarkdownWriter) candidateDetail(f *model.PeptideFragment) string {
	var detail string

	if f.Known != nil {
		detail += fmt.Sprintf("**Known peptide**: %s", f.Known.ProteinName)
		if f.Known.IsAmidated {
			detail += " (amidated)"
		}
		if f.Known.MatchNote != "" {
			detail += fmt.Sprintf(" - %s", f.Known.MatchNote)
		}
		detail += "\n\n"
	}
	if f.Curated != nil && f.Curated.Name != "" {
		detail += fmt.Sprintf("**Curated**: %s", f.Curated.Name)
		if f.Curated.Note != "" {
			detail += fmt.Sprintf(" (%s)", f.Curated.Note)
		}
		detail += "\n\n"
	}
	for _, ptm := range f.PTMs {
		detail += fmt.Sprintf("**PTM**: %s at position %d", ptm.Name, ptm.Position)
		if ptm.Enzyme != "" {
			detail += fmt.Sprintf(" (enzyme: %s)", ptm.Enzyme)
		}
		detail += "\n\n"
	}
	if f.Amphipathic != nil && f.Amphipathic.Score > 0 {
		detail += fmt.Sprintf("**Amphipathic profile**: %.1f%% coverage (basic %d, lipophilic %d)\n",
			f.Amphipathic.Score, f.Amphipathic.BasicCount, f.Amphipathic.LipophilicCount)
	}

	return detail
}

// writeFragments writes the full fragment table in precursor order.
func (w *MarkdownWriter) writeFragments(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("All Fragments")
	md.PlainText("")

	if len(report.Fragments) == 0 {
		md.PlainText("No fragments extracted.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Fragments))
	for i, f := range report.Fragments {
		inRange := "-"
		if f.InOptimalRange {
			inRange = "✅"
		}
		rows[i] = []string{
			"`" + truncateString(f.Sequence, 40) + "`",
			fmt.Sprintf("%d-%d", f.Start, f.End),
			strconv.Itoa(f.Length),
			f.CleavageMotif,
			fmt.Sprintf("%.1f", f.BioactivityScore),
			inRange,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Sequence", "Span", "Length", "Motif", "Score", "Optimal"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [peptiscan](https://github.com/nao1215/peptiscan)*")
}

// topScore returns the highest bioactivity score in the report, or 0.
func topScore(report *model.AnalysisReport) float64 {
	if len(report.TopFragments) > 0 {
		return report.TopFragments[0].BioactivityScore
	}
	var best float64
	for _, f := range report.Fragments {
		if f.BioactivityScore > best {
			best = f.BioactivityScore
		}
	}
	return best
}

// countKnown counts fragments with a reference-catalog match.
func countKnown(fragments []*model.PeptideFragment) int {
	var n int
	for _, f := range fragments {
		if f.Known != nil {
			n++
		}
	}
	return n
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/seiran-lab/domainscan/internal/model"
	"github.com/seiran-lab/domainscan/internal/pipeline"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeFindings(md, summary)
	w.writeTechniques(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs one document section per summary.
func (w *MarkdownWriter) WriteBatch(summaries []*model.Summary) (int, error) {
	var total int
	for _, summary := range summaries {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// writeHeader writes the report header with execution information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	exec := summary.Execution

	md.H1("DomainScan Report")
	md.PlainText("")

	rows := [][]string{
		{"Target", "`" + exec.Target + "`"},
		{"Scan Date", exec.Start.Format("2006-01-02 15:04:05 MST")},
		{"Status", w.getStatusText(exec)},
	}
	if d := exec.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.String()})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on execution state.
func (w *MarkdownWriter) getStatusText(exec *model.Execution) string {
	switch exec.Status {
	case model.StatusError:
		return "❌ Error (partial results)"
	case model.StatusRunning:
		return "⏳ Running"
	default:
		return "✅ Complete"
	}
}

// writeFindings writes the top-level finding counts and an alert when
// credentials were exposed.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Findings")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Finding", "Count"},
		Rows: [][]string{
			{"Domains", strconv.Itoa(summary.Domains)},
			{"New Emails", strconv.Itoa(summary.NewEmails)},
			{"New Credentials", strconv.Itoa(summary.NewCredentials)},
		},
	})
	md.PlainText("")

	switch {
	case summary.NewCredentials > 0:
		md.Warningf(
			"Credential material exposed. %d credential(s) were found in publicly reachable content.",
			summary.NewCredentials,
		)
	case summary.NewEmails > 0:
		md.Notef("%d email address(es) are publicly discoverable for this target.", summary.NewEmails)
	default:
		md.Tip("No emails or credentials were discovered for this target.")
	}
	md.PlainText("")
}

// writeTechniques writes the metric table and a pie chart of the
// per-technique email yields.
func (w *MarkdownWriter) writeTechniques(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Technique Metrics")
	md.PlainText("")

	if len(summary.Metrics) == 0 {
		md.PlainText("No metrics recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Metrics))
	for _, m := range summary.Metrics {
		rows = append(rows, []string{"`" + m.Name + "`", formatMetric(m.Value)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, summary)
}

// writePieChart writes a mermaid pie chart of email yields per technique.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	slices := []struct {
		label  string
		metric string
	}{
		{"Passive HTML", pipeline.MetricEmailsPassiveHTML},
		{"Crawler", pipeline.MetricEmailsCrawlerHTML},
		{"JS Static", pipeline.MetricEmailsJSStatic},
		{"Scraping DOM", pipeline.MetricEmailsScrapingDOM},
		{"Scraping JSON", pipeline.MetricEmailsScrapingJSON},
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Email Yield per Technique"),
		piechart.WithShowData(true),
	)

	var nonEmpty bool
	for _, s := range slices {
		if v := metricValue(summary, s.metric); v > 0 {
			chart.LabelAndIntValue(s.label, uint64(v))
			nonEmpty = true
		}
	}
	if !nonEmpty {
		return
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [DomainScan](https://github.com/seiran-lab/domainscan)*")
}

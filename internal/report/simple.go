package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seiran-lab/domainscan/internal/model"
	"github.com/seiran-lab/domainscan/internal/pipeline"
)

// SimpleWriter outputs human-readable text summaries.
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

	// showEmpty controls whether zero-valued metrics are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show zero-valued metrics.
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

// Write outputs one summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeFindings(&sb, summary)
	w.writeTechniques(&sb, summary)
	w.writeIncrementalValue(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs one section per summary.
func (w *SimpleWriter) WriteBatch(summaries []*model.Summary) (int, error) {
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
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	exec := summary.Execution

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        DOMAINSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:      %s\n", exec.Target))
	sb.WriteString(fmt.Sprintf("Scan Date:   %s\n", exec.Start.Format("2006-01-02 15:04:05 MST")))
	if d := exec.Duration(); d > 0 {
		sb.WriteString(fmt.Sprintf("Duration:    %s\n", d.Round(10*time.Millisecond)))
	}

	switch exec.Status {
	case model.StatusError:
		sb.WriteString("Status:      ERROR (partial results)\n")
	case model.StatusRunning:
		sb.WriteString("Status:      Running\n")
	default:
		sb.WriteString("Status:      Complete\n")
	}

	sb.WriteString("\n")
}

// writeFindings writes the top-level finding counts.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Domains:          %d\n", summary.Domains))
	sb.WriteString(fmt.Sprintf("  New Emails:       %d\n", summary.NewEmails))
	sb.WriteString(fmt.Sprintf("  New Credentials:  %d\n", summary.NewCredentials))
	sb.WriteString("\n")
}

// writeTechniques writes the per-technique metric table.
func (w *SimpleWriter) writeTechniques(sb *strings.Builder, summary *model.Summary) {
	if len(summary.Metrics) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TECHNIQUE METRICS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Metrics) == 0 {
		sb.WriteString("  No metrics recorded\n\n")
		return
	}

	for _, m := range summary.Metrics {
		if m.Value == 0 && !w.showEmpty && !w.verbose {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-28s %s\n", m.Name, formatMetric(m.Value)))
	}
	sb.WriteString("\n")
}

// writeIncrementalValue highlights what the expensive techniques added
// on top of the static baseline.
func (w *SimpleWriter) writeIncrementalValue(sb *strings.Builder, summary *model.Summary) {
	scrapingNew := metricValue(summary, pipeline.MetricEmailsScrapingNew)
	credsNew := metricValue(summary, pipeline.MetricCredsScrapingNew)
	waybackEmails := metricValue(summary, pipeline.MetricEmailsFromWayback)

	if scrapingNew == 0 && credsNew == 0 && waybackEmails == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("INCREMENTAL VALUE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Emails only found by rendering:       %s\n", formatMetric(scrapingNew)))
	sb.WriteString(fmt.Sprintf("  Credentials only found by rendering:  %s\n", formatMetric(credsNew)))
	sb.WriteString(fmt.Sprintf("  Emails found in archived pages:       %s\n", formatMetric(waybackEmails)))
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by DomainScan\n")
	sb.WriteString("https://github.com/seiran-lab/domainscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

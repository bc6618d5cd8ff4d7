package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/seiran-lab/domainscan/internal/model"
)

// JSONWriter outputs summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// jsonSummary is the wire shape of one summary. The model types carry no
// JSON tags; this view pins the field names so the output format stays
// stable across model refactors.
type jsonSummary struct {
	ExecutionID    string             `json:"execution_id"`
	Target         string             `json:"target"`
	Start          time.Time          `json:"start"`
	End            *time.Time         `json:"end,omitempty"`
	Status         string             `json:"status"`
	Domains        int                `json:"domains"`
	NewEmails      int                `json:"new_emails"`
	NewCredentials int                `json:"new_credentials"`
	Metrics        map[string]float64 `json:"metrics"`
}

// toJSONSummary converts a summary to its wire shape.
func toJSONSummary(summary *model.Summary) jsonSummary {
	exec := summary.Execution

	out := jsonSummary{
		ExecutionID:    exec.ID,
		Target:         exec.Target,
		Start:          exec.Start,
		Status:         string(exec.Status),
		Domains:        summary.Domains,
		NewEmails:      summary.NewEmails,
		NewCredentials: summary.NewCredentials,
		Metrics:        make(map[string]float64, len(summary.Metrics)),
	}
	if !exec.End.IsZero() {
		end := exec.End
		out.End = &end
	}
	for _, m := range summary.Metrics {
		out.Metrics[m.Name] = m.Value
	}
	return out
}

// Write outputs one summary as a JSON object.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	return w.marshal(toJSONSummary(summary))
}

// WriteBatch outputs the summaries as a JSON array.
func (w *JSONWriter) WriteBatch(summaries []*model.Summary) (int, error) {
	out := make([]jsonSummary, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, toJSONSummary(summary))
	}
	return w.marshal(out)
}

// marshal encodes v according to the configured indentation and writes it
// followed by a trailing newline.
func (w *JSONWriter) marshal(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}

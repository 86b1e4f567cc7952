package report

import (
	"encoding/json"
	"io"

	"github.com/shellntel/cookiemonster/internal/model"
)

// JSONWriter outputs reports in JSON format.
//
// Design decision: encoding/json is enough here; the report types carry
// their own ordering (model.Counts marshals as an ordered list).
type JSONWriter struct {
	baseWriter

	// version is the tool version recorded in the output.
	version string

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	// Version is the tool version that generated this report.
	Version string `json:"version"`

	// Columns names the fields of each row in the tabular report.
	Columns []string `json:"columns"`

	// Report is the aggregate report.
	Report *model.AggregateReport `json:"report"`

	// Failed lists the URLs whose visit failed.
	Failed []FailedVisit `json:"failed"`
}

// FailedVisit is a URL that could not be visited.
type FailedVisit struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// NewJSONReport wraps report with version information.
func NewJSONReport(report *model.AggregateReport, version string) *JSONReport {
	failed := []FailedVisit{}
	for _, r := range report.Results {
		if r.Failed() {
			failed = append(failed, FailedVisit{URL: r.OriginalURL, Error: r.VisitError})
		}
	}
	return &JSONReport{
		Version: version,
		Columns: Columns,
		Report:  report,
		Failed:  failed,
	}
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.AggregateReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

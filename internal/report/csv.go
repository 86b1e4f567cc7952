package report

import (
	"encoding/csv"
	"io"

	"github.com/shellntel/cookiemonster/internal/model"
)

// CSVWriter writes one row per classified cookie under the fixed Columns
// header. A report without rows still gets the header line.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report rows as CSV.
func (w *CSVWriter) Write(report *model.AggregateReport) (int, error) {
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)

	if err := out.Write(Columns); err != nil {
		return cw.n, err
	}
	for _, row := range report.Rows {
		if err := out.Write(row.Record()); err != nil {
			return cw.n, err
		}
	}

	out.Flush()
	return cw.n, out.Error()
}

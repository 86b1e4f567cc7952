package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/shellntel/cookiemonster/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SummaryWriter prints the tracker summary as a table of (count, tracker)
// sorted by count, highest first. Ties keep the order in which trackers
// were first seen.
type SummaryWriter struct {
	baseWriter

	printer *message.Printer
}

// SummaryWriterOption configures a SummaryWriter.
type SummaryWriterOption func(*SummaryWriter)

// WithLanguage sets the locale used to format counts.
func WithLanguage(tag language.Tag) SummaryWriterOption {
	return func(w *SummaryWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer, opts ...SummaryWriterOption) *SummaryWriter {
	w := &SummaryWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary table.
func (w *SummaryWriter) Write(report *model.AggregateReport) (int, error) {
	cw := &countingWriter{w: w.output}

	fmt.Fprintln(cw, "Tracking Cookie Summary")

	entries := report.Summary.Sorted()
	if len(entries) == 0 {
		fmt.Fprintln(cw, "No tracking cookies detected.")
		return cw.n, nil
	}

	table := tablewriter.NewWriter(cw)
	table.Header("Count", "Tracker")
	for _, e := range entries {
		if err := table.Append([]string{w.printer.Sprintf("%d", e.Count), e.Name}); err != nil {
			return cw.n, err
		}
	}
	if err := table.Render(); err != nil {
		return cw.n, err
	}

	w.printer.Fprintf(cw, "Total: %d tracking cookie(s) across %d URL(s), %d failed\n",
		report.Summary.Total(), report.URLsRequested, report.URLsFailed)

	return cw.n, nil
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shellntel/cookiemonster/internal/model"
)

// ListingWriter prints the cookies of every visited URL grouped by type,
// followed by the name of the saved report file.
type ListingWriter struct {
	baseWriter

	// reportPath is announced after the listing when set.
	reportPath string
}

// ListingWriterOption configures a ListingWriter.
type ListingWriterOption func(*ListingWriter)

// WithReportPath makes the listing end with "Report saved to <path>".
func WithReportPath(path string) ListingWriterOption {
	return func(w *ListingWriter) {
		w.reportPath = path
	}
}

// NewListingWriter creates a ListingWriter that outputs to the given writer.
func NewListingWriter(output io.Writer, opts ...ListingWriterOption) *ListingWriter {
	w := &ListingWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the per-URL listing.
func (w *ListingWriter) Write(report *model.AggregateReport) (int, error) {
	var sb strings.Builder

	forEachResult(report, func(r *model.ClassificationResult, rows []model.ReportRow) {
		if r.Failed() {
			reason := r.VisitError
			if reason == "" {
				reason = "unknown error"
			}
			fmt.Fprintf(&sb, "Failed to visit %s: %s\n\n", r.OriginalURL, reason)
			return
		}

		fmt.Fprintf(&sb, "URL: %s\n", r.OriginalURL)
		fmt.Fprintf(&sb, "Final URL: %s\n", r.FinalURL)

		w.writeSection(&sb, "First-party cookies", rows, model.CategoryFirstParty, "")
		w.writeSection(&sb, "Third-party cookies", rows, model.CategoryThirdParty, "Vendor")
		w.writeSection(&sb, "3rd Party Tracking cookies", rows, model.CategoryThirdPartyTracking, "Service")
		sb.WriteString("\n")
	})

	if w.reportPath != "" {
		fmt.Fprintf(&sb, "Report saved to %s\n", w.reportPath)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeSection writes the rows of one category. label names the
// Vendor/Service column when it applies to the category.
func (w *ListingWriter) writeSection(sb *strings.Builder, title string, rows []model.ReportRow, c model.Category, label string) {
	fmt.Fprintf(sb, "%s:\n", title)

	found := false
	for _, row := range rows {
		if row.Category != c {
			continue
		}
		found = true
		if label == "" {
			fmt.Fprintf(sb, "  %s: %s (Domain: %s)\n", row.Name, row.Value, row.Domain)
		} else {
			fmt.Fprintf(sb, "  %s: %s (Domain: %s, %s: %s)\n", row.Name, row.Value, row.Domain, label, row.VendorOrService)
		}
	}

	if !found {
		sb.WriteString("  (none)\n")
	}
}

package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/shellntel/cookiemonster/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	// version is printed in the footer.
	version string
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, version string) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AggregateReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCategories(md, report)
	w.writeTrackers(md, report)
	w.writeURLs(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AggregateReport) {
	md.H1("Cookie Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"URLs Requested", strconv.Itoa(report.URLsRequested)},
			{"URLs Failed", strconv.Itoa(report.URLsFailed)},
			{"Cookies", strconv.Itoa(len(report.Rows))},
		},
	})
	md.PlainText("")

	switch {
	case report.Summary.Total() > 0:
		md.Warningf("%d tracking cookie(s) from %d tracker(s) were set.",
			report.Summary.Total(), report.Summary.Len())
	case len(report.Rows) > 0:
		md.Note("No known tracking cookies were set.")
	default:
		md.Tip("No cookies were set.")
	}
	md.PlainText("")
}

// writeCategories writes the cookie counts per category with a pie chart.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Cookies by Type")
	md.PlainText("")

	categories := []model.Category{
		model.CategoryFirstParty,
		model.CategoryThirdParty,
		model.CategoryThirdPartyTracking,
	}

	rows := make([][]string, 0, len(categories))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Cookies by Type"),
		piechart.WithShowData(true),
	)
	for _, c := range categories {
		n := len(report.RowsByCategory(c))
		rows = append(rows, []string{c.String(), strconv.Itoa(n)})
		if n > 0 {
			chart.LabelAndIntValue(c.String(), uint64(n))
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.Rows) > 0 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

// writeTrackers writes the tracker summary sorted by count.
func (w *MarkdownWriter) writeTrackers(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Tracking Summary")
	md.PlainText("")

	entries := report.Summary.Sorted()
	if len(entries) == 0 {
		md.PlainText("No tracking cookies detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{strconv.Itoa(e.Count), e.Name}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Count", "Tracker"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeURLs writes one cookie table per visited URL.
func (w *MarkdownWriter) writeURLs(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Visited URLs")
	md.PlainText("")

	forEachResult(report, func(r *model.ClassificationResult, rows []model.ReportRow) {
		md.H3(r.OriginalURL)
		md.PlainText("")

		if r.Failed() {
			reason := r.VisitError
			if reason == "" {
				reason = "unknown error"
			}
			md.Cautionf("Visit failed: %s", reason)
			md.PlainText("")
			return
		}

		md.PlainTextf("Final URL: `%s`", r.FinalURL)
		md.PlainText("")

		if len(rows) == 0 {
			md.PlainText("No cookies were set.")
			md.PlainText("")
			return
		}

		table := make([][]string, len(rows))
		for i, row := range rows {
			table[i] = []string{
				row.Category.String(),
				"`" + row.Name + "`",
				truncateString(row.Value, 40),
				row.Domain,
				row.VendorOrService,
				row.Purpose,
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Type", "Cookie Name", "Cookie Value", "Domain", "Vendor/Service", "Purpose"},
			Rows:   table,
		})
		md.PlainText("")
	})
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by cookiemonster %s*", w.version)
}

// forEachResult walks the results in order together with the rows each one
// contributed. Rows are appended per result in result order, so a
// successful result owns the next CookieCount rows.
func forEachResult(report *model.AggregateReport, fn func(*model.ClassificationResult, []model.ReportRow)) {
	offset := 0
	for _, r := range report.Results {
		if r.Failed() {
			fn(r, nil)
			continue
		}
		n := r.CookieCount()
		end := min(offset+n, len(report.Rows))
		fn(r, report.Rows[offset:end])
		offset = end
	}
}

// Package report writes the aggregate cookie report.
//
// This package contains writers for different output formats:
//   - CSVWriter: the delimited report file with the fixed column set
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: a shareable Markdown document
//   - ListingWriter: the per-URL cookie listing printed to the terminal
//   - SummaryWriter: the tracker summary table sorted by count
//
// Design decision: Report writing is kept apart from the report data
// structures (in the model package) so new output formats never touch
// the classification or aggregation code.
package report

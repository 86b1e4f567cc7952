package model

import (
	"time"

	"github.com/google/uuid"
)

// Report placeholders used when a column has no meaningful value.
const (
	// NotApplicable fills the Vendor/Service and Purpose columns for rows
	// where they do not apply.
	NotApplicable = "N/A"

	// UnknownVendor is used when the vendor of a third-party domain could
	// not be determined.
	UnknownVendor = "Unknown"

	// PurposeTracking is the Purpose column value for tracking cookies.
	PurposeTracking = "Tracking"
)

// Columns is the fixed header of the tabular cookie report.
var Columns = []string{
	"Original URL",
	"Final URL",
	"Type",
	"Cookie Name",
	"Cookie Value",
	"Domain",
	"Vendor/Service",
	"Purpose",
}

// ReportRow is one flattened cookie row of the aggregate report.
type ReportRow struct {
	OriginalURL string   `json:"originalUrl"`
	FinalURL    string   `json:"finalUrl"`
	Category    Category `json:"type"`
	Name        string   `json:"cookieName"`
	Value       string   `json:"cookieValue"`
	Domain      string   `json:"domain"`
	// VendorOrService is the resolved vendor for third-party rows, the
	// friendly tracker name for tracking rows and NotApplicable otherwise.
	VendorOrService string `json:"vendorOrService"`
	Purpose         string `json:"purpose"`
}

// Record returns the row as a slice of strings in Columns order.
func (r ReportRow) Record() []string {
	return []string{
		r.OriginalURL,
		r.FinalURL,
		r.Category.String(),
		r.Name,
		r.Value,
		r.Domain,
		r.VendorOrService,
		r.Purpose,
	}
}

// AggregateReport is the output of a whole run: one row per classified
// cookie across all successfully visited URLs, plus the merged tracker counts.
type AggregateReport struct {
	// RunID identifies the run in logs and serialized reports.
	RunID string `json:"runId"`

	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generatedAt"`

	// Results are the per-URL results that were folded in, in input order.
	// Failed visits are kept here so listings can mention them, but they
	// contribute no rows and no counts.
	Results []*ClassificationResult `json:"-"`

	// Rows are the flattened cookie rows.
	Rows []ReportRow `json:"rows"`

	// Summary is the key-wise sum of every result's SummaryCounts.
	Summary *Counts `json:"summary"`

	// URLsRequested is the number of results folded in.
	URLsRequested int `json:"urlsRequested"`

	// URLsFailed is the number of results whose visit failed.
	URLsFailed int `json:"urlsFailed"`
}

// NewAggregateReport creates an empty report with a fresh run identifier.
func NewAggregateReport() *AggregateReport {
	return &AggregateReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		Rows:        []ReportRow{},
		Summary:     NewCounts(),
	}
}

// RowsByCategory returns the rows with the given category, preserving order.
func (r *AggregateReport) RowsByCategory(c Category) []ReportRow {
	var rows []ReportRow
	for _, row := range r.Rows {
		if row.Category == c {
			rows = append(rows, row)
		}
	}
	return rows
}

package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shellntel/cookiemonster/internal/aggregate"
	"github.com/shellntel/cookiemonster/internal/classifier"
	"github.com/shellntel/cookiemonster/internal/model"
	"github.com/shellntel/cookiemonster/internal/pattern"
	"github.com/shellntel/cookiemonster/internal/vendor"
)

// createTestReport creates a report with two successful visits and one
// failed visit.
func createTestReport(t *testing.T) *model.AggregateReport {
	t.Helper()

	catalog, err := pattern.Parse([]byte(`{
  "GoogleAnalytics": {"patterns": [["_ga", "Google Analytics", "GoogleAnalytics"]]},
  "Facebook": {"patterns": [["_fbp", "Meta Pixel", "Facebook"]]}
}`))
	if err != nil {
		t.Fatalf("failed to parse catalog: %v", err)
	}

	results := []*model.ClassificationResult{
		classifier.NewResult("https://example.com", "https://www.example.com/", []model.RawCookie{
			{Name: "sid", Value: "abc123", Domain: "www.example.com"},
			{Name: "uid", Value: "42", Domain: ".tracker.net"},
			{Name: "_ga", Value: "GA1.2.3", Domain: ".example.com"},
		}, catalog),
		model.NewFailedResult("https://down.example", errors.New("host name could not be resolved")),
		classifier.NewResult("https://shop.test", "https://shop.test/", []model.RawCookie{
			{Name: "_fbp", Value: "fb.1", Domain: ".shop.test"},
			{Name: "_ga", Value: "GA1.9.9", Domain: ".shop.test"},
			{Name: "_fbp", Value: "fb.2", Domain: ".facebook.com"},
		}, catalog),
	}

	return aggregate.Aggregate(context.Background(), results, vendor.StaticResolver{"tracker.net": "Tracker Inc"})
}

// TestNewWriter tests format selection.
func TestNewWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"csv", "*report.CSVWriter"},
		{"", "*report.CSVWriter"},
		{"JSON", "*report.JSONWriter"},
		{"markdown", "*report.MarkdownWriter"},
		{"md", "*report.MarkdownWriter"},
	}

	for _, tt := range tests {
		w, err := NewWriter(tt.format, &bytes.Buffer{}, "test")
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.format, err)
		}
		switch w.(type) {
		case *CSVWriter:
			if tt.want != "*report.CSVWriter" {
				t.Errorf("%q: got CSV writer", tt.format)
			}
		case *JSONWriter:
			if tt.want != "*report.JSONWriter" {
				t.Errorf("%q: got JSON writer", tt.format)
			}
		case *MarkdownWriter:
			if tt.want != "*report.MarkdownWriter" {
				t.Errorf("%q: got Markdown writer", tt.format)
			}
		}
	}

	if _, err := NewWriter("xml", &bytes.Buffer{}, "test"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

// TestCSVWriter tests the tabular report file.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and one row per cookie", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewCSVWriter(&buf).Write(createTestReport(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to read CSV: %v", err)
		}
		if len(records) != 7 {
			t.Fatalf("expected header plus 6 rows, got %d records", len(records))
		}

		header := strings.Join(records[0], ",")
		if header != "Original URL,Final URL,Type,Cookie Name,Cookie Value,Domain,Vendor/Service,Purpose" {
			t.Errorf("unexpected header %q", header)
		}

		expected := [][]string{
			{"https://example.com", "https://www.example.com/", "First-party", "sid", "abc123", "www.example.com", "N/A", "N/A"},
			{"https://example.com", "https://www.example.com/", "Third-party", "uid", "42", ".tracker.net", "Tracker Inc", "N/A"},
			{"https://example.com", "https://www.example.com/", "3rd Party Tracking", "_ga", "GA1.2.3", ".example.com", "Google Analytics", "Tracking"},
		}
		for i, want := range expected {
			if got := strings.Join(records[i+1], "|"); got != strings.Join(want, "|") {
				t.Errorf("row %d: got %q, want %q", i, got, strings.Join(want, "|"))
			}
		}
	})

	t.Run("empty report has header only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(model.NewAggregateReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected a single header line, got %q", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON report.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, "v1.2.3", WithPrettyPrint()).Write(createTestReport(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}

	var doc struct {
		Version string `json:"version"`
		Report  struct {
			RunID   string `json:"runId"`
			Rows    []map[string]any
			Summary []model.CountEntry `json:"summary"`
		} `json:"report"`
		Failed []FailedVisit `json:"failed"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if doc.Version != "v1.2.3" {
		t.Errorf("unexpected version %q", doc.Version)
	}
	if doc.Report.RunID == "" {
		t.Error("expected run ID")
	}
	if len(doc.Report.Rows) != 6 {
		t.Errorf("expected 6 rows, got %d", len(doc.Report.Rows))
	}
	if doc.Report.Rows[2]["type"] != "3rd Party Tracking" {
		t.Errorf("expected category label in rows, got %v", doc.Report.Rows[2]["type"])
	}
	if len(doc.Report.Summary) != 2 || doc.Report.Summary[0].Name != "Google Analytics (GoogleAnalytics)" {
		t.Errorf("unexpected summary %+v", doc.Report.Summary)
	}
	if len(doc.Failed) != 1 || doc.Failed[0].URL != "https://down.example" {
		t.Errorf("unexpected failed list %+v", doc.Failed)
	}

	var compact bytes.Buffer
	if _, err := NewJSONWriter(&compact, "v1").Write(model.NewAggregateReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(compact.String(), "\n") != 1 {
		t.Error("expected compact single-line output")
	}
}

// TestMarkdownWriter tests the Markdown report.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, "v1.0.0").Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Cookie Report",
			"## Cookies by Type",
			"## Tracking Summary",
			"## Visited URLs",
			"### https://example.com",
			"Visit failed: host name could not be resolved",
			"Google Analytics (GoogleAnalytics)",
			"Tracker Inc",
			"mermaid",
			"cookiemonster v1.0.0",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, "dev").Write(model.NewAggregateReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "No tracking cookies detected.") {
			t.Error("expected empty tracking summary")
		}
		if strings.Contains(output, "mermaid") {
			t.Error("expected no chart without cookies")
		}
	})
}

// TestListingWriter tests the per-URL terminal listing.
func TestListingWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewListingWriter(&buf, WithReportPath("cookie_report.csv")).Write(createTestReport(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"URL: https://example.com\n",
		"Final URL: https://www.example.com/\n",
		"  sid: abc123 (Domain: www.example.com)\n",
		"  uid: 42 (Domain: .tracker.net, Vendor: Tracker Inc)\n",
		"  _ga: GA1.2.3 (Domain: .example.com, Service: Google Analytics)\n",
		"Failed to visit https://down.example: host name could not be resolved\n",
		"Report saved to cookie_report.csv\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	// The second successful URL has no first- or third-party cookies
	shop := output[strings.Index(output, "URL: https://shop.test"):]
	if !strings.Contains(shop, "First-party cookies:\n  (none)\n") {
		t.Error("expected empty first-party section for shop.test")
	}
	if !strings.Contains(shop, "_fbp: fb.2 (Domain: .facebook.com, Service: Meta Pixel)") {
		t.Error("expected rows attributed to the right URL")
	}
}

// TestSummaryWriter tests the tracker summary table.
func TestSummaryWriter(t *testing.T) {
	t.Parallel()

	t.Run("sorted by count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSummaryWriter(&buf).Write(createTestReport(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		output := buf.String()
		ga := strings.Index(output, "Google Analytics (GoogleAnalytics)")
		fb := strings.Index(output, "Meta Pixel (Facebook)")
		if ga < 0 || fb < 0 {
			t.Fatalf("expected both trackers in output:\n%s", output)
		}
		// Both have count 2; Google Analytics was seen first
		if ga > fb {
			t.Error("expected tie to keep first-seen order")
		}
		if !strings.Contains(output, "Total: 4 tracking cookie(s) across 3 URL(s), 1 failed") {
			t.Errorf("unexpected total line:\n%s", output)
		}
	})

	t.Run("large counts are grouped", func(t *testing.T) {
		t.Parallel()

		report := model.NewAggregateReport()
		report.Summary.Add("Big (Tracker)", 12345)

		var buf bytes.Buffer
		if _, err := NewSummaryWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "12,345") {
			t.Errorf("expected grouped count, got:\n%s", buf.String())
		}
	})

	t.Run("no trackers", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSummaryWriter(&buf).Write(model.NewAggregateReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No tracking cookies detected.") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewCSVWriter(&a), NewSummaryWriter(&b))

	n, err := mw.Write(createTestReport(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}

// TestTruncateString tests string truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"ééééé", 4, "é..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}

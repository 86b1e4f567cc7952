package aggregate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shellntel/cookiemonster/internal/model"
	"github.com/shellntel/cookiemonster/internal/vendor"
)

func tracking(name, friendly, service string) model.ClassifiedCookie {
	return model.ClassifiedCookie{
		RawCookie:    model.RawCookie{Name: name, Value: "v-" + name, Domain: ".example.com"},
		Category:     model.CategoryThirdPartyTracking,
		Service:      service,
		FriendlyName: friendly,
	}
}

func successResult(url string, counts map[string]int, keys ...string) *model.ClassificationResult {
	c := model.NewCounts()
	for _, k := range keys {
		c.Add(k, counts[k])
	}
	return &model.ClassificationResult{
		OriginalURL: url,
		FinalURL:    url + "/",
		FirstParty: []model.ClassifiedCookie{
			{RawCookie: model.RawCookie{Name: "sid", Value: "s3cr3t", Domain: "example.com"}, Category: model.CategoryFirstParty},
		},
		ThirdParty: []model.ClassifiedCookie{
			{RawCookie: model.RawCookie{Name: "uid", Value: "42", Domain: ".tracker.net"}, Category: model.CategoryThirdParty},
		},
		Tracking: []model.ClassifiedCookie{
			tracking("_ga", "Google Analytics", "GoogleAnalytics"),
		},
		SummaryCounts: c,
	}
}

// TestAggregateRows tests row flattening and column values.
func TestAggregateRows(t *testing.T) {
	t.Parallel()

	resolver := vendor.StaticResolver{"tracker.net": "Tracker Inc"}
	r := successResult("https://example.com", map[string]int{"Google Analytics (GoogleAnalytics)": 1}, "Google Analytics (GoogleAnalytics)")

	report := Aggregate(context.Background(), []*model.ClassificationResult{r}, resolver)

	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(report.Rows))
	}

	tests := []struct {
		category model.Category
		vendor   string
		purpose  string
	}{
		{model.CategoryFirstParty, model.NotApplicable, model.NotApplicable},
		{model.CategoryThirdParty, "Tracker Inc", model.NotApplicable},
		{model.CategoryThirdPartyTracking, "Google Analytics", model.PurposeTracking},
	}

	for i, tt := range tests {
		row := report.Rows[i]
		if row.Category != tt.category {
			t.Errorf("row %d: got category %s, expected %s", i, row.Category, tt.category)
		}
		if row.VendorOrService != tt.vendor {
			t.Errorf("row %d: got vendor %q, expected %q", i, row.VendorOrService, tt.vendor)
		}
		if row.Purpose != tt.purpose {
			t.Errorf("row %d: got purpose %q, expected %q", i, row.Purpose, tt.purpose)
		}
		if row.OriginalURL != "https://example.com" || row.FinalURL != "https://example.com/" {
			t.Errorf("row %d: unexpected URLs %q %q", i, row.OriginalURL, row.FinalURL)
		}
	}

	if report.Rows[0].Value != "s3cr3t" {
		t.Errorf("expected clear value without redaction, got %q", report.Rows[0].Value)
	}
}

// TestAggregateSummary tests that merged counts are the key-wise sum.
func TestAggregateSummary(t *testing.T) {
	t.Parallel()

	ga := "Google Analytics (GoogleAnalytics)"
	hj := "Hotjar (Hotjar)"
	fb := "Meta Pixel (Facebook)"

	results := []*model.ClassificationResult{
		successResult("https://a.example", map[string]int{ga: 2, hj: 1}, ga, hj),
		model.NewFailedResult("https://down.example", errors.New("timeout")),
		successResult("https://b.example", map[string]int{fb: 4, ga: 1}, fb, ga),
		successResult("https://c.example", nil),
	}

	report := Aggregate(context.Background(), results, nil)

	expected := map[string]int{ga: 3, hj: 1, fb: 4}
	for k, want := range expected {
		if got := report.Summary.Get(k); got != want {
			t.Errorf("%s: got %d, want %d", k, got, want)
		}
	}
	if report.Summary.Len() != len(expected) {
		t.Errorf("expected %d keys, got %d", len(expected), report.Summary.Len())
	}

	sorted := report.Summary.Sorted()
	if sorted[0].Name != fb || sorted[1].Name != ga || sorted[2].Name != hj {
		t.Errorf("unexpected sort order %+v", sorted)
	}

	if report.URLsRequested != 4 || report.URLsFailed != 1 {
		t.Errorf("unexpected URL counters: requested=%d failed=%d", report.URLsRequested, report.URLsFailed)
	}
	if len(report.Results) != 4 {
		t.Errorf("expected every result kept for listing, got %d", len(report.Results))
	}
}

// TestAggregateFailedResult tests that failed visits contribute nothing.
func TestAggregateFailedResult(t *testing.T) {
	t.Parallel()

	failed := model.NewFailedResult("https://down.example", errors.New("net::ERR_NAME_NOT_RESOLVED"))
	// A failed result carrying stray data must still be skipped
	failed.Tracking = []model.ClassifiedCookie{tracking("_ga", "Google Analytics", "GoogleAnalytics")}
	failed.SummaryCounts.Inc("Google Analytics (GoogleAnalytics)")

	a := New(nil)
	a.Add(context.Background(), failed)
	a.Add(context.Background(), nil)
	report := a.Report()

	if len(report.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(report.Rows))
	}
	if report.Summary.Len() != 0 {
		t.Errorf("expected no counts, got %d", report.Summary.Len())
	}
	if report.URLsRequested != 1 {
		t.Errorf("expected nil result to be ignored, got %d requested", report.URLsRequested)
	}
}

// TestAggregateVendorFailure tests that resolver errors degrade to "Unknown".
func TestAggregateVendorFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	resolver := vendor.ResolverFunc(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("whois server unreachable")
	})

	results := []*model.ClassificationResult{
		successResult("https://a.example", nil),
		successResult("https://b.example", nil),
	}

	report := Aggregate(context.Background(), results, resolver)

	thirdParty := report.RowsByCategory(model.CategoryThirdParty)
	if len(thirdParty) != 2 {
		t.Fatalf("expected 2 third-party rows, got %d", len(thirdParty))
	}
	for _, row := range thirdParty {
		if row.VendorOrService != model.UnknownVendor {
			t.Errorf("expected Unknown vendor, got %q", row.VendorOrService)
		}
	}
	if calls != 2 {
		t.Errorf("expected a lookup per third-party cookie, got %d", calls)
	}
}

// TestAggregatePresetVendor tests that an already resolved vendor is kept.
func TestAggregatePresetVendor(t *testing.T) {
	t.Parallel()

	r := successResult("https://a.example", nil)
	r.ThirdParty[0].Vendor = "Preset Corp"

	resolver := vendor.ResolverFunc(func(context.Context, string) (string, error) {
		t.Error("resolver must not be called for a preset vendor")
		return "", nil
	})

	report := Aggregate(context.Background(), []*model.ClassificationResult{r}, resolver)
	if got := report.RowsByCategory(model.CategoryThirdParty)[0].VendorOrService; got != "Preset Corp" {
		t.Errorf("unexpected vendor %q", got)
	}
}

// TestAggregateRedaction tests cookie value redaction.
func TestAggregateRedaction(t *testing.T) {
	t.Parallel()

	report := Aggregate(
		context.Background(),
		[]*model.ClassificationResult{successResult("https://a.example", nil)},
		nil,
		WithValueRedaction(true),
	)

	for _, row := range report.Rows {
		if !strings.HasPrefix(row.Value, redactedPrefix) {
			t.Errorf("expected redacted value for %s, got %q", row.Name, row.Value)
		}
	}
	if report.Rows[0].Value == "s3cr3t" {
		t.Error("value leaked into report")
	}
}

// TestRedact tests the value digest.
func TestRedact(t *testing.T) {
	t.Parallel()

	if Redact("") != "" {
		t.Error("expected empty value to stay empty")
	}
	a, b := Redact("token"), Redact("token")
	if a != b {
		t.Error("expected stable digest")
	}
	if a == Redact("other") {
		t.Error("expected different digests for different values")
	}
	if len(a) != len(redactedPrefix)+16 {
		t.Errorf("unexpected digest length %d", len(a))
	}
}

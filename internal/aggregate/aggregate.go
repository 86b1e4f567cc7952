package aggregate

import (
	"context"
	"encoding/hex"
	"log/slog"

	"github.com/shellntel/cookiemonster/internal/model"
	"github.com/shellntel/cookiemonster/internal/vendor"
	"golang.org/x/crypto/sha3"
)

// redactedPrefix marks cookie values replaced by their digest.
const redactedPrefix = "sha3:"

// Aggregator accumulates classification results into an AggregateReport.
type Aggregator struct {
	resolver vendor.Resolver
	redact   bool
	logger   *slog.Logger
	report   *model.AggregateReport
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithValueRedaction replaces cookie values in rows with a truncated
// SHA3-256 digest, so reports can be shared without leaking session tokens.
// Equal values still produce equal digests.
func WithValueRedaction(redact bool) Option {
	return func(a *Aggregator) {
		a.redact = redact
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// New creates an Aggregator. Third-party vendors are resolved through
// resolver; a nil resolver leaves every third-party vendor "Unknown".
func New(resolver vendor.Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver: resolver,
		report:   model.NewAggregateReport(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Add folds one result into the report.
//
// Failed results are recorded for listing and counted in URLsFailed but
// contribute no rows and no counts. Vendor lookup failures become "Unknown"
// and never stop aggregation.
func (a *Aggregator) Add(ctx context.Context, result *model.ClassificationResult) {
	if result == nil {
		return
	}

	a.report.Results = append(a.report.Results, result)
	a.report.URLsRequested++

	if result.Failed() {
		a.report.URLsFailed++
		a.logger.Debug("skipping failed visit", "url", result.OriginalURL)
		return
	}

	for _, c := range result.FirstParty {
		a.report.Rows = append(a.report.Rows, a.row(result, c, model.NotApplicable, model.NotApplicable))
	}

	for _, c := range result.ThirdParty {
		v := c.Vendor
		if v == "" {
			v = vendor.ResolveOrUnknown(ctx, a.resolver, c.Domain)
		}
		a.report.Rows = append(a.report.Rows, a.row(result, c, v, model.NotApplicable))
	}

	for _, c := range result.Tracking {
		a.report.Rows = append(a.report.Rows, a.row(result, c, c.FriendlyName, model.PurposeTracking))
	}

	a.report.Summary.Merge(result.SummaryCounts)
}

func (a *Aggregator) row(r *model.ClassificationResult, c model.ClassifiedCookie, vendorOrService, purpose string) model.ReportRow {
	value := c.Value
	if a.redact {
		value = Redact(value)
	}
	return model.ReportRow{
		OriginalURL:     r.OriginalURL,
		FinalURL:        r.FinalURL,
		Category:        c.Category,
		Name:            c.Name,
		Value:           value,
		Domain:          c.Domain,
		VendorOrService: vendorOrService,
		Purpose:         purpose,
	}
}

// Report returns the accumulated report. The Aggregator must not be used
// after the report has been handed to writers.
func (a *Aggregator) Report() *model.AggregateReport {
	return a.report
}

// Aggregate folds results in order and returns the report.
func Aggregate(ctx context.Context, results []*model.ClassificationResult, resolver vendor.Resolver, opts ...Option) *model.AggregateReport {
	a := New(resolver, opts...)
	for _, r := range results {
		a.Add(ctx, r)
	}
	return a.Report()
}

// Redact returns a short, stable digest of a cookie value.
// Empty values stay empty.
func Redact(value string) string {
	if value == "" {
		return ""
	}
	sum := sha3.Sum256([]byte(value))
	return redactedPrefix + hex.EncodeToString(sum[:8])
}

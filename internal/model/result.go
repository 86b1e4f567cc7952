package model

import "time"

// ClassificationResult is the outcome of classifying the cookies of one
// requested URL. One instance exists per requested URL, including URLs whose
// visit failed. It is not modified after construction.
type ClassificationResult struct {
	// OriginalURL is the URL as requested (after scheme normalization).
	OriginalURL string `json:"originalUrl"`

	// FinalURL is the URL the browser ended up on after redirects.
	// Empty when the visit failed.
	FinalURL string `json:"finalUrl,omitempty"`

	// VisitedDomain is the host (and port, if any) of FinalURL that cookie
	// domains were compared against.
	VisitedDomain string `json:"visitedDomain,omitempty"`

	// FirstParty holds cookies set for the visited site's registrable domain.
	FirstParty []ClassifiedCookie `json:"firstParty"`

	// ThirdParty holds cookies set for any other registrable domain.
	ThirdParty []ClassifiedCookie `json:"thirdParty"`

	// Tracking holds cookies whose name matched a tracking pattern.
	Tracking []ClassifiedCookie `json:"tracking"`

	// SummaryCounts counts tracking matches keyed by "friendlyName (service)".
	SummaryCounts *Counts `json:"summaryCounts"`

	// VisitError describes why the visit failed. Empty on success.
	VisitError string `json:"visitError,omitempty"`
}

// NewFailedResult returns the result recorded for a URL whose visit failed.
// It has no final URL, empty buckets and zero counts.
func NewFailedResult(originalURL string, visitErr error) *ClassificationResult {
	r := &ClassificationResult{
		OriginalURL:   originalURL,
		FirstParty:    []ClassifiedCookie{},
		ThirdParty:    []ClassifiedCookie{},
		Tracking:      []ClassifiedCookie{},
		SummaryCounts: NewCounts(),
	}
	if visitErr != nil {
		r.VisitError = visitErr.Error()
	}
	return r
}

// Failed reports whether the visit for this URL failed.
func (r *ClassificationResult) Failed() bool {
	return r == nil || r.FinalURL == ""
}

// CookieCount returns the number of cookies across all three buckets.
func (r *ClassificationResult) CookieCount() int {
	if r == nil {
		return 0
	}
	return len(r.FirstParty) + len(r.ThirdParty) + len(r.Tracking)
}

// Scan is the mutable state for one URL while it moves through the
// pipeline. Steps fill it in; the final ClassificationResult is built
// from it once all steps have run.
type Scan struct {
	// Index is the position of the URL in the input list.
	Index int

	// OriginalURL is the requested URL after scheme normalization.
	OriginalURL string

	// FinalURL is set by the visit step on success.
	FinalURL string

	// Cookies are the raw cookies captured by the visit step.
	Cookies []RawCookie

	// ScreenshotPath is where a screenshot was saved, if one was requested.
	ScreenshotPath string

	// Result is set by the classify step.
	Result *ClassificationResult

	// Error is the first step error, if any.
	Error error

	// StartedAt and Duration record timing for logging.
	StartedAt time.Time
	Duration  time.Duration
}

// NewScan creates the pipeline state for a URL.
func NewScan(index int, originalURL string) *Scan {
	return &Scan{
		Index:       index,
		OriginalURL: originalURL,
		StartedAt:   time.Now(),
	}
}

// ClassificationResult returns the step output, or a failed result when the
// visit never produced one.
func (s *Scan) ClassificationResult() *ClassificationResult {
	if s.Result != nil {
		return s.Result
	}
	return NewFailedResult(s.OriginalURL, s.Error)
}

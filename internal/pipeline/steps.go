package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shellntel/cookiemonster/internal/browser"
	"github.com/shellntel/cookiemonster/internal/classifier"
	"github.com/shellntel/cookiemonster/internal/model"
)

// VisitStep loads the page in a browser and stores the final URL and the
// captured cookies on the scan.
type VisitStep struct {
	visitor browser.Visitor
	opts    browser.Options

	// numberScreenshots appends the URL's position to the screenshot file
	// name so batch runs do not overwrite one file.
	numberScreenshots bool

	// override adjusts the options for a single URL (per-site settings).
	override OptionsFunc

	logger *slog.Logger
}

// OptionsFunc returns the browser options to use for url, starting from base.
type OptionsFunc func(url string, base browser.Options) browser.Options

// VisitStepOption configures a VisitStep.
type VisitStepOption func(*VisitStep)

// WithVisitOptions sets the per-visit browser options.
func WithVisitOptions(opts browser.Options) VisitStepOption {
	return func(s *VisitStep) {
		s.opts = opts
	}
}

// WithNumberedScreenshots enables "screenshot-<n>.png" naming.
func WithNumberedScreenshots(enabled bool) VisitStepOption {
	return func(s *VisitStep) {
		s.numberScreenshots = enabled
	}
}

// WithOptionsFunc installs a per-URL options hook.
func WithOptionsFunc(fn OptionsFunc) VisitStepOption {
	return func(s *VisitStep) {
		s.override = fn
	}
}

// WithVisitLogger sets a custom logger for the visit step.
func WithVisitLogger(logger *slog.Logger) VisitStepOption {
	return func(s *VisitStep) {
		s.logger = logger
	}
}

// NewVisitStep creates a visit step backed by visitor.
func NewVisitStep(visitor browser.Visitor, opts ...VisitStepOption) *VisitStep {
	s := &VisitStep{
		visitor: visitor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *VisitStep) Name() string {
	return "visit"
}

// Do executes the visit step.
func (s *VisitStep) Do(ctx context.Context, scan *model.Scan) error {
	opts := s.opts
	if s.override != nil {
		opts = s.override(scan.OriginalURL, opts)
	}
	if opts.Screenshot {
		opts.ScreenshotPath = s.screenshotPath(scan.Index)
	}

	visit, err := s.visitor.Visit(ctx, scan.OriginalURL, opts)
	if err != nil {
		return err
	}
	if visit == nil || visit.FinalURL == "" {
		return fmt.Errorf("%w: %s: no final URL", browser.ErrVisitFailed, scan.OriginalURL)
	}

	scan.FinalURL = visit.FinalURL
	scan.Cookies = visit.Cookies
	scan.ScreenshotPath = visit.ScreenshotPath

	s.logger.Info("page visited",
		"url", scan.OriginalURL,
		"final_url", scan.FinalURL,
		"cookies", len(scan.Cookies),
	)

	return nil
}

// screenshotPath returns the screenshot file for the URL at index.
func (s *VisitStep) screenshotPath(index int) string {
	path := s.opts.ScreenshotPath
	if path == "" {
		path = browser.DefaultScreenshotPath
	}
	if !s.numberScreenshots {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), index+1, ext)
}

// ClassifyStep classifies the captured cookies and stores the result.
type ClassifyStep struct {
	matcher classifier.Matcher
}

// NewClassifyStep creates a classify step using matcher, normally a
// *pattern.Catalog.
func NewClassifyStep(matcher classifier.Matcher) *ClassifyStep {
	return &ClassifyStep{matcher: matcher}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the classify step.
func (s *ClassifyStep) Do(_ context.Context, scan *model.Scan) error {
	if scan.FinalURL == "" {
		return fmt.Errorf("%w: %s: nothing to classify", browser.ErrVisitFailed, scan.OriginalURL)
	}
	scan.Result = classifier.NewResult(scan.OriginalURL, scan.FinalURL, scan.Cookies, s.matcher)
	return nil
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shellntel/cookiemonster/internal/model"
)

// Step is one stage of a URL scan.
// Steps run in order and share the scan state.
type Step interface {
	// Do executes the step. A returned error marks the visit as failed.
	Do(ctx context.Context, scan *model.Scan) error

	// Name identifies the step in logs and errors.
	Name() string
}

// StepError is returned by Execute when a step fails. The scan itself
// records the unwrapped error so reports show the visit failure as is.
type StepError struct {
	Step string
	URL  string
	Err  error
}

// Error implements error.
func (e *StepError) Error() string {
	return e.Step + " " + e.URL + ": " + e.Err.Error()
}

// Unwrap returns the step's error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the name of the step that produced err, or "" when
// err did not come from a pipeline step.
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}

// Pipeline runs the steps of one URL scan.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps later steps running after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps executing later steps when one fails.
// The first error is still recorded on the scan.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps against scan.
//
// Cancellation is checked before each step. The first failure is stored
// in scan.Error; unless continueOnError is set it is also returned,
// wrapped in a *StepError, and later steps are skipped.
func (p *Pipeline) Execute(ctx context.Context, scan *model.Scan) error {
	defer func() {
		scan.Duration = time.Since(scan.StartedAt)
	}()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("scan cancelled",
				"step", step.Name(),
				"url", scan.OriginalURL,
				"reason", err,
			)
			p.record(scan, err)
			return &StepError{Step: step.Name(), URL: scan.OriginalURL, Err: err}
		}

		started := time.Now()
		err := step.Do(ctx, scan)
		if err == nil {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"url", scan.OriginalURL,
				"elapsed", time.Since(started).Round(time.Millisecond),
			)
			continue
		}

		p.logger.Error("step failed",
			"step", step.Name(),
			"url", scan.OriginalURL,
			"error", err,
		)
		p.record(scan, err)
		if !p.continueOnError {
			return &StepError{Step: step.Name(), URL: scan.OriginalURL, Err: err}
		}
	}

	return nil
}

// record keeps the first error seen for scan.
func (p *Pipeline) record(scan *model.Scan, err error) {
	if scan.Error == nil {
		scan.Error = err
	}
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

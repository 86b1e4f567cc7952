package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/shellntel/cookiemonster/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs visited at once by default.
// Each visit runs its own browser, so this stays at one unless raised.
const DefaultConcurrency = 1

// BatchProcessor handles concurrent processing of multiple URLs.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each URL.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent visits.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent visits.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each URL so that pipeline
// state never leaks between URLs.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans every URL and returns one Scan per URL in input order.
//
// A failed visit never stops the batch: its error is recorded on its Scan
// and the remaining URLs are processed. The returned error is non-nil only
// when ctx was cancelled; scans that never started then carry ctx.Err().
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.Scan, error) {
	bp.logger.Info("starting batch processing",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index
	scans := make([]*model.Scan, len(urls))
	for i, u := range urls {
		scans[i] = model.NewScan(i, u)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			scan := scans[i]

			select {
			case <-gctx.Done():
				scan.Error = gctx.Err()
				return gctx.Err()
			default:
			}

			bp.logger.Info("visiting URL",
				"url", url,
				"index", i+1,
				"total", len(urls),
			)

			scan.StartedAt = time.Now()
			if err := bp.pipelineFactory().Execute(gctx, scan); err != nil {
				bp.logger.Warn("scan failed",
					"url", url,
					"step", FailedStep(err),
					"error", scan.Error,
				)
				// Keep going with the other URLs
				return nil
			}

			bp.logger.Debug("scan completed",
				"url", url,
				"duration", scan.Duration,
			)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bp.logger.Info("batch processing complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	return scans, err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shellntel/cookiemonster/internal/aggregate"
	"github.com/shellntel/cookiemonster/internal/browser"
	"github.com/shellntel/cookiemonster/internal/classifier"
	"github.com/shellntel/cookiemonster/internal/config"
	"github.com/shellntel/cookiemonster/internal/domain"
	"github.com/shellntel/cookiemonster/internal/log"
	"github.com/shellntel/cookiemonster/internal/model"
	"github.com/shellntel/cookiemonster/internal/pattern"
	"github.com/shellntel/cookiemonster/internal/pipeline"
	"github.com/shellntel/cookiemonster/internal/report"
	"github.com/shellntel/cookiemonster/internal/tor"
	"github.com/shellntel/cookiemonster/internal/vendor"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Visit URLs and classify the cookies they set",
		Long: `Scan loads each URL in a fresh headless Chrome and classifies every cookie
the browser holds afterwards:

- First-party: the cookie's registrable domain matches the visited site
- Third-party: any other domain (the owner is looked up via WHOIS)
- 3rd Party Tracking: the cookie name matches a tracking pattern

URLs without a scheme get https:// prepended.

Examples:
  # Scan a single site and print the tracking summary
  cookiemonster scan example.com -r

  # Scan every URL listed in a file, three at a time
  cookiemonster scan -f urls.txt -b 3

  # Write a Markdown report and keep cookie values out of it
  cookiemonster scan example.com --format markdown -o report.md --redact

  # Route browser and WHOIS traffic through an embedded Tor daemon
  cookiemonster scan --tor example.com

Configuration file (.cookiemonster) example:
  defaults:
    wait: 30s
  sites:
    shop.example.com:
      wait: 60s
      userAgent: "Mozilla/5.0 (X11; Linux x86_64)"
      screenshot: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Input flags
	cmd.Flags().StringP("file", "f", "",
		"File with one URL per line (blank lines and # comments are skipped)")
	cmd.Flags().StringP("patterns", "p", "",
		"Tracking pattern file (default: "+config.DefaultPatternFile+" in current or config directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cookiemonster in current, config or home directory)")

	// Browser flags
	cmd.Flags().BoolP("screenshot", "s", false,
		"Save a screenshot of each loaded page")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Page-load timeout for each URL")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of URLs visited concurrently")
	cmd.Flags().String("chrome", "",
		"Chrome or Chromium binary (default: auto-detect)")
	cmd.Flags().String("user-agent", "",
		"Override the browser user agent")

	// Vendor lookup flags
	cmd.Flags().Bool("no-vendor", false,
		"Skip WHOIS lookups; third-party vendors are reported as Unknown")
	cmd.Flags().Duration("vendor-timeout", config.DefaultVendorTimeout,
		"Timeout for each WHOIS lookup")

	// Routing flags
	cmd.Flags().String("proxy", "",
		"Route browser and WHOIS traffic through a SOCKS5 proxy (host:port)")
	cmd.Flags().Bool("tor", false,
		"Route traffic through an embedded Tor daemon")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Report flags
	cmd.Flags().StringP("output", "o", config.DefaultReportFile,
		"Report file path (creates directories if needed)")
	cmd.Flags().String("format", config.DefaultFormat,
		"Report file format: csv, json or markdown")
	cmd.Flags().BoolP("report", "r", false,
		"Print the tracking cookie summary after the scan")
	cmd.Flags().Bool("redact", false,
		"Replace cookie values in the report with a digest")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not print the per-URL cookie listing")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags, the optional
// config file and the URL list file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.URLFile, err = flags.GetString("file"); err != nil {
		return nil, err
	}
	if cfg.PatternFile, err = flags.GetString("patterns"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Screenshot, err = flags.GetBool("screenshot"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ChromePath, err = flags.GetString("chrome"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}

	noVendor, err := flags.GetBool("no-vendor")
	if err != nil {
		return nil, err
	}
	cfg.VendorLookup = !noVendor
	if cfg.VendorTimeout, err = flags.GetDuration("vendor-timeout"); err != nil {
		return nil, err
	}

	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}

	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	if cfg.PrintSummary, err = flags.GetBool("report"); err != nil {
		return nil, err
	}
	if cfg.Redact, err = flags.GetBool("redact"); err != nil {
		return nil, err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// An explicitly named config file must exist; a searched one is optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	if cfg.PatternFile == "" {
		cfg.PatternFile = cfg.SiteConfigs.Patterns
	}

	targets := append([]string{}, args...)
	if cfg.URLFile != "" {
		listed, err := config.ReadURLList(cfg.URLFile)
		if err != nil {
			return nil, err
		}
		targets = append(targets, listed...)
	}
	for _, t := range targets {
		cfg.Targets = append(cfg.Targets, domain.EnsureScheme(t))
	}

	return cfg, nil
}

// setupLogger creates the secure logger for the run.
func setupLogger(w io.Writer, verbose, jsonOutput bool) *slog.Logger {
	if jsonOutput {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// runScan sets up routing, the browser and the vendor resolver, then scans.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	catalog, err := loadCatalog(cfg, logger)
	if err != nil {
		return err
	}

	client, stop, err := setupRouting(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stop()

	for _, target := range cfg.Targets {
		if err := tor.CheckTarget(target, client != nil); err != nil {
			return err
		}
	}

	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"batch_size", cfg.BatchSize,
		"patterns", catalog.Len(),
		"vendor_lookup", cfg.VendorLookup,
		"proxied", client != nil,
	)

	visitor := newVisitor(cfg, client, logger)
	resolver := newResolver(cfg, client, logger)

	return executeScan(ctx, cfg, catalog, visitor, resolver, logger, out)
}

// loadCatalog loads the tracking pattern file. A missing or unparseable
// file stops the run.
func loadCatalog(cfg *config.Config, logger *slog.Logger) (*pattern.Catalog, error) {
	path := config.FindPatternFile(cfg.PatternFile)

	catalog, err := pattern.Load(path)
	if err != nil {
		if errors.Is(err, pattern.ErrCatalogNotFound) {
			return nil, fmt.Errorf("%w (run 'cookiemonster init' to create one)", err)
		}
		return nil, fmt.Errorf("failed to load tracking patterns: %w", err)
	}

	if n := catalog.Skipped(); n > 0 {
		logger.Warn("skipped malformed tracking patterns", "file", path, "count", n)
	}
	logger.Debug("tracking patterns loaded", "file", path, "rules", catalog.Len())

	return catalog, nil
}

// setupRouting returns the SOCKS5 client traffic should use, or nil for
// direct connections. The returned stop function releases an embedded daemon.
func setupRouting(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, func(), error) {
	noop := func() {}

	switch {
	case cfg.ProxyAddress != "":
		client, err := tor.NewClient(cfg.ProxyAddress)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create proxy client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, noop, fmt.Errorf("proxy check failed for %s: %w", cfg.ProxyAddress, status.Err())
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
		return client, noop, nil

	case cfg.UseTor:
		return startEmbeddedTor(ctx, cfg, logger)

	default:
		return nil, noop, nil
	}
}

// startEmbeddedTor starts an embedded Tor daemon using tornago.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, func(), error) {
	noop := func() {}

	logger.Warn("starting embedded Tor daemon; bootstrapping may take 1-3 minutes")

	embeddedTor := tor.NewEmbeddedTor(
		tor.WithStartupTimeout(cfg.TorStartupTimeout),
		tor.WithTorLogger(logger),
	)
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, noop, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	stop := func() {
		if err := embeddedTor.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}

	client, err := embeddedTor.NewClient()
	if err != nil {
		stop()
		return nil, noop, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		stop()
		return nil, noop, fmt.Errorf("embedded Tor proxy check failed: %w", status.Err())
	}

	return client, stop, nil
}

// newVisitor creates the Chrome visitor for the run.
func newVisitor(cfg *config.Config, client *tor.Client, logger *slog.Logger) *browser.ChromeVisitor {
	opts := []browser.Option{
		browser.WithTimeout(cfg.Timeout),
		browser.WithExecPath(cfg.ChromePath),
		browser.WithUserAgent(cfg.UserAgent),
		browser.WithLogger(logger),
	}
	if client != nil {
		opts = append(opts, browser.WithProxyServer(client.ProxyURL()))
	}
	return browser.NewChromeVisitor(opts...)
}

// newResolver creates the vendor resolver. Lookups are memoized per
// registrable domain for the run.
func newResolver(cfg *config.Config, client *tor.Client, logger *slog.Logger) vendor.Resolver {
	if !cfg.VendorLookup {
		return vendor.StaticResolver{}
	}

	opts := []vendor.WhoisOption{
		vendor.WithTimeout(cfg.VendorTimeout),
		vendor.WithLogger(logger),
	}
	if client != nil {
		opts = append(opts, vendor.WithDialer(client.Dialer()))
	}
	return vendor.NewCachingResolver(vendor.NewWhoisResolver(opts...))
}

// executeScan visits every target, aggregates the results and writes the
// report file and console output.
//
// A cancelled run still writes a report for the URLs visited so far and
// then returns the cancellation error.
func executeScan(
	ctx context.Context,
	cfg *config.Config,
	matcher classifier.Matcher,
	visitor browser.Visitor,
	resolver vendor.Resolver,
	logger *slog.Logger,
	out io.Writer,
) error {
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipeline(cfg, matcher, visitor, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	scans, scanErr := bp.ProcessBatch(ctx, cfg.Targets)

	agg := aggregate.New(resolver,
		aggregate.WithValueRedaction(cfg.Redact),
		aggregate.WithLogger(logger),
	)
	aggCtx, cancelAgg := aggregateContext(ctx, cfg.VendorTimeout)
	defer cancelAgg()
	for _, scan := range scans {
		agg.Add(aggCtx, scan.ClassificationResult())
	}
	rep := agg.Report()

	logger.Info("scan completed",
		"urls", rep.URLsRequested,
		"failed", rep.URLsFailed,
		"cookies", len(rep.Rows),
		"duration", time.Since(startTime).Round(time.Millisecond),
	)

	if err := writeReportFile(cfg, rep); err != nil {
		return err
	}

	if err := writeConsole(cfg, rep, out); err != nil {
		return err
	}

	if scanErr != nil {
		return fmt.Errorf("scan interrupted: %w", scanErr)
	}
	return nil
}

// aggregateContext returns the context vendor lookups run under. After an
// interruption the finished URLs still get their vendors, but all remaining
// lookups together are limited to one vendor timeout.
func aggregateContext(ctx context.Context, vendorTimeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return ctx, func() {}
	}
	return context.WithTimeout(context.WithoutCancel(ctx), vendorTimeout)
}

// createPipeline creates the visit and classify pipeline for one URL.
func createPipeline(cfg *config.Config, matcher classifier.Matcher, visitor browser.Visitor, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(false),
	)

	p.AddSteps(
		pipeline.NewVisitStep(visitor,
			pipeline.WithVisitOptions(browser.Options{
				Screenshot:     cfg.Screenshot,
				ScreenshotPath: cfg.ScreenshotPath,
				Verbose:        cfg.Verbose,
			}),
			pipeline.WithNumberedScreenshots(len(cfg.Targets) > 1),
			pipeline.WithOptionsFunc(siteOptions(cfg)),
			pipeline.WithVisitLogger(logger),
		),
		pipeline.NewClassifyStep(matcher),
	)

	return p
}

// siteOptions applies per-site settings from the config file.
func siteOptions(cfg *config.Config) pipeline.OptionsFunc {
	return func(url string, base browser.Options) browser.Options {
		sc := cfg.SiteFor(url)
		if sc.Wait > 0 {
			base.Timeout = sc.Wait
		}
		if sc.UserAgent != "" {
			base.UserAgent = sc.UserAgent
		}
		if sc.Screenshot != nil {
			base.Screenshot = *sc.Screenshot
		}
		return base
	}
}

// writeReportFile writes the aggregate report in the configured format.
func writeReportFile(cfg *config.Config, rep *model.AggregateReport) error {
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports hold cookie values, so only the owner may read them
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w, err := report.NewWriter(cfg.Format, f, getVersion())
	if err != nil {
		return err
	}
	if _, err := w.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

// writeConsole prints the per-URL listing and, if requested, the summary.
func writeConsole(cfg *config.Config, rep *model.AggregateReport, out io.Writer) error {
	var writers []report.Writer
	if !cfg.Quiet {
		writers = append(writers, report.NewListingWriter(out, report.WithReportPath(cfg.ReportFile)))
	}
	if cfg.PrintSummary {
		writers = append(writers, report.NewSummaryWriter(out))
	}
	if len(writers) == 0 {
		return nil
	}

	_, err := report.NewMultiWriter(writers...).Write(rep)
	return err
}

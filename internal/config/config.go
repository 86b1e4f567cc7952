package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the page-load timeout. Most pages settle their
	// cookies well within 30 seconds.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize of 1 visits URLs one after another. Every visit starts
	// its own browser, so higher values multiply memory use.
	DefaultBatchSize = 1

	// DefaultPatternFile is the tracking pattern catalog looked up when
	// --patterns is not given.
	DefaultPatternFile = "tracking_cookie_patterns.json"

	// DefaultReportFile is where the CSV report is written.
	DefaultReportFile = "cookie_report.csv"

	// DefaultScreenshotPath is the screenshot file for single-URL runs.
	DefaultScreenshotPath = "screenshot.png"

	// DefaultFormat is the report file format.
	DefaultFormat = "csv"

	// DefaultVendorTimeout bounds a single WHOIS lookup.
	DefaultVendorTimeout = 10 * time.Second

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap when --tor is given.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "cookiemonster"
)

// formats lists the accepted report formats. "md" is an alias for markdown.
var formats = []string{"csv", "json", "markdown", "md"}

// Config holds all configuration options for a cookiemonster run.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// Targets is the list of URLs to visit, in order.
	Targets []string

	// URLFile is a file with one URL per line. Its URLs are appended to Targets.
	URLFile string

	// PatternFile is the tracking pattern catalog (JSON or YAML).
	// If empty, FindPatternFile looks in the current and XDG config directories.
	PatternFile string

	// ReportFile is where the aggregate report is written.
	ReportFile string

	// Format is the report file format: csv, json or markdown.
	Format string

	// Timeout is the page-load timeout for each visit.
	Timeout time.Duration

	// BatchSize is the number of URLs visited concurrently.
	BatchSize int

	// Screenshot saves a PNG of each loaded page.
	Screenshot bool

	// ScreenshotPath is the screenshot file. Batch runs with more than one
	// URL number the files (screenshot-1.png, screenshot-2.png, ...).
	ScreenshotPath string

	// PrintSummary prints the tracking summary table after the run.
	PrintSummary bool

	// Verbose enables debug logging, browser console output and a dump of
	// the captured cookies (values masked).
	Verbose bool

	// Quiet suppresses the per-URL cookie listing on stdout.
	Quiet bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// VendorLookup enables WHOIS lookups for third-party cookie domains.
	// When false every third-party vendor is reported as "Unknown".
	VendorLookup bool

	// VendorTimeout bounds each WHOIS lookup.
	VendorTimeout time.Duration

	// Redact replaces cookie values in the report with a short digest.
	Redact bool

	// ProxyAddress routes browser and WHOIS traffic through a SOCKS5 proxy
	// in "host:port" form.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes traffic through it.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon. Only used when UseTor is true.
	TorStartupTimeout time.Duration

	// ChromePath is the Chrome or Chromium binary. Empty means auto-detect.
	ChromePath string

	// UserAgent overrides the browser user agent.
	UserAgent string

	// ConfigFilePath is the path to the .cookiemonster file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// SiteConfigs holds the per-site settings loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ReportFile:        DefaultReportFile,
		Format:            DefaultFormat,
		Timeout:           DefaultTimeout,
		BatchSize:         DefaultBatchSize,
		ScreenshotPath:    DefaultScreenshotPath,
		VendorLookup:      true,
		VendorTimeout:     DefaultVendorTimeout,
		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// XDGConfigDir returns the XDG config directory for cookiemonster.
// On Linux: ~/.config/cookiemonster
// On macOS: ~/Library/Application Support/cookiemonster
// On Windows: %APPDATA%\cookiemonster
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package sentinel errors.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Format != "" && !slices.Contains(formats, c.Format) {
		return ErrUnknownFormat
	}

	if c.VendorLookup && c.VendorTimeout <= 0 {
		return ErrInvalidVendorTimeout
	}

	if c.ProxyAddress != "" && c.UseTor {
		return ErrConflictingProxy
	}

	return nil
}

// SiteFor returns the merged site settings for a URL.
// Without a loaded config file the zero SiteConfig is returned.
func (c *Config) SiteFor(rawURL string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.ForURL(rawURL)
}

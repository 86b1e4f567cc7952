package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// ChromeVisitor drives a headless Chrome through the DevTools protocol.
type ChromeVisitor struct {
	execPath    string
	proxyServer string
	userAgent   string
	headless    bool
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures a ChromeVisitor.
type Option func(*ChromeVisitor)

// WithExecPath sets the Chrome binary. Empty means auto-detect.
func WithExecPath(path string) Option {
	return func(v *ChromeVisitor) {
		v.execPath = path
	}
}

// WithProxyServer routes browser traffic through a proxy,
// e.g. "socks5://127.0.0.1:9050".
func WithProxyServer(server string) Option {
	return func(v *ChromeVisitor) {
		v.proxyServer = server
	}
}

// WithUserAgent overrides the browser user agent.
func WithUserAgent(ua string) Option {
	return func(v *ChromeVisitor) {
		v.userAgent = ua
	}
}

// WithHeadless toggles headless mode. Default is true.
func WithHeadless(headless bool) Option {
	return func(v *ChromeVisitor) {
		v.headless = headless
	}
}

// WithTimeout sets the page-load timeout.
func WithTimeout(d time.Duration) Option {
	return func(v *ChromeVisitor) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *ChromeVisitor) {
		v.logger = logger
	}
}

// NewChromeVisitor creates a Visitor backed by Chrome.
func NewChromeVisitor(opts ...Option) *ChromeVisitor {
	v := &ChromeVisitor{
		headless: true,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// allocatorOptions returns the Chrome command line for a visit.
// A non-empty userAgent takes precedence over the visitor's own.
func (v *ChromeVisitor) allocatorOptions(userAgent string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", v.headless),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		// Allow third-party cookies so trackers can set them
		chromedp.Flag("disable-features",
			"SameSiteByDefaultCookies,CookiesWithoutSameSiteMustBeSecure,BlockThirdPartyCookies"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1366, 768),
	)

	if v.execPath != "" {
		opts = append(opts, chromedp.ExecPath(v.execPath))
	}
	if v.proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(v.proxyServer))
	}
	if userAgent == "" {
		userAgent = v.userAgent
	}
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	return opts
}

// Visit loads url in a fresh browser and returns the final URL and cookies.
func (v *ChromeVisitor) Visit(ctx context.Context, url string, opts Options) (*Visit, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, v.allocatorOptions(opts.UserAgent)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if opts.Verbose {
		chromedp.ListenTarget(browserCtx, func(ev any) {
			if e, ok := ev.(*runtime.EventConsoleAPICalled); ok {
				v.logger.Debug("browser console", "url", url, "type", string(e.Type), "message", consoleText(e))
			}
		})
	}

	// The first Run starts the browser. Cookies are cleared before navigating.
	if err := chromedp.Run(browserCtx,
		network.Enable(),
		storage.ClearCookies(),
	); err != nil {
		return nil, visitError(url, fmt.Errorf("start browser: %w", err))
	}

	timeout := v.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	navCtx, cancelNav := context.WithTimeout(browserCtx, timeout)
	defer cancelNav()

	var finalURL string
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.Location(&finalURL),
	); err != nil {
		return nil, visitError(url, err)
	}

	result := &Visit{FinalURL: finalURL}

	if opts.Screenshot {
		path, err := v.screenshot(browserCtx, opts.ScreenshotPath)
		if err != nil {
			// The cookies are still useful without a screenshot
			v.logger.Warn("screenshot failed", "url", url, "error", err)
		} else {
			result.ScreenshotPath = path
		}
	}

	var cookies []*network.Cookie
	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	})); err != nil {
		return nil, visitError(url, fmt.Errorf("get cookies: %w", err))
	}

	result.Cookies = toRawCookies(cookies)

	if opts.Verbose {
		for _, c := range result.Cookies {
			v.logger.Debug("retrieved cookie",
				"url", url,
				"name", c.Name,
				"domain", c.Domain,
				"cookie_value", c.Value,
			)
		}
	}

	return result, nil
}

func (v *ChromeVisitor) screenshot(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = DefaultScreenshotPath
	}

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

// DefaultScreenshotPath is used when a screenshot is requested without a path.
const DefaultScreenshotPath = "screenshot.png"

// consoleText joins the arguments of a console call.
func consoleText(e *runtime.EventConsoleAPICalled) string {
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		switch {
		case arg.Description != "":
			parts = append(parts, arg.Description)
		case len(arg.Value) > 0:
			parts = append(parts, string(arg.Value))
		}
	}
	return strings.Join(parts, " ")
}

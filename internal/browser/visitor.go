package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/shellntel/cookiemonster/internal/model"
)

// DefaultTimeout is the page-load timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

var (
	// ErrVisitFailed wraps every error returned by Visit.
	ErrVisitFailed = errors.New("page visit failed")

	// ErrNameNotResolved is returned when the host name could not be resolved.
	ErrNameNotResolved = errors.New("host name could not be resolved")

	// ErrPageLoadTimeout is returned when the page did not load in time.
	ErrPageLoadTimeout = errors.New("page load timed out")
)

// Options control a single visit.
type Options struct {
	// Screenshot saves a PNG of the loaded page to ScreenshotPath.
	Screenshot bool

	// ScreenshotPath is where the screenshot is written.
	ScreenshotPath string

	// Verbose logs browser console messages and the captured cookies.
	Verbose bool

	// Timeout overrides the visitor's page-load timeout when positive.
	Timeout time.Duration

	// UserAgent overrides the visitor's user agent when set.
	UserAgent string
}

// Visit is what a successful page visit produced.
type Visit struct {
	// FinalURL is the page URL after all redirects.
	FinalURL string

	// Cookies are all cookies held by the browser after the page loaded.
	Cookies []model.RawCookie

	// ScreenshotPath is set when a screenshot was written.
	ScreenshotPath string
}

// Visitor loads a URL and reports the final URL and the cookies set.
type Visitor interface {
	Visit(ctx context.Context, url string, opts Options) (*Visit, error)
}

// visitError maps a navigation error to the package sentinels.
// Every returned error satisfies errors.Is(err, ErrVisitFailed).
func visitError(url string, err error) error {
	switch {
	case strings.Contains(err.Error(), "ERR_NAME_NOT_RESOLVED"):
		return fmt.Errorf("%w: %w: %s", ErrVisitFailed, ErrNameNotResolved, url)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w: %s", ErrVisitFailed, ErrPageLoadTimeout, url)
	default:
		return fmt.Errorf("%w: %s: %w", ErrVisitFailed, url, err)
	}
}

// toRawCookies converts CDP cookies to the model form.
func toRawCookies(cookies []*network.Cookie) []model.RawCookie {
	out := make([]model.RawCookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		rc := model.RawCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite.String(),
		}
		if !c.Session && c.Expires > 0 {
			sec := int64(c.Expires)
			nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
			expires := time.Unix(sec, nsec).UTC()
			rc.Expires = &expires
		}
		out = append(out, rc)
	}
	return out
}

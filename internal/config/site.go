package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/shellntel/cookiemonster/internal/domain"
)

// SiteConfig holds settings for a single site. Zero fields mean "use the
// run-wide value".
type SiteConfig struct {
	// Wait overrides the page-load timeout for this site.
	Wait time.Duration `yaml:"wait,omitempty"`

	// UserAgent overrides the browser user agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Screenshot forces screenshots on or off for this site.
	Screenshot *bool `yaml:"screenshot,omitempty"`
}

// File represents the structure of the .cookiemonster configuration file.
type File struct {
	// Patterns is the tracking pattern file used when --patterns is not given.
	// Relative paths are resolved against the directory of the config file.
	Patterns string `yaml:"patterns,omitempty"`

	// Sites maps host names or registrable domains to their settings.
	// Keys are written without scheme (e.g. "www.example.com" or "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to all sites unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host.
// An exact host entry wins over an entry for its registrable domain;
// the result is merged over Defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	siteConfig, ok := cf.Sites[host]
	if !ok {
		siteConfig, ok = cf.Sites[domain.Normalize(host)]
	}
	if !ok {
		return result
	}

	return mergeSiteConfig(result, siteConfig)
}

// ForURL returns the configuration for the host of rawURL.
func (cf *File) ForURL(rawURL string) SiteConfig {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return cf.Defaults
	}
	return cf.GetSiteConfig(u.Hostname())
}

// mergeSiteConfig merges default config with site-specific overrides.
func mergeSiteConfig(defaults, override SiteConfig) SiteConfig {
	result := defaults

	if override.Wait > 0 {
		result.Wait = override.Wait
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if override.Screenshot != nil {
		result.Screenshot = override.Screenshot
	}

	return result
}

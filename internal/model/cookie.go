package model

import "time"

// RawCookie is a cookie exactly as captured by the browser after a visit.
// It is produced by the page-visit collaborator and never modified afterwards.
type RawCookie struct {
	// Name is the cookie name. Tracking patterns are matched against it.
	Name string `json:"name"`

	// Value is the cookie value. It may contain session identifiers and
	// must never be logged in clear text.
	Value string `json:"value"`

	// Domain is the cookie's Domain attribute as reported by the browser,
	// possibly with a leading dot (".example.com").
	Domain string `json:"domain"`

	// Path is the cookie's Path attribute.
	Path string `json:"path,omitempty"`

	// Secure reports whether the cookie is restricted to HTTPS.
	Secure bool `json:"secure,omitempty"`

	// HTTPOnly reports whether the cookie is hidden from JavaScript.
	HTTPOnly bool `json:"httpOnly,omitempty"`

	// SameSite is the SameSite attribute ("Strict", "Lax", "None") or empty.
	SameSite string `json:"sameSite,omitempty"`

	// Expires is the expiry time. Nil for session cookies.
	Expires *time.Time `json:"expires,omitempty"`
}

// IsSession reports whether the cookie has no expiry and lives only for the
// browser session.
func (c RawCookie) IsSession() bool {
	return c.Expires == nil
}

// Category is the bucket a cookie is placed in by the classifier.
type Category int

const (
	// CategoryFirstParty is a cookie whose registrable domain equals the
	// registrable domain of the visited page.
	CategoryFirstParty Category = iota

	// CategoryThirdParty is a cookie set for any other registrable domain.
	CategoryThirdParty

	// CategoryThirdPartyTracking is a cookie whose name matched a tracking
	// pattern. The match wins over the domain comparison, so a tracker
	// cookie written by script under the first-party domain lands here.
	CategoryThirdPartyTracking
)

// String returns the label used in reports for the category.
func (c Category) String() string {
	switch c {
	case CategoryFirstParty:
		return "First-party"
	case CategoryThirdParty:
		return "Third-party"
	case CategoryThirdPartyTracking:
		return "3rd Party Tracking"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so categories serialize as
// their report labels.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ClassifiedCookie is a RawCookie together with the category it was placed in.
type ClassifiedCookie struct {
	RawCookie

	// Category is the bucket the cookie was placed in.
	Category Category `json:"category"`

	// Service is the tracking service key from the pattern catalog.
	// Only set for CategoryThirdPartyTracking.
	Service string `json:"service,omitempty"`

	// FriendlyName is the human-readable tracker name of the matching rule.
	// Only set for CategoryThirdPartyTracking.
	FriendlyName string `json:"friendlyName,omitempty"`

	// Vendor is the organization owning the cookie domain. It is filled in
	// lazily for third-party cookies by a vendor resolver and is empty until then.
	Vendor string `json:"vendor,omitempty"`
}

// SummaryKey returns the key under which a tracking cookie is counted,
// in the form "friendlyName (service)". It returns an empty string for
// cookies that are not tracking cookies.
func (c ClassifiedCookie) SummaryKey() string {
	if c.Category != CategoryThirdPartyTracking {
		return ""
	}
	return SummaryKey(c.FriendlyName, c.Service)
}

// SummaryKey builds a summary count key from a friendly name and service.
func SummaryKey(friendlyName, service string) string {
	return friendlyName + " (" + service + ")"
}

package classifier

import (
	"github.com/shellntel/cookiemonster/internal/domain"
	"github.com/shellntel/cookiemonster/internal/model"
	"github.com/shellntel/cookiemonster/internal/pattern"
)

// Matcher finds the first tracking rule matching a cookie name.
// *pattern.Catalog implements it.
type Matcher interface {
	Match(cookieName string) (pattern.Rule, bool)
}

// Buckets is the output of Classify for a single visit.
type Buckets struct {
	FirstParty []model.ClassifiedCookie
	ThirdParty []model.ClassifiedCookie
	Tracking   []model.ClassifiedCookie

	// Counts holds one entry per tracking match keyed by "friendlyName (service)".
	Counts *model.Counts
}

// Len returns the number of classified cookies.
func (b Buckets) Len() int {
	return len(b.FirstParty) + len(b.ThirdParty) + len(b.Tracking)
}

// Classify places every cookie in exactly one bucket, in input order.
//
// A nil or empty cookie list yields empty buckets and zero counts.
// A nil matcher disables tracking detection.
func Classify(cookies []model.RawCookie, visitedDomain string, matcher Matcher) Buckets {
	b := Buckets{
		FirstParty: []model.ClassifiedCookie{},
		ThirdParty: []model.ClassifiedCookie{},
		Tracking:   []model.ClassifiedCookie{},
		Counts:     model.NewCounts(),
	}

	site := domain.Normalize(visitedDomain)

	for _, c := range cookies {
		cc := ClassifyCookie(c, site, matcher)
		switch cc.Category {
		case model.CategoryThirdPartyTracking:
			b.Tracking = append(b.Tracking, cc)
			b.Counts.Inc(cc.SummaryKey())
		case model.CategoryFirstParty:
			b.FirstParty = append(b.FirstParty, cc)
		default:
			b.ThirdParty = append(b.ThirdParty, cc)
		}
	}

	return b
}

// ClassifyCookie categorizes a single cookie against an already normalized
// site domain.
func ClassifyCookie(c model.RawCookie, site string, matcher Matcher) model.ClassifiedCookie {
	cc := model.ClassifiedCookie{RawCookie: c}

	if matcher != nil {
		if rule, ok := matcher.Match(c.Name); ok {
			cc.Category = model.CategoryThirdPartyTracking
			cc.Service = rule.Service
			cc.FriendlyName = rule.FriendlyName
			return cc
		}
	}

	if site != "" && domain.Normalize(c.Domain) == site {
		cc.Category = model.CategoryFirstParty
		return cc
	}

	cc.Category = model.CategoryThirdParty
	return cc
}

// NewResult classifies the cookies of a successful visit and returns the
// per-URL result. The visited domain is derived from finalURL; when it has
// no host the cookies are compared against an empty domain and all
// non-tracking cookies are third-party.
func NewResult(originalURL, finalURL string, cookies []model.RawCookie, matcher Matcher) *model.ClassificationResult {
	visited, err := domain.HostFromURL(finalURL)
	if err != nil {
		visited = ""
	}

	b := Classify(cookies, visited, matcher)

	return &model.ClassificationResult{
		OriginalURL:   originalURL,
		FinalURL:      finalURL,
		VisitedDomain: visited,
		FirstParty:    b.FirstParty,
		ThirdParty:    b.ThirdParty,
		Tracking:      b.Tracking,
		SummaryCounts: b.Counts,
	}
}

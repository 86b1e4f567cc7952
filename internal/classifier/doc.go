// Package classifier partitions the cookies captured during one page visit
// into first-party, third-party and tracking buckets.
//
// A cookie whose name contains a token from the tracking pattern catalog is
// always a tracking cookie, even when it was written under the visited site's
// own domain: trackers loaded by script commonly set their cookies on the
// first-party domain. Only cookies that match no rule are compared by
// registrable domain.
//
// Classification is pure. It performs no I/O, holds no state between calls
// and cannot fail, so results for different URLs can be computed on
// different goroutines without coordination.
package classifier

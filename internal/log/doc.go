// Package log provides structured logging that never prints cookie values
// or other secrets, built on top of the standard slog package.
//
// SecureHandler wraps any slog.Handler and masks:
//   - attributes whose key names a cookie value, header, session or credential
//     (cookie_value, value, cookie, set-cookie, session, token, ...)
//   - string values that look like secrets or tracker identifiers (JWTs,
//     bearer tokens, long opaque tokens, Cookie header strings, Google
//     Analytics client IDs, Meta Pixel browser IDs)
//
// Masking applies at every level, so --verbose cookie dumps are safe to share.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("retrieved cookie",
//	    "name", "_ga",
//	    "cookie_value", "GA1.2.1234567890.1700000000", // logged as ***REDACTED***
//	)
package log

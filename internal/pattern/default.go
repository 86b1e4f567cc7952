package pattern

import (
	_ "embed"
)

// DefaultFileName is the pattern file name looked up when none is given.
const DefaultFileName = "tracking_cookie_patterns.json"

//go:embed templates/tracking_cookie_patterns.json
var defaultPatterns []byte

// DefaultPatterns returns the built-in pattern document. The init command
// writes it to disk so users have a starting point to edit.
func DefaultPatterns() []byte {
	out := make([]byte, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}

// Default parses the built-in pattern document.
func Default() (*Catalog, error) {
	return Parse(defaultPatterns)
}

// Package pipeline runs the per-URL scan steps and fans a list of URLs out
// over a bounded number of goroutines.
//
// A scan is a sequence of steps (visit the page, then classify its
// cookies) applied to one model.Scan. Each URL gets its own Scan and its
// own Pipeline, so no mutable state is shared between URLs. The batch
// processor returns scans in input order; merging them into one report is
// left to a single owner (see package aggregate).
package pipeline

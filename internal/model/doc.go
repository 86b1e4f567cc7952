// Package model defines the data structures shared by the cookie
// classification pipeline.
//
// The types here are deliberately free of behavior that performs I/O:
//   - RawCookie is what the browser hands back after a page visit
//   - ClassifiedCookie tags a RawCookie with its Category
//   - ClassificationResult holds the buckets for one requested URL
//   - Counts is an insertion-ordered counter used for tracker summaries
//   - AggregateReport is the flattened, cross-URL output of a run
//
// Design decision: We keep the data model in its own package so that the
// classifier, aggregator and report writers can depend on it without
// depending on each other.
package model

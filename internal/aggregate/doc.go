// Package aggregate folds per-URL classification results into a single
// run report: one flat row per cookie plus the merged tracker counts.
//
// The Aggregator is an explicit accumulator owned by the caller for the
// duration of one run. It is not safe for concurrent use; results computed
// concurrently must be handed to it by a single owner, which keeps row order
// deterministic and merged counts free of lost updates.
package aggregate

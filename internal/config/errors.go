package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and let callers use
// errors.Is() to tell them apart.
var (
	// ErrNoTarget is returned when no URL or URL list file is specified.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --file")

	// ErrInvalidTimeout is returned when the page-load timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrUnknownFormat is returned when the report format is not one of
	// csv, json or markdown.
	ErrUnknownFormat = errors.New("unknown report format: must be csv, json or markdown")

	// ErrInvalidVendorTimeout is returned when vendor lookups are enabled with
	// a timeout that is not positive.
	ErrInvalidVendorTimeout = errors.New("invalid vendor lookup timeout: must be positive")

	// ErrConflictingProxy is returned when both --proxy and --tor are given.
	// Traffic can be routed through one proxy only.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")
)

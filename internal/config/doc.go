// Package config provides configuration structures and utilities for cookiemonster.
// It defines the run options (targets, browser behavior, vendor lookups, report
// output), the optional .cookiemonster YAML file with per-site overrides, and
// lookup of the tracking pattern file.
package config

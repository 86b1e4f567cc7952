package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for cookiemonster.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookiemonster",
		Short: "Audit the cookies a website sets",
		Long: `cookiemonster loads web pages in headless Chrome and classifies every cookie
they set as first-party, third-party or third-party tracking.

Tracking cookies are recognized by a pattern catalog (tracking_cookie_patterns.json).
Third-party cookie owners are looked up via WHOIS. Results are written to
cookie_report.csv and can be summarized per tracking service.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose logging, browser console output and cookie dumps")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewPatternsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/shellntel/cookiemonster/internal/config"
	"github.com/shellntel/cookiemonster/internal/pattern"
	"github.com/spf13/cobra"
)

// NewPatternsCmd creates the patterns command.
func NewPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the tracking patterns in scan order",
		Long: `Patterns prints every tracking rule in the order the classifier tries them.
The first rule whose token occurs in a cookie name decides the tracker, so
a rule listed earlier wins over later ones.

Examples:
  # List the pattern file that scan would use
  cookiemonster patterns

  # List a specific file
  cookiemonster patterns -p my_patterns.yaml

  # List the built-in catalog
  cookiemonster patterns --builtin`,
		Args: cobra.NoArgs,
		RunE: runPatternsCmd,
	}

	cmd.Flags().StringP("patterns", "p", "",
		"Tracking pattern file (default: "+config.DefaultPatternFile+" in current or config directory)")
	cmd.Flags().Bool("builtin", false,
		"List the built-in catalog instead of a file")

	return cmd
}

// runPatternsCmd executes the patterns command.
func runPatternsCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("patterns")
	if err != nil {
		return err
	}
	builtin, err := cmd.Flags().GetBool("builtin")
	if err != nil {
		return err
	}

	var (
		catalog *pattern.Catalog
		source  string
	)
	if builtin {
		catalog, err = pattern.Default()
		source = "built-in catalog"
	} else {
		source = config.FindPatternFile(path)
		catalog, err = pattern.Load(source)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tracking patterns from %s\n", source)

	table := tablewriter.NewWriter(out)
	table.Header("#", "Service", "Token", "Tracker")
	for i, r := range catalog.Rules() {
		if err := table.Append([]string{fmt.Sprintf("%d", i+1), r.Service, r.Token, r.FriendlyName}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d rule(s) in %d service(s)", catalog.Len(), len(catalog.Services()))
	if n := catalog.Skipped(); n > 0 {
		fmt.Fprintf(out, ", %d malformed entries skipped", n)
	}
	fmt.Fprintln(out)

	return nil
}

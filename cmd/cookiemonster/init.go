package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shellntel/cookiemonster/internal/config"
	"github.com/shellntel/cookiemonster/internal/pattern"
	"github.com/spf13/cobra"
)

//go:embed templates/cookiemonster.yaml
var configTemplate embed.FS

// configTemplatePath is the embedded config file template.
const configTemplatePath = "templates/cookiemonster.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter pattern file and configuration file",
		Long: `Initialize writes two files into the target directory:

- tracking_cookie_patterns.json: the built-in tracking pattern catalog,
  ready to be extended with your own services
- .cookiemonster: a commented configuration file with per-site settings

Examples:
  # Create both files in the current directory
  cookiemonster init

  # Create them in the user config directory
  cookiemonster init --global

  # Overwrite existing files
  cookiemonster init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("dir", "d", ".",
		"Directory to write the files to")
	cmd.Flags().Bool("global", false,
		"Write to the user config directory instead of --dir")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	configName := config.DefaultConfigFile
	if global {
		dir = config.XDGConfigDir()
		// FindConfigFile expects config.yaml in the config directory
		configName = "config.yaml"
	}

	content, err := configTemplate.ReadFile(configTemplatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	files := []struct {
		path    string
		content []byte
	}{
		{filepath.Join(dir, config.DefaultPatternFile), pattern.DefaultPatterns()},
		{filepath.Join(dir, configName), content},
	}

	// Check everything first so a refusal leaves no partial result
	if !force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return fmt.Errorf("file already exists: %s (use -f to overwrite)", f.path)
			}
		}
	}

	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		if err := os.WriteFile(f.path, f.content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		fmt.Fprintf(out, "Created %s\n", f.path)
	}

	fmt.Fprintln(out, "\nEdit these files to:")
	fmt.Fprintln(out, "  - add tracking services and cookie name tokens")
	fmt.Fprintln(out, "  - set per-site page-load timeouts and user agents")

	return nil
}

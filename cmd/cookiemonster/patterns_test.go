package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shellntel/cookiemonster/internal/pattern"
)

// TestRunPatternsCmd tests the patterns listing.
func TestRunPatternsCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists built-in catalog", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		cmd := NewPatternsCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--builtin"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := out.String()
		for _, want := range []string{"built-in catalog", "GoogleAnalytics", "_ga", "rule(s) in"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists file and reports skipped entries", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "patterns.json")
		doc := `{"Acme": {"patterns": [["acme_id", "Acme ID", "Acme"], ["broken"]]}}`
		if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
			t.Fatal(err)
		}

		var out bytes.Buffer
		cmd := NewPatternsCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"-p", path})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := out.String()
		if !strings.Contains(output, "acme_id") {
			t.Errorf("expected rule in output, got %q", output)
		}
		if !strings.Contains(output, "1 rule(s) in 1 service(s), 1 malformed entries skipped") {
			t.Errorf("unexpected totals line in %q", output)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		cmd := NewPatternsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-p", filepath.Join(t.TempDir(), "missing.json")})
		err := cmd.Execute()
		if !errors.Is(err, pattern.ErrCatalogNotFound) {
			t.Errorf("expected ErrCatalogNotFound, got %v", err)
		}
	})
}

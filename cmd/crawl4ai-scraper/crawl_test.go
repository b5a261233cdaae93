package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/devoperand/crawl4ai-scraper/internal/config"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [seed-url...]" {
			t.Errorf("expected use 'crawl [seed-url...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has scope and budget flags", func(t *testing.T) {
		t.Parallel()
		for name, shorthand := range map[string]string{
			"include":     "i",
			"exclude":     "e",
			"max-pages":   "p",
			"max-depth":   "d",
			"concurrency": "n",
			"timeout":     "t",
			"output":      "o",
			"strategy":    "s",
			"config":      "c",
		} {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				t.Fatalf("expected %s flag", name)
			}
			if flag.Shorthand != shorthand {
				t.Errorf("flag %s: expected shorthand %q, got %q", name, shorthand, flag.Shorthand)
			}
		}
	})

	t.Run("has long-only flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"delay", "naming", "template", "extraction", "selector",
			"cleaning", "include-external", "user-agent", "report-file",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has report format flags", func(t *testing.T) {
		t.Parallel()
		jsonFlag := cmd.Flags().Lookup("json")
		if jsonFlag == nil || jsonFlag.Shorthand != "j" {
			t.Error("expected json flag with shorthand 'j'")
		}
		mdFlag := cmd.Flags().Lookup("markdown")
		if mdFlag == nil || mdFlag.Shorthand != "m" {
			t.Error("expected markdown flag with shorthand 'm'")
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// writeTestConfig writes a config file into a temp dir and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestBuildConfig tests flag-to-config translation.
func TestBuildConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		path := writeTestConfig(t, "sites: {}\n")

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, config.DefaultMaxPages)
		}
		if cfg.MaxDepth != config.DefaultMaxDepth {
			t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, config.DefaultMaxDepth)
		}
		if cfg.Strategy != config.DefaultStrategy {
			t.Errorf("Strategy = %q, want %q", cfg.Strategy, config.DefaultStrategy)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be enabled")
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.com/" {
			t.Errorf("Seeds = %v", cfg.Seeds)
		}
	})

	t.Run("fails for missing explicit config", func(t *testing.T) {
		cmd := NewCrawlCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		_, err := buildConfig(cmd, []string{"https://example.com/"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})

	t.Run("applies site overrides from file", func(t *testing.T) {
		path := writeTestConfig(t, `
sites:
  docs.example.com:
    includePatterns:
      - "**/guide/**"
    maxDepth: 4
    requestDelay: 0.5
`)

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/start"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.MaxDepth != 4 {
			t.Errorf("MaxDepth = %d, want 4", cfg.MaxDepth)
		}
		if cfg.RequestDelay != 500*time.Millisecond {
			t.Errorf("RequestDelay = %v, want 500ms", cfg.RequestDelay)
		}
		if len(cfg.IncludePatterns) != 1 || cfg.IncludePatterns[0] != "**/guide/**" {
			t.Errorf("IncludePatterns = %v", cfg.IncludePatterns)
		}
	})

	t.Run("flags win over file", func(t *testing.T) {
		path := writeTestConfig(t, `
sites:
  docs.example.com:
    maxDepth: 4
`)

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", path, "--max-depth", "5"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.MaxDepth != 5 {
			t.Errorf("MaxDepth = %d, want 5", cfg.MaxDepth)
		}
	})

	t.Run("no-db disables history", func(t *testing.T) {
		path := writeTestConfig(t, "sites: {}\n")

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", path, "--no-db"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be disabled by --no-db")
		}
	})

	t.Run("unbounded file budget maps to zero", func(t *testing.T) {
		path := writeTestConfig(t, `
sites:
  docs.example.com:
    maxPages: -1
`)

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.MaxPages != 0 {
			t.Errorf("MaxPages = %d, want 0 (unbounded)", cfg.MaxPages)
		}
	})
}

// TestGetVerboseFlag tests verbose flag resolution.
func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("false without verbose flag", func(t *testing.T) {
		t.Parallel()
		cmd := &cobra.Command{Use: "bare"}
		if getVerboseFlag(cmd) {
			t.Error("expected false for command without verbose flag")
		}
	})

	t.Run("reads local verbose flag", func(t *testing.T) {
		t.Parallel()
		cmd := &cobra.Command{Use: "with-flag"}
		cmd.Flags().Bool("verbose", false, "")
		if err := cmd.Flags().Set("verbose", "true"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		if !getVerboseFlag(cmd) {
			t.Error("expected true when verbose flag is set")
		}
	})
}

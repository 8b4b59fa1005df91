package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/htmlgrader/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("expected use 'init', got %q", cmd.Use)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultChecksFile {
			t.Errorf("expected default %q, got %q", config.DefaultChecksFile, flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
	})
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a valid checks file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "checks.json")

		stdout, stderr, code := runCLI(t, "init", "-o", outputPath)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}
		if !strings.Contains(stdout, "Created checks file") {
			t.Errorf("unexpected output %q", stdout)
		}

		content, err := os.ReadFile(outputPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read checks file: %v", err)
		}
		var selectors []string
		if err := json.Unmarshal(content, &selectors); err != nil {
			t.Fatalf("expected JSON array of strings: %v", err)
		}
		if len(selectors) == 0 {
			t.Error("expected starter selectors")
		}
	})

	t.Run("creates settings file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		outputPath := filepath.Join(dir, "checks.json")

		_, stderr, code := runCLI(t, "init", "-o", outputPath, "--settings-file")
		if code != 0 {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}

		settingsPath := filepath.Join(dir, config.DefaultSettingsFile)
		settings, err := config.LoadSettings(settingsPath)
		if err != nil {
			t.Fatalf("expected loadable settings file: %v", err)
		}
		if settings.Defaults.Headers["Accept-Language"] != "en" {
			t.Errorf("unexpected default headers: %v", settings.Defaults.Headers)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "week1", "checks.json")
		if _, _, code := runCLI(t, "init", "-o", outputPath); code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if _, err := os.Stat(outputPath); err != nil {
			t.Errorf("expected file to be created: %v", err)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		outputPath := writeFile(t, t.TempDir(), "checks.json", `["keep"]`)

		_, stderr, code := runCLI(t, "init", "-o", outputPath)
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if !strings.Contains(stderr, "already exists") {
			t.Errorf("unexpected stderr %q", stderr)
		}
		content, _ := os.ReadFile(outputPath) //nolint:gosec // test file
		if string(content) != `["keep"]` {
			t.Errorf("file was overwritten: %s", content)
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		outputPath := writeFile(t, t.TempDir(), "checks.json", `["keep"]`)

		if _, _, code := runCLI(t, "init", "-o", outputPath, "-f"); code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		content, _ := os.ReadFile(outputPath) //nolint:gosec // test file
		if string(content) == `["keep"]` {
			t.Error("expected file to be overwritten")
		}
	})
}

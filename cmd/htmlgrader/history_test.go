package main

import (
	"path/filepath"
	"strings"
	"testing"
)

// saveScenarioRun grades htmlPath with --save into dbDir.
func saveScenarioRun(t *testing.T, dbDir, checksPath, htmlPath string) {
	t.Helper()

	_, stderr, code := runCLI(t, "-c", checksPath, "-f", htmlPath, "--save", "--db-dir", dbDir)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("requires a source", func(t *testing.T) {
		t.Parallel()

		_, stderr, code := runCLI(t, "history", "--db-dir", t.TempDir())
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if !strings.Contains(stderr, "source is required") {
			t.Errorf("unexpected stderr %q", stderr)
		}
	})

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		stdout, _, code := runCLI(t, "history", "--list-sources", "--db-dir", t.TempDir())
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if !strings.Contains(stdout, "No saved runs") {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("lists and diffs saved runs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		checksPath := writeFile(t, dir, "checks.json", scenarioChecks)
		htmlPath := writeFile(t, dir, "index.html", scenarioPage)

		saveScenarioRun(t, dbDir, checksPath, htmlPath)

		// The student adds a paragraph and removes the link.
		writeFile(t, dir, "index.html", `<html><body><h1>Hello</h1><p>text</p></body></html>`)
		saveScenarioRun(t, dbDir, checksPath, htmlPath)

		stdout, stderr, code := runCLI(t, "history", "--list-sources", "--db-dir", dbDir)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}
		abs, err := filepath.Abs(htmlPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, abs) {
			t.Errorf("expected source %s in output:\n%s", abs, stdout)
		}

		stdout, _, code = runCLI(t, "history", htmlPath, "--db-dir", dbDir)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if !strings.Contains(stdout, "2 shown") || !strings.Contains(stdout, "2/3") {
			t.Errorf("unexpected run list:\n%s", stdout)
		}

		stdout, _, code = runCLI(t, "history", "--diff", htmlPath, "--db-dir", dbDir)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		for _, want := range []string{"  + p", "  - a[href]", "Document: changed"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in diff:\n%s", want, stdout)
			}
		}

		stdout, _, code = runCLI(t, "history", "--diff", "-j", htmlPath, "--db-dir", dbDir)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if !strings.Contains(stdout, `"now_missing": [`) {
			t.Errorf("expected JSON diff:\n%s", stdout)
		}
	})

	t.Run("shows a saved run by id", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		checksPath := writeFile(t, dir, "checks.json", scenarioChecks)
		htmlPath := writeFile(t, dir, "index.html", scenarioPage)
		saveScenarioRun(t, dir, checksPath, htmlPath)

		stdout, stderr, code := runCLI(t, "history", "--show", "1", "-j", "--db-dir", dir)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}
		if stdout != scenarioReport {
			t.Errorf("unexpected report:\n%s\nwant:\n%s", stdout, scenarioReport)
		}

		stdout, _, code = runCLI(t, "history", "--show", "1", "--db-dir", dir)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if !strings.Contains(stdout, "[FAIL] p") {
			t.Errorf("expected text report, got:\n%s", stdout)
		}
	})

	t.Run("show unknown id", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		checksPath := writeFile(t, dir, "checks.json", scenarioChecks)
		htmlPath := writeFile(t, dir, "index.html", scenarioPage)
		saveScenarioRun(t, dir, checksPath, htmlPath)

		_, stderr, code := runCLI(t, "history", "--show", "42", "--db-dir", dir)
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if !strings.Contains(stderr, "run not found") {
			t.Errorf("unexpected stderr %q", stderr)
		}
	})

	t.Run("diff needs two runs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		checksPath := writeFile(t, dir, "checks.json", scenarioChecks)
		htmlPath := writeFile(t, dir, "index.html", scenarioPage)
		saveScenarioRun(t, dir, checksPath, htmlPath)

		_, stderr, code := runCLI(t, "history", "--diff", htmlPath, "--db-dir", dir)
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if !strings.Contains(stderr, ErrNotEnoughRuns.Error()) {
			t.Errorf("unexpected stderr %q", stderr)
		}
	})
}

func TestResolveLocation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "index.html", "")

	if got := resolveLocation("https://example.com/"); got != "https://example.com/" {
		t.Errorf("expected URL unchanged, got %s", got)
	}
	if got := resolveLocation(filepath.Join(dir, "missing.html")); got != filepath.Join(dir, "missing.html") {
		t.Errorf("expected unknown path unchanged, got %s", got)
	}
	if got := resolveLocation(path); !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %s", got)
	}
}

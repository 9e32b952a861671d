package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hakana.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
[analysis]
paths = ["src"]
ignore_paths = ["src/vendor"]
workers = 4

[issues]
suppress = ["UnusedPrivateMethod"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Analysis.Paths) != 1 || cfg.Analysis.Paths[0] != "src" {
		t.Errorf("unexpected paths: %v", cfg.Analysis.Paths)
	}
	if !cfg.IsSuppressed("UnusedPrivateMethod") {
		t.Error("expected UnusedPrivateMethod to be suppressed")
	}
	if cfg.IsSuppressed("UnusedFunction") {
		t.Error("did not expect UnusedFunction to be suppressed")
	}
}

func TestLoadMissingAnalysisSection(t *testing.T) {
	path := writeConfig(t, `[issues]
suppress = []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for missing [analysis]")
	}
}

func TestLoadEmptyPaths(t *testing.T) {
	path := writeConfig(t, `[analysis]
paths = []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for empty paths")
	}
}

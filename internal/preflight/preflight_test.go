package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"sieve/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSourceFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "list.csv")
	if err := os.WriteFile(f, []byte("Emails\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckSourceFile("source", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckSourceFile("source", dir); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckSourceFile("source", filepath.Join(dir, "missing.csv")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func TestRunAllReportsMissingOracle(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = base
	cfg.Paths.StateDir = base
	cfg.History.Enabled = true

	source := filepath.Join(base, "list.csv")
	if err := os.WriteFile(source, []byte("Emails\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg, source)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Oracle endpoint" {
		t.Fatalf("expected only the oracle check to fail, got %+v", failed)
	}

	cfg.Oracle.URLTemplate = "https://oracle.test/{identifier}"
	if failed := Failed(RunAll(&cfg, source)); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
}

func TestRunAllSkipsSourceWhenEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.History.Enabled = false
	results := RunAll(&cfg, "")
	if len(results) != 2 {
		t.Fatalf("expected oracle and log checks only, got %+v", results)
	}
}

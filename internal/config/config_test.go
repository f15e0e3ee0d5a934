package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sieve/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SIEVE_ORACLE_URL", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "sieve", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.HistoryPath() != filepath.Join(tempHome, ".local", "share", "sieve", "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Input.Column != "Emails" || cfg.Input.ColumnHint != "mail" {
		t.Fatalf("unexpected input defaults: %+v", cfg.Input)
	}
	if cfg.Engine.Workers != 50 {
		t.Fatalf("expected 50 workers by default, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.Autosave != 5000 {
		t.Fatalf("expected autosave 5000 by default, got %d", cfg.Engine.Autosave)
	}
	if cfg.Engine.Resume {
		t.Fatal("expected resume disabled by default")
	}
	if cfg.Oracle.ConfirmStatus != 200 {
		t.Fatalf("expected confirm status 200, got %d", cfg.Oracle.ConfirmStatus)
	}
	if cfg.Oracle.UserAgent != "Mozilla/5.0" {
		t.Fatalf("unexpected user agent %q", cfg.Oracle.UserAgent)
	}
	if err := cfg.ValidateOracle(); err == nil {
		t.Fatal("expected oracle validation to fail without url_template")
	}
}

func TestLoadReadsTOMLAndEnvFallback(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SIEVE_ORACLE_URL", "https://oracle.test/check/{identifier}?v=1")

	doc := map[string]any{
		"input": map[string]any{
			"column":    "Address",
			"delimiter": "tab",
		},
		"engine": map[string]any{
			"workers":  8,
			"autosave": 2,
			"resume":   true,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sieve.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Input.Column != "Address" {
		t.Fatalf("unexpected column %q", cfg.Input.Column)
	}
	if cfg.Input.ColumnHint != "mail" {
		t.Fatalf("expected default hint, got %q", cfg.Input.ColumnHint)
	}
	if cfg.Input.Delimiter != "\t" {
		t.Fatalf("expected tab delimiter, got %q", cfg.Input.Delimiter)
	}
	if cfg.Engine.Workers != 8 || cfg.Engine.Autosave != 2 || !cfg.Engine.Resume {
		t.Fatalf("unexpected engine settings: %+v", cfg.Engine)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
	if cfg.Oracle.URLTemplate != "https://oracle.test/check/{identifier}?v=1" {
		t.Fatalf("expected env oracle url, got %q", cfg.Oracle.URLTemplate)
	}
	if err := cfg.ValidateOracle(); err != nil {
		t.Fatalf("ValidateOracle returned error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "workers", mutate: func(c *config.Config) { c.Engine.Workers = 0 }, want: "engine.workers"},
		{name: "autosave", mutate: func(c *config.Config) { c.Engine.Autosave = -1 }, want: "engine.autosave"},
		{name: "confirm status", mutate: func(c *config.Config) { c.Oracle.ConfirmStatus = 42 }, want: "oracle.confirm_status"},
		{name: "delimiter", mutate: func(c *config.Config) { c.Input.Delimiter = ";;" }, want: "input.delimiter"},
		{name: "log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, want: "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidateOracleTemplate(t *testing.T) {
	cases := []struct {
		template string
		ok       bool
	}{
		{template: "https://oracle.test/{identifier}", ok: true},
		{template: "http://127.0.0.1:8080/a/{identifier}?p=1", ok: true},
		{template: "https://oracle.test/static", ok: false},
		{template: "ftp://oracle.test/{identifier}", ok: false},
		{template: "https:///{identifier}", ok: false},
	}
	for _, tc := range cases {
		cfg := config.Default()
		cfg.Oracle.URLTemplate = tc.template
		err := cfg.ValidateOracle()
		if tc.ok && err != nil {
			t.Fatalf("%q: unexpected error %v", tc.template, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.template)
		}
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if err := cfg.ValidateOracle(); err != nil {
		t.Fatalf("sample oracle settings invalid: %v", err)
	}
	rendered, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(rendered, "url_template") {
		t.Fatalf("expected encoded config to include url_template, got %q", rendered)
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

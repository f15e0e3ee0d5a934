package testsupport

import (
	"path/filepath"
	"testing"

	"sieve/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Oracle.URLTemplate = "http://127.0.0.1:1/{identifier}"
	cfgVal.Oracle.TimeoutSeconds = 5
	cfgVal.Engine.Workers = 4
	cfgVal.Engine.Autosave = 0
	cfgVal.History.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOracle points the oracle template at a test server base URL.
func WithOracle(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Oracle.URLTemplate = baseURL + "/lookup/" + config.IdentifierPlaceholder
	}
}

// WithEngine overrides worker count and autosave cadence.
func WithEngine(workers, autosave int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.Workers = workers
		b.cfg.Engine.Autosave = autosave
	}
}

// WithHistory enables the run ledger under the temp state directory.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithMetricsTextfile writes metrics under the temp directory.
func WithMetricsTextfile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", name)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

package preflight

import (
	"path/filepath"

	"sieve/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config. When
// source is empty the source checks are skipped.
func RunAll(cfg *config.Config, source string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if source != "" {
		results = append(results, CheckSourceFile("Candidate source", source))
		results = append(results, CheckDirectoryAccess("Checkpoint directory", filepath.Dir(source)))
	}

	results = append(results, CheckOracleConfig(cfg))

	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Package config loads the check run's TOML configuration (spec.md §9.2):
// which paths to analyze or ignore, which issue kinds to suppress, the
// worker count and whether to look for unused code.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root of `hakana.toml`.
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Issues   IssuesConfig   `toml:"issues"`
}

// AnalysisConfig controls what gets scanned and how.
type AnalysisConfig struct {
	Paths           []string `toml:"paths"`
	IgnorePaths     []string `toml:"ignore_paths"`
	Workers         int      `toml:"workers"` // 0 means "use GOMAXPROCS"
	FindUnusedCode  bool     `toml:"find_unused_code"`
}

// IssuesConfig lists per-kind suppressions.
type IssuesConfig struct {
	Suppress []string `toml:"suppress"`
}

// Load parses path as TOML into a Config, requiring an [analysis] table
// with at least one path. Keys that match no field of Config are ignored,
// not rejected.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("analysis") {
		return nil, fmt.Errorf("%s: missing [analysis]", path)
	}
	if len(cfg.Analysis.Paths) == 0 {
		return nil, fmt.Errorf("%s: [analysis].paths must list at least one path", path)
	}
	return &cfg, nil
}

// IsSuppressed reports whether kindName (the diagnostics.Kind's String())
// appears in the suppression list.
func (c *Config) IsSuppressed(kindName string) bool {
	for _, k := range c.Issues.Suppress {
		if strings.EqualFold(k, kindName) {
			return true
		}
	}
	return false
}

// Package config holds the interpreter limits and the optional
// sigil.yaml override file:
//
//	limits:
//	  expansion_depth: 500
//	  eval_depth: 10000
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Limits are the per-run resource bounds.
type Limits struct {
	ExpansionDepth int `yaml:"expansion_depth"`
	EvalDepth      int `yaml:"eval_depth"`
}

// Config represents the top-level sigil.yaml configuration.
type Config struct {
	Limits Limits `yaml:"limits"`
}

func DefaultLimits() Limits {
	return Limits{
		ExpansionDepth: DefaultExpansionDepth,
		EvalDepth:      DefaultEvalDepth,
	}
}

// Load reads a sigil.yaml file. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Limits: DefaultLimits()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Limits.ExpansionDepth <= 0 {
		cfg.Limits.ExpansionDepth = DefaultExpansionDepth
	}
	if cfg.Limits.EvalDepth <= 0 {
		cfg.Limits.EvalDepth = DefaultEvalDepth
	}
	return cfg, nil
}

// LoadNear looks for sigil.yaml next to the given source file, then in
// the working directory. Absence is not an error.
func LoadNear(sourcePath string) (*Config, error) {
	candidates := []string{}
	if sourcePath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(sourcePath), ConfigFileName))
	}
	candidates = append(candidates, ConfigFileName)

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return &Config{Limits: DefaultLimits()}, nil
}

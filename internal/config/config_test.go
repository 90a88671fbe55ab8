package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()
	if limits.ExpansionDepth != DefaultExpansionDepth {
		t.Errorf("wrong expansion depth: %d", limits.ExpansionDepth)
	}
	if limits.EvalDepth != DefaultEvalDepth {
		t.Errorf("wrong eval depth: %d", limits.EvalDepth)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	data := "limits:\n  expansion_depth: 32\n  eval_depth: 256\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Limits.ExpansionDepth != 32 {
		t.Errorf("wrong expansion depth: %d", cfg.Limits.ExpansionDepth)
	}
	if cfg.Limits.EvalDepth != 256 {
		t.Errorf("wrong eval depth: %d", cfg.Limits.EvalDepth)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("limits:\n  expansion_depth: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Limits.ExpansionDepth != 7 {
		t.Errorf("wrong expansion depth: %d", cfg.Limits.ExpansionDepth)
	}
	if cfg.Limits.EvalDepth != DefaultEvalDepth {
		t.Errorf("wrong eval depth: %d", cfg.Limits.EvalDepth)
	}
}

func TestLoadNearMissingIsDefaults(t *testing.T) {
	cfg, err := LoadNear(filepath.Join(t.TempDir(), "program.sgl"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Limits != DefaultLimits() {
		t.Errorf("expected defaults, got %+v", cfg.Limits)
	}
}

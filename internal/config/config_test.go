package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.PathfindingType != Stochastic {
		t.Fatalf("expected default pathfinding_type stochastic, got %v", cfg.PathfindingType)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("not_a_real_option: 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unrecognized option")
	}
}

func TestLoadOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("stochastic_dispersion: 2.5\npathfinding_type: deterministic\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StochasticDispersion != 2.5 {
		t.Fatalf("expected override to 2.5, got %v", cfg.StochasticDispersion)
	}
	if cfg.PathfindingType != Deterministic {
		t.Fatalf("expected deterministic, got %v", cfg.PathfindingType)
	}
}

func TestValidateRejectsNonPositiveDispersionWhenStochastic(t *testing.T) {
	cfg := Default()
	cfg.StochasticDispersion = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero dispersion under stochastic pathfinding")
	}
}

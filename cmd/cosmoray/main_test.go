package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"ERROR", LogLevelError},
		{"garbage", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadRunConfig(t *testing.T) {
	path := writeConfig(t, `
name: smoke
seed: 1
candidates: 10
source:
  particle: {a: 1, z: 1}
  energy_eev: 10
conditions:
  - type: max_trajectory_length
    value_mpc: 100
`)
	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("loadRunConfig: %v", err)
	}
	if cfg.Name != "smoke" || cfg.Candidates != 10 {
		t.Errorf("loaded config: %+v", cfg)
	}
	if cfg.Source.EnergyEeV == nil || *cfg.Source.EnergyEeV != 10 {
		t.Errorf("source energy: %+v", cfg.Source)
	}
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
}

func TestLoadRunConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "name: [unclosed")
	if _, err := loadRunConfig(path); err == nil {
		t.Fatalf("malformed YAML should fail")
	}
}

func TestLoadRunConfigInvalid(t *testing.T) {
	path := writeConfig(t, `
name: broken
candidates: 0
source:
  particle: {a: 1, z: 1}
conditions: []
`)
	_, err := loadRunConfig(path)
	if err == nil {
		t.Fatalf("invalid config should fail validation")
	}
	if !strings.Contains(err.Error(), "validating config") {
		t.Errorf("error should come from validation: %v", err)
	}
}

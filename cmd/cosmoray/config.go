package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cosmoray/internal/prop"
)

// loadRunConfig reads and validates a YAML run configuration.
func loadRunConfig(path string) (prop.RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return prop.RunConfig{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg prop.RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return prop.RunConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return prop.RunConfig{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents the per-project generation configuration loaded
// from ratchet.yaml
type ProjectConfig struct {
	Version  string         `yaml:"version"`
	Generate GenerateConfig `yaml:"generate"`
}

// GenerateConfig contains generation settings
type GenerateConfig struct {
	// Package is the Go package name of the emitted files.
	Package string `yaml:"package"`
	// OutputDir is the directory generated files are written under.
	OutputDir string `yaml:"output_dir"`
	// PublicSetters exposes setters accepting validated values; the raw
	// deserializer setters exist either way.
	PublicSetters bool `yaml:"public_setters"`
	// Roots optionally overrides the schema document's boundary roots.
	Roots []string `yaml:"roots"`
	// MaxNameAttempts bounds synthetic name collision probing.
	MaxNameAttempts int `yaml:"max_name_attempts"`
	// MaxWorkers bounds parallel shape rendering.
	MaxWorkers int `yaml:"max_workers"`
}

// DefaultProjectConfig returns default generation settings
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version: "v1",
		Generate: GenerateConfig{
			Package:         "model",
			OutputDir:       "generated",
			PublicSetters:   true,
			MaxNameAttempts: 100,
			MaxWorkers:      4,
		},
	}
}

// LoadProjectConfig loads ratchet.yaml from the given path. Missing file
// returns defaults; a malformed file is an error.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProjectConfig(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := DefaultProjectConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Generate.MaxNameAttempts <= 0 {
		cfg.Generate.MaxNameAttempts = 100
	}
	if cfg.Generate.MaxWorkers <= 0 {
		cfg.Generate.MaxWorkers = 4
	}
	return cfg, nil
}

// FindProjectConfig walks up from dir looking for ratchet.yaml or
// ratchet.yml
func FindProjectConfig(dir string) (string, bool) {
	for {
		for _, name := range []string{"ratchet.yaml", "ratchet.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// cliConfig is the on-disk CLI configuration, stored as YAML in the
// user's home directory by default.
type cliConfig struct {
	BaseURL      string `yaml:"base_url"`
	Token        string `yaml:"token"`
	SnapshotPath string `yaml:"snapshot_path"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".practicelog.yaml"
	}
	return filepath.Join(home, ".practicelog.yaml")
}

func loadConfig(path string) (cliConfig, error) {
	cfg := cliConfig{
		BaseURL: "http://localhost:8080",
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg.SnapshotPath = defaultSnapshotPath(path)
		return cfg, nil
	}
	if err != nil {
		return cliConfig{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = defaultSnapshotPath(path)
	}
	return cfg, nil
}

func saveConfig(path string, cfg cliConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// defaultSnapshotPath keeps the timer snapshot next to the config file so
// pointing --config at a scratch directory isolates all CLI state.
func defaultSnapshotPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), ".practicelog", "timer.json")
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type cliConfig struct {
	ServerURL   string        `yaml:"server_url"`
	StoragePath string        `yaml:"storage_path"`
	Timeout     time.Duration `yaml:"timeout"`
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".marketctl"
	}
	return filepath.Join(dir, "marketctl")
}

// loadConfig reads the YAML file if present and applies defaults and the
// MARKETCTL_SERVER override.
func loadConfig(path string) (*cliConfig, error) {
	cfg := &cliConfig{}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("MARKETCTL_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8080"
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = filepath.Join(defaultConfigDir(), "state.db")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return cfg, nil
}

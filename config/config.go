package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the marketplace node configuration.
type Config struct {
	DataDir        string   `toml:"DataDir"`
	NetworkName    string   `toml:"NetworkName"`
	MetricsAddress string   `toml:"MetricsAddress"`
	CreditName     string   `toml:"CreditName"`
	CreditSymbol   string   `toml:"CreditSymbol"`
	PausedModules  []string `toml:"PausedModules"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// IsPaused reports whether the named module appears in PausedModules. It
// satisfies the pause view consulted by the native engines.
func (c *Config) IsPaused(module string) bool {
	if c == nil {
		return false
	}
	for _, name := range c.PausedModules {
		if strings.EqualFold(strings.TrimSpace(name), module) {
			return true
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "market-local"
	}
	if strings.TrimSpace(cfg.CreditName) == "" {
		cfg.CreditName = "Market Credit"
	}
	if strings.TrimSpace(cfg.CreditSymbol) == "" {
		cfg.CreditSymbol = "MCR"
	}
	if cfg.PausedModules == nil {
		cfg.PausedModules = []string{}
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir: "./market-data",
	}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create default config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}
	return cfg, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "market-local", cfg.NetworkName)
	require.Equal(t, "Market Credit", cfg.CreditName)
	require.Equal(t, "MCR", cfg.CreditSymbol)
	require.Empty(t, cfg.PausedModules)

	// The default file is written so the next load reads it back.
	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
DataDir = "/var/lib/market"
NetworkName = "market-test"
MetricsAddress = ":9091"
PausedModules = ["market"]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/market", cfg.DataDir)
	require.Equal(t, "market-test", cfg.NetworkName)
	require.Equal(t, ":9091", cfg.MetricsAddress)
	// Unset fields still pick up defaults.
	require.Equal(t, "MCR", cfg.CreditSymbol)
	require.Equal(t, []string{"market"}, cfg.PausedModules)
}

func TestIsPaused(t *testing.T) {
	cfg := &Config{PausedModules: []string{"Market", "escrow"}}
	require.True(t, cfg.IsPaused("market"))
	require.True(t, cfg.IsPaused("ESCROW"))
	require.False(t, cfg.IsPaused("factory"))

	var nilCfg *Config
	require.False(t, nilCfg.IsPaused("market"))
}

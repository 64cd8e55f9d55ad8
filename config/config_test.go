package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budgetd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "budget.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Tolerance().Equal(config.Default().Tolerance()))
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":3000"

[database]
path = "/tmp/budget-test.db"

[budget]
timezone = "Europe/Berlin"
overspend_tolerance = "0.50"

[log]
level = "debug"
format = "json"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/budget-test.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
	assert.Equal(t, "0.5", cfg.Tolerance().String())
}

func TestLoad_InvalidTimezone(t *testing.T) {
	path := writeConfig(t, `
[budget]
timezone = "Mars/Olympus_Mons"
`)

	_, err := config.Load(path)

	assert.Error(t, err)
}

func TestLoad_InvalidTolerance(t *testing.T) {
	path := writeConfig(t, `
[budget]
overspend_tolerance = "lots"
`)

	_, err := config.Load(path)

	assert.Error(t, err)
}

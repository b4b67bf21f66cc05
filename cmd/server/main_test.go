package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-route-planner/internal/database"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", "0.0.0.0:9090")
	t.Setenv("DIRECTIONS_PROVIDER", "osrm")
	t.Setenv("DIRECTIONS_API_KEY", "secret")
	t.Setenv("DIRECTIONS_BASE_URL", "http://proxy.local")
	t.Setenv("CACHE_BACKEND", "file")
	t.Setenv("TWO_OPT_MAX_STOPS", "25")

	cfg := database.DefaultConfig()
	require.NoError(t, applyEnvOverrides(cfg))

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)
	assert.Equal(t, database.DirectionsProviderOSRM, cfg.Directions.Provider)
	assert.Equal(t, "secret", cfg.Directions.APIKey)
	assert.Equal(t, "http://proxy.local", cfg.Directions.BaseURL)
	assert.Equal(t, database.CacheBackendFile, cfg.Cache.Backend)
	assert.Equal(t, 25, cfg.Optimizer.TwoOptMaxStops)
}

func TestApplyEnvOverrides_Invalid(t *testing.T) {
	t.Setenv("TWO_OPT_MAX_STOPS", "many")
	assert.Error(t, applyEnvOverrides(database.DefaultConfig()))

	t.Setenv("TWO_OPT_MAX_STOPS", "")
	t.Setenv("CACHE_BACKEND", "memcached")
	assert.Error(t, applyEnvOverrides(database.DefaultConfig()))
}

func TestLoadConfig_FromConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[optimizer]\ntwo_opt_max_stops = 7\n"), 0600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("TWO_OPT_MAX_STOPS", "")
	t.Setenv("CACHE_BACKEND", "")

	cfg, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Optimizer.TwoOptMaxStops)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
}

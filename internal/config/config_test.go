package config

import (
	"dispatch-route-service/internal/services"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Setenv("DISPATCH_TEST_KEY", "  value ")
	assert.Equal(t, "value", Get("DISPATCH_TEST_KEY", "fallback"))

	t.Setenv("DISPATCH_TEST_KEY", "   ")
	assert.Equal(t, "fallback", Get("DISPATCH_TEST_KEY", "fallback"))
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "ESTIMATE_CACHE_TTL", "ORS_RATE_PER_SEC", "ORS_PROFILE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.EstimateCacheTTL)
	assert.Equal(t, 2.0, cfg.ORSRatePerSec)
	assert.Equal(t, "driving-car", cfg.ORSProfile)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "http")
	t.Setenv("ESTIMATE_CACHE_TTL", "soon")
	t.Setenv("ORS_RATE_PER_SEC", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "ESTIMATE_CACHE_TTL")
	assert.Contains(t, err.Error(), "ORS_RATE_PER_SEC")
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOptimizerOptions(t *testing.T) {
	opts, err := LoadOptimizerOptions("")
	require.NoError(t, err)
	assert.Equal(t, services.DefaultOptions(), opts)

	opts, err = LoadOptimizerOptions(writeFile(t, "detour_multiplier: 1.2\nmax_two_opt_scans: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.2, opts.DetourMultiplier)
	assert.Equal(t, 10, opts.MaxTwoOptScans)
	assert.Equal(t, services.DefaultMaxClusterRounds, opts.MaxClusterRounds)
	assert.Equal(t, services.DefaultImprovementEpsilonKm, opts.ImprovementEpsilonKm)

	opts, err = LoadOptimizerOptions(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, services.DefaultOptions(), opts)
}

func TestLoadOptimizerOptionsErrors(t *testing.T) {
	_, err := LoadOptimizerOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadOptimizerOptions(writeFile(t, "detour_multiplier: 0.5\n"))
	require.Error(t, err)

	_, err = LoadOptimizerOptions(writeFile(t, "unknown_field: 3\n"))
	require.Error(t, err)
}

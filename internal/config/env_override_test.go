package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("region and opener", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GURUSENDER_REGION", "PT")
		t.Setenv("GURUSENDER_OPENER", "dry-run")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "PT", cfg.Phone.Region)
		assert.Equal(t, "dry-run", cfg.Dispatch.Opener)
	})

	t.Run("delays", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GURUSENDER_MIN_DELAY", "1s")
		t.Setenv("GURUSENDER_MAX_DELAY", "2s")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, time.Second, cfg.GetMinDelay())
		assert.Equal(t, 2*time.Second, cfg.GetMaxDelay())
	})

	t.Run("log file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GURUSENDER_LOG_FILE", "/var/log/gurusender.log")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/var/log/gurusender.log", cfg.Logging.File)
	})

	t.Run("chrome url selects rod", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GURUSENDER_CHROME_URL", "ws://127.0.0.1:9222/devtools/browser/abc")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", cfg.Dispatch.Browser.DebuggerURL)
		assert.Equal(t, "rod", cfg.Dispatch.Opener)
	})

	t.Run("empty values leave config untouched", func(t *testing.T) {
		clearEnv(t)

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("phone:\n  region: US\n"), 0644))
	t.Setenv("GURUSENDER_REGION", "AR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AR", cfg.Phone.Region)

	raw, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "US", raw.Phone.Region)
}

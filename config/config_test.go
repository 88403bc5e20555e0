package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		content := `
registry:
  path: /etc/zwcore/devices
  load_concurrency: 8
liveness:
  probe_timeout: 500ms
`
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/etc/zwcore/devices", cfg.Registry.Path)
		assert.Equal(t, 8, cfg.Registry.LoadConcurrency)
		assert.True(t, cfg.Registry.Bundled)
		assert.Equal(t, 500*time.Millisecond, cfg.Liveness.ProbeTimeout)
		assert.Equal(t, 3, cfg.Liveness.ProbeRetries)
		assert.True(t, cfg.Persistence.Enabled)
	})

	t.Run("a missing file is an error", func(t *testing.T) {
		_, err := Load("/nonexistent/path/config.yaml")
		assert.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	t.Run("environment variables override file values", func(t *testing.T) {
		t.Setenv("ZWCORE_REGISTRY_PATH", "/from/env")
		t.Setenv("ZWCORE_REGISTRY_INDEX", "/from/env/index.cbor")
		t.Setenv("ZWCORE_PROBE_TIMEOUT", "2s")
		t.Setenv("ZWCORE_PROBE_RETRIES", "7")
		t.Setenv("ZWCORE_PROBE_INTERVAL", "1m")

		cfg, err := Parse([]byte("registry:\n  path: /from/file\n"))
		require.NoError(t, err)

		assert.Equal(t, "/from/env", cfg.Registry.Path)
		assert.Equal(t, "/from/env/index.cbor", cfg.Registry.Index)
		assert.Equal(t, 2*time.Second, cfg.Liveness.ProbeTimeout)
		assert.Equal(t, 7, cfg.Liveness.ProbeRetries)
		assert.Equal(t, time.Minute, cfg.Liveness.ProbeInterval)
	})

	t.Run("malformed environment overrides are rejected", func(t *testing.T) {
		t.Setenv("ZWCORE_PROBE_RETRIES", "many")

		_, err := Parse([]byte(""))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		_, err := Parse([]byte("registry: [1"))
		assert.Error(t, err)
	})

	t.Run("an empty document yields the defaults", func(t *testing.T) {
		cfg, err := Parse([]byte(""))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("a registry source is required", func(t *testing.T) {
		cfg := Default()
		cfg.Registry.Bundled = false

		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("probing needs a positive timeout and at least one attempt", func(t *testing.T) {
		cfg := Default()
		cfg.Liveness.ProbeTimeout = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

		cfg = Default()
		cfg.Liveness.ProbeRetries = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

		cfg = Default()
		cfg.Liveness.ProbeInterval = -time.Second
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("negative load concurrency is rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Registry.LoadConcurrency = -1
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"better-dreadroot/internal/dreadroot"
	"better-dreadroot/logging"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Dreadroot", cfg.Pipeline.Identity)
	assert.Equal(t, dreadroot.DefaultCadence, cfg.Pipeline.Cadence)
	assert.Equal(t, []string{logging.SinkMessages, logging.SinkConsole}, cfg.Logging.EnabledSinks)
	assert.Equal(t, dreadroot.RetainOriginal, cfg.PartConfig().Policy)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
options:
  path: /tmp/options.yaml
  debounce: 250ms
pipeline:
  cadence: 3
  replacementPolicy: destroy
logging:
  enabledSinks: [console]
simulation:
  governed: 7
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/options.yaml", cfg.Options.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Options.Debounce)
	assert.Equal(t, 3, cfg.Pipeline.Cadence)
	assert.Equal(t, "Dreadroot", cfg.Pipeline.Identity, "unset fields keep defaults")
	assert.Equal(t, dreadroot.DestroyOriginal, cfg.PartConfig().Policy)
	assert.Equal(t, []string{logging.SinkConsole}, cfg.Logging.EnabledSinks)
	assert.Equal(t, 7, cfg.Simulation.Governed)
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"DREADROOT_REPLACEMENT_POLICY":        "destroy",
		"DREADROOT_REFRESH_CADENCE":           "4",
		"DREADROOT_LOG_SINKS":                 "console, messages ,",
		"DREADROOT_METRICS_ENABLED":           "true",
		"DREADROOT_OPTIONS_WATCH":             "not-a-bool",
		"DREADROOT_OPTIONS_REFRESH_ON_RELOAD": "1",
	}
	cfg := DefaultConfig()
	applyEnvOverrides(&cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	assert.Equal(t, "destroy", cfg.Pipeline.ReplacementPolicy)
	assert.Equal(t, 4, cfg.Pipeline.Cadence)
	assert.Equal(t, []string{"console", "messages"}, cfg.Logging.EnabledSinks)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Options.Watch, "invalid booleans are ignored")
	assert.True(t, cfg.Options.RefreshOnReload)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"policy", func(c *Config) { c.Pipeline.ReplacementPolicy = "obliterate" }},
		{"cadence", func(c *Config) { c.Pipeline.Cadence = 0 }},
		{"watch without path", func(c *Config) { c.Options.Watch = true }},
		{"refresh on reload without watch", func(c *Config) { c.Options.RefreshOnReload = true }},
		{"unknown sink", func(c *Config) { c.Logging.EnabledSinks = []string{"syslog"} }},
		{"json without path", func(c *Config) { c.Logging.EnabledSinks = []string{logging.SinkJSON} }},
	}
	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

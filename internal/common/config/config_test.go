package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, 10, cfg.Sketcher.GridSize, 1e-9)
	assert.InDelta(t, 1, cfg.Sketcher.JointEpsilon, 1e-9)
	assert.InDelta(t, 0.1, cfg.Sketcher.MinZoom, 1e-9)
	assert.InDelta(t, 20, cfg.Sketcher.MaxZoom, 1e-9)
	assert.InDelta(t, 0.999, cfg.Sketcher.ZoomBase, 1e-9)
	assert.Equal(t, 100, cfg.Sketcher.UndoLimit)
	assert.Equal(t, "data/db/sketcher.db", cfg.Store.Path)
	assert.Equal(t, "memory", cfg.Presence.Driver)
	assert.Equal(t, "sketcher:presence", cfg.Presence.ChannelPrefix)
	assert.Equal(t, 64, cfg.Presence.Buffer)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3000, cfg.Gateway.Port)
	assert.Equal(t, "http://localhost:3001", cfg.Gateway.SketcherURL)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
server:
  port: 4001
sketcher:
  grid_size: 20
presence:
  driver: redis
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4001, cfg.Server.Port)
	assert.InDelta(t, 20, cfg.Sketcher.GridSize, 1e-9)
	assert.Equal(t, "redis", cfg.Presence.Driver)
	// Defaults still apply for unset values
	assert.InDelta(t, 1, cfg.Sketcher.JointEpsilon, 1e-9)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("SKETCHER_LOG_LEVEL", "warn")
	t.Setenv("SKETCHER_SERVER_PORT", "3100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3100, cfg.Server.Port)
}

func TestLoadRejectsInvalidGrid(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SKETCHER_SKETCHER_GRID_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.Sketcher.GridSize = 10
	cfg.Sketcher.JointEpsilon = 1
	cfg.Sketcher.MinZoom = 0.1
	cfg.Sketcher.MaxZoom = 20
	cfg.Presence.Driver = "memory"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"redis driver", func(c *Config) { c.Presence.Driver = "redis" }, true},
		{"unknown driver", func(c *Config) { c.Presence.Driver = "kafka" }, false},
		{"epsilon equals grid", func(c *Config) { c.Sketcher.JointEpsilon = 10 }, false},
		{"zero epsilon", func(c *Config) { c.Sketcher.JointEpsilon = 0 }, false},
		{"inverted zoom", func(c *Config) { c.Sketcher.MinZoom = 30 }, false},
		{"negative grid", func(c *Config) { c.Sketcher.GridSize = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

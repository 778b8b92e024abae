package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/core"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := core.LoadConfig("does-not-exist.toml")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultConfig(), cfg)
}

func TestLoadConfigDecodesTOML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "orrery.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[application]
name = "test"
start_width = 320
start_height = 200

[renderer]
backend = "headless"
max_frames = 3

[scene]
object_count = 6
seed = 7
classes = ["box", "melon"]
`), 0o644))

	cfg, err := core.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Application.Name)
	assert.Equal(t, uint32(320), cfg.Application.StartWidth)
	assert.Equal(t, core.BackendHeadless, cfg.Renderer.Backend)
	assert.Equal(t, uint64(3), cfg.Renderer.MaxFrames)
	assert.Equal(t, 6, cfg.Scene.ObjectCount)
	assert.Equal(t, uint64(7), cfg.Scene.Seed)
	assert.Equal(t, []string{"box", "melon"}, cfg.Scene.Classes)
	// untouched keys keep their defaults
	assert.Equal(t, 1024, cfg.Renderer.MessageQueueSize)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ORRERY_BACKEND", "headless")
	t.Setenv("ORRERY_SEED", "99")
	t.Setenv("ORRERY_OBJECTS", "12")
	t.Setenv("ORRERY_FRAMES", "5")
	t.Setenv("ORRERY_LOG_LEVEL", "warn")

	cfg, err := core.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, core.BackendHeadless, cfg.Renderer.Backend)
	assert.Equal(t, uint64(99), cfg.Scene.Seed)
	assert.Equal(t, 12, cfg.Scene.ObjectCount)
	assert.Equal(t, uint64(5), cfg.Renderer.MaxFrames)
	assert.Equal(t, core.WarnLevel, cfg.Log.Level)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ORRERY_OBJECTS=3\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ORRERY_OBJECTS") })

	cfg, err := core.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scene.ObjectCount)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.Config)
	}{
		{"zero width", func(c *core.Config) { c.Application.StartWidth = 0 }},
		{"unknown backend", func(c *core.Config) { c.Renderer.Backend = "d3d9" }},
		{"negative objects", func(c *core.Config) { c.Scene.ObjectCount = -1 }},
		{"empty message queue", func(c *core.Config) { c.Renderer.MessageQueueSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfig)
		})
	}

	assert.NoError(t, core.DefaultConfig().Validate())
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ORRERY_SEED", "not-a-number")

	_, err := core.LoadConfig("")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

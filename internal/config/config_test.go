package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/speedr/pkg/math3d"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, 60, cfg.FPS)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Culling)
	assert.InDelta(t, math.Pi/3, cfg.FOVRadians(), 1e-12)

	bg, err := cfg.BackgroundColor()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1e1e28), bg.Hex())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "width: 320\nheight: 200\nfps: 30\nbackground: midnightblue\nmodel: teapot.obj\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "speedr.yaml"), []byte(yaml), 0o644))
	t.Setenv("SPEEDR_FPS", "24")
	t.Setenv("SPEEDR_PARTICLES", "0")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
	assert.Equal(t, 24, cfg.FPS, "env wins over file")
	assert.Equal(t, 0, cfg.Particles)
	assert.Equal(t, "teapot.obj", cfg.Model)
	assert.Equal(t, "debug", cfg.LogLevel)

	bg, err := cfg.BackgroundColor()
	require.NoError(t, err)
	assert.Equal(t, math3d.Hex(0x191970), bg)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "speedr.yaml"), []byte("width: [1, 2\n"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Width: 10, Height: 10, FPS: 30, FOV: 60, Background: "#000000"}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative fps", func(c *Config) { c.FPS = -1 }},
		{"flat fov", func(c *Config) { c.FOV = 180 }},
		{"negative particles", func(c *Config) { c.Particles = -5 }},
		{"unknown color", func(c *Config) { c.Background = "not-a-color" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.modify(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

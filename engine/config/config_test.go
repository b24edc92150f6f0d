package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/forge/engine/colors"
	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/gfx"
	"github.com/hubastard/forge/engine/shader"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	api, err := cfg.API()
	require.NoError(t, err)
	assert.Equal(t, gfx.APIOpenGL, api)
	assert.Equal(t, shader.ModeTranslate, cfg.ShaderMode())
}

func TestEncodeRoundTrip(t *testing.T) {
	b, err := Default().Encode()
	require.NoError(t, err)
	cfg, err := Parse(b)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
title = "Triangle"
width = 800

[graphics]
gl_major = 4
gl_minor = 6
clear_color = "#ff0000"
clear_stencil = 3

[shaders]
mode = "binary"
content_hash = true
`))
	require.NoError(t, err)
	assert.Equal(t, "Triangle", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep their default")
	assert.Equal(t, shader.ModeBinary, cfg.ShaderMode())
	assert.True(t, cfg.Shaders.ContentHash)

	cs := cfg.ClearState()
	assert.Equal(t, colors.Red, cs.Color)
	assert.True(t, cs.ClearStencil)
	assert.Equal(t, int32(3), cs.Stencil)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[window]\nfullscreen = true\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "fullscreen")
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"window size":   func(c *Config) { c.Window.Width = 0 },
		"api":           func(c *Config) { c.Graphics.API = "vulkan" },
		"old gl":        func(c *Config) { c.Graphics.GLMajor, c.Graphics.GLMinor = 3, 2 },
		"gl 4.7":        func(c *Config) { c.Graphics.GLMinor = 7 },
		"clear color":   func(c *Config) { c.Graphics.ClearColor = "red" },
		"clear depth":   func(c *Config) { c.Graphics.ClearDepth = 2 },
		"shader mode":   func(c *Config) { c.Shaders.Mode = "jit" },
		"binary on 4.1": func(c *Config) { c.Shaders.Mode = "binary" },
		"log level":     func(c *Config) { c.Log.Level = "loud" },
		"app name":      func(c *Config) { c.App.Name = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfiguration)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forge.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"trace\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Equal(t, errs.FileNotFound, errs.CodeOf(err))

	cfg, err = LoadOrDefault(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n"), 0o644))
	_, err = LoadOrDefault(path)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration, "only a missing file falls back")
}

func TestCacheDirExpandsHome(t *testing.T) {
	cfg := Default()
	dir, err := cfg.CacheDir()
	require.NoError(t, err)
	assert.Empty(t, dir)

	cfg.Shaders.CacheDir = "~/forge-cache"
	dir, err = cfg.CacheDir()
	require.NoError(t, err)
	assert.NotContains(t, dir, "~")
	assert.Equal(t, "forge-cache", filepath.Base(dir))
}

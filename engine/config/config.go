// Package config loads the engine settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/hubastard/forge/engine/colors"
	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/gfx"
	"github.com/hubastard/forge/engine/logx"
	"github.com/hubastard/forge/engine/shader"
)

type Config struct {
	App      App      `toml:"app"`
	Window   Window   `toml:"window"`
	Graphics Graphics `toml:"graphics"`
	Shaders  Shaders  `toml:"shaders"`
	Log      Log      `toml:"log"`
}

type App struct {
	Name string `toml:"name"`
}

type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

type Graphics struct {
	API          string  `toml:"api"`
	GLMajor      int     `toml:"gl_major"`
	GLMinor      int     `toml:"gl_minor"`
	ClearColor   string  `toml:"clear_color"`
	ClearDepth   float32 `toml:"clear_depth"`
	ClearStencil int32   `toml:"clear_stencil"`
}

type Shaders struct {
	// Mode is "translate", "direct" or "binary".
	Mode string `toml:"mode"`
	// CacheDir overrides the per-user shader cache directory; ~ is expanded.
	CacheDir    string `toml:"cache_dir"`
	ContentHash bool   `toml:"content_hash"`
	Validate    bool   `toml:"validate"`
	HotReload   bool   `toml:"hot_reload"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default is the configuration used when no file is present.
func Default() Config {
	return Config{
		App:    App{Name: "forge"},
		Window: Window{Title: "Forge", Width: 1280, Height: 720, VSync: true},
		Graphics: Graphics{
			API:        "opengl",
			GLMajor:    4,
			GLMinor:    1,
			ClearColor: colors.DarkGray.Hex(),
			ClearDepth: 1,
		},
		Shaders: Shaders{Mode: "translate", Validate: true},
		Log:     Log{Level: "info"},
	}
}

// Load reads path over the defaults. Keys that are not part of Config are
// an error, as are values that fail Validate.
func Load(path string) (Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return Config{}, errs.Wrap(errs.InvalidFilePath, "config.Load", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		code := errs.FileAccessDenied
		if errors.Is(err, fs.ErrNotExist) {
			code = errs.FileNotFound
		}
		return Config{}, &errs.Error{Code: code, Op: "config.Load", Path: path, Err: err}
	}
	cfg, err := Parse(b)
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			e.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errs.CodeOf(err) == errs.FileNotFound {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes TOML text over the defaults.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		e := &errs.Error{Code: errs.InvalidConfiguration, Op: "config.Parse", Err: err}
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			e.Log = strict.String()
		}
		return Config{}, e
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerated values.
func (c Config) Validate() error {
	bad := func(format string, args ...any) error {
		return errs.New(errs.InvalidConfiguration, "config.Validate", format, args...)
	}
	if c.App.Name == "" {
		return bad("app.name is empty")
	}
	if c.Window.Width < 1 || c.Window.Height < 1 {
		return bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := c.API(); err != nil {
		return err
	}
	if c.Graphics.GLMajor < 3 || (c.Graphics.GLMajor == 3 && c.Graphics.GLMinor < 3) || c.Graphics.GLMajor > 4 {
		return bad("OpenGL %d.%d is not supported, need 3.3 to 4.6", c.Graphics.GLMajor, c.Graphics.GLMinor)
	}
	if c.Graphics.GLMinor < 0 || (c.Graphics.GLMajor == 4 && c.Graphics.GLMinor > 6) {
		return bad("OpenGL minor version %d", c.Graphics.GLMinor)
	}
	if _, err := colors.ParseHex(c.Graphics.ClearColor); err != nil {
		return bad("graphics.clear_color: %v", err)
	}
	if c.Graphics.ClearDepth < 0 || c.Graphics.ClearDepth > 1 {
		return bad("graphics.clear_depth %v outside [0, 1]", c.Graphics.ClearDepth)
	}
	mode, err := shader.ParseMode(c.Shaders.Mode)
	if err != nil {
		return err
	}
	if mode == shader.ModeBinary && (c.Graphics.GLMajor < 4 || c.Graphics.GLMinor < 6) {
		return bad("shader mode binary needs OpenGL 4.6, have %d.%d", c.Graphics.GLMajor, c.Graphics.GLMinor)
	}
	if _, err := logx.ParseLevel(c.Log.Level); err != nil {
		return bad("log.level: %v", err)
	}
	return nil
}

// API is the parsed graphics.api, checked against the supported backends.
func (c Config) API() (gfx.GraphicsAPI, error) {
	a, err := gfx.ParseAPI(c.Graphics.API)
	if err != nil {
		return a, err
	}
	return gfx.SelectAPI(a)
}

// ClearState is the configured clear color, depth and stencil.
func (c Config) ClearState() gfx.ClearState {
	s := gfx.DefaultClearState()
	if col, err := colors.ParseHex(c.Graphics.ClearColor); err == nil {
		s.Color = col
	}
	s.Depth = c.Graphics.ClearDepth
	s.Stencil = c.Graphics.ClearStencil
	s.ClearStencil = c.Graphics.ClearStencil != 0
	return s
}

// ShaderMode is the parsed shaders.mode. Validate has already rejected
// unknown values, so the error is dropped.
func (c Config) ShaderMode() shader.Mode {
	m, _ := shader.ParseMode(c.Shaders.Mode)
	return m
}

// CacheDir is shaders.cache_dir with ~ expanded, or "" when unset.
func (c Config) CacheDir() (string, error) {
	if c.Shaders.CacheDir == "" {
		return "", nil
	}
	return homedir.Expand(c.Shaders.CacheDir)
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hubastard/forge/engine/assets"
	"github.com/hubastard/forge/engine/config"
	"github.com/hubastard/forge/engine/core"
	"github.com/hubastard/forge/engine/fsys"
	glbackend "github.com/hubastard/forge/engine/gfx/gl"
	"github.com/hubastard/forge/engine/logx"
	"github.com/hubastard/forge/engine/platform"
	"github.com/hubastard/forge/engine/profiler"
)

type App struct {
	shaderPath string
	triangle   *LayerTriangle
	debug      *LayerDebug
}

func (a *App) OnStart(e *core.Engine) error {
	a.triangle = &LayerTriangle{shaderPath: a.shaderPath}
	e.Layers.Push(e, a.triangle)
	if a.triangle.err != nil {
		return a.triangle.err
	}
	a.debug = &LayerDebug{}
	e.Layers.Push(e, a.debug)
	return nil
}

func (a *App) OnUpdate(e *core.Engine, dt float64)    {}
func (a *App) OnRender(e *core.Engine, alpha float64) {}
func (a *App) OnEvent(e *core.Engine, ev core.Event) {
	switch v := ev.(type) {
	case core.EventCloseRequested:
		e.Quit()
	case core.EventKey:
		if v.Down && v.Key == core.KeyEscape {
			e.Quit()
		}
	}
}
func (a *App) OnShutdown(e *core.Engine) {}

func main() {
	var (
		configPath  = flag.String("config", "", "settings file (default <data>/config/forge.toml)")
		dataDir     = flag.String("data", "", "override the per-user data directory")
		shaderPath  = flag.String("shader", "triangle.shader", "annotated shader to draw with, looked up in assets/shaders")
		profile     = flag.Bool("profile", false, "record profiler scopes; space dumps a speedscope capture")
		writeConfig = flag.Bool("write-config", false, "write the effective settings to the config path and exit")
	)
	flag.Parse()

	if err := run(*configPath, *dataDir, *shaderPath, *profile, *writeConfig); err != nil {
		fmt.Fprintln(os.Stderr, "sandbox:", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir, shaderPath string, profile, writeConfig bool) error {
	paths, err := fsys.Resolve("forge", dataDir)
	if err != nil {
		return err
	}
	if configPath == "" {
		configPath = filepath.Join(paths.Config(), "forge.toml")
	}
	settings, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if writeConfig {
		b, err := settings.Encode()
		if err != nil {
			return err
		}
		return fsys.WriteFile(configPath, b)
	}

	level, err := logx.ParseLevel(settings.Log.Level)
	if err != nil {
		return err
	}
	log := logx.New(os.Stderr, level)
	if err := paths.Ensure(); err != nil {
		return err
	}
	log.Debug("paths resolved", "paths", paths.String(), "config", configPath)

	if profile {
		profiler.Init(1 << 16)
	}

	shaderFile, err := assets.Shaders(paths).Find(shaderPath)
	if err != nil {
		return err
	}

	cfg := core.Config{Config: settings, Paths: paths, Logger: log}
	app := &App{shaderPath: shaderFile}
	return core.Run(app, cfg, platform.Open, glbackend.Open)
}

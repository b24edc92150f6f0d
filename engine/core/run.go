package core

import (
	"runtime"
	"time"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/logx"
	"github.com/hubastard/forge/engine/profiler"
)

const (
	tick    = time.Second / 60
	maxStep = 10 // prevent spiral of death
)

// Run wires the platform window + renderer and executes the main loop.
func Run(app App, cfg Config, newWindow func(Config) (Window, error), newRenderer func(Window, Config) (Renderer, error)) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := logx.Or(cfg.Logger)

	win, err := newWindow(cfg)
	if err != nil {
		return errs.Wrap(errs.SystemInitFailed, "core.Run", err)
	}
	defer win.Destroy()

	rend, err := newRenderer(win, cfg)
	if err != nil {
		return errs.Wrap(errs.SystemInitFailed, "core.Run", err)
	}
	defer rend.Shutdown()

	w, h := win.FramebufferSize()
	rend.Resize(w, h)

	eng := &Engine{
		Window:   win,
		Renderer: rend,
		Input:    NewInput(),
		Layers:   &LayerStack{},
		Config:   cfg,
		Logger:   log,
		start:    time.Now(),
	}
	win.SetEventCallback(func(ev Event) { dispatch(eng, app, ev) })

	if err := app.OnStart(eng); err != nil {
		logx.Critical(log, "application start failed", "err", err)
		return err
	}
	log.Info("engine started", "title", cfg.Window.Title, "width", w, "height", h)

	clearState := cfg.ClearState()
	var (
		accum time.Duration
		prev  = time.Now()
	)
	for !win.ShouldClose() && !eng.quit {
		end := profiler.Start("frame")
		now := time.Now()
		accum += now.Sub(prev)
		prev = now

		// Poll OS events (platform will emit via callbacks)
		win.PollEvents()

		steps := 0
		for accum >= tick && steps < maxStep {
			dt := float64(tick) / float64(time.Second)
			app.OnUpdate(eng, dt)
			eng.Layers.ForEach(func(l Layer) { l.OnUpdate(eng, dt) })
			accum -= tick
			steps++
		}
		alpha := float64(accum) / float64(tick)

		rend.Clear(clearState)
		eng.Layers.ForEach(func(l Layer) { l.OnRender(eng, alpha) })
		app.OnRender(eng, alpha)

		win.SwapBuffers()
		end()
	}

	eng.Layers.ForEachReverse(func(l Layer) bool {
		l.OnDetach(eng)
		return false
	})
	app.OnShutdown(eng)
	log.Info("engine exit", "uptime", eng.Uptime().Round(time.Millisecond))
	return nil
}

// dispatch routes one event: input state first, then layers top-down until
// one handles it, then the app. Resizes always reach the renderer.
func dispatch(eng *Engine, app App, ev Event) {
	eng.Input.Handle(ev)
	if r, ok := ev.(EventResize); ok && r.W > 0 && r.H > 0 {
		eng.Renderer.Resize(r.W, r.H)
	}
	handled := false
	eng.Layers.ForEachReverse(func(l Layer) bool {
		handled = l.OnEvent(eng, ev)
		return handled
	})
	if !handled {
		app.OnEvent(eng, ev)
	}
}

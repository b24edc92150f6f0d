package main

import (
	"fmt"
	"time"

	"github.com/hubastard/forge/engine/core"
	"github.com/hubastard/forge/engine/profiler"
)

// ------- Frame stats in the window title, scope summary in the log -------
type LayerDebug struct {
	frames   int
	since    time.Time
	interval time.Duration
}

func (l *LayerDebug) OnAttach(e *core.Engine) {
	l.since = time.Now()
	l.interval = time.Second
}

func (l *LayerDebug) OnDetach(e *core.Engine) {
	if !profiler.Enabled() {
		return
	}
	for _, s := range profiler.Summary() {
		e.Logger.Debug("profile", "scope", s.Name, "count", s.Count, "total", s.Total, "mean", s.Mean(), "max", s.Max)
	}
}

func (l *LayerDebug) OnUpdate(e *core.Engine, dt float64) {}

func (l *LayerDebug) OnRender(e *core.Engine, alpha float64) {
	l.frames++
	elapsed := time.Since(l.since)
	if elapsed < l.interval {
		return
	}
	ms := float64(elapsed.Microseconds()) / 1000 / float64(l.frames)
	e.Window.SetTitle(fmt.Sprintf("%s | %.2f ms (%.0f FPS) | %.1f MB",
		e.Config.Window.Title, ms, 1000/ms, float64(profiler.MemoryUsage())/(1<<20)))
	l.frames = 0
	l.since = time.Now()
}

func (l *LayerDebug) OnEvent(e *core.Engine, ev core.Event) bool {
	v, ok := ev.(core.EventKey)
	if !ok || !v.Down || v.Key != core.KeySpace || !profiler.Enabled() {
		return false
	}
	path, err := profiler.OpenGraph(e.Config.Window.Title)
	if err != nil {
		e.Logger.Warn("profiler dump failed", "path", path, "err", err)
	} else {
		e.Logger.Info("speedscope dump", "path", path)
	}
	return true
}

package main

import (
	"math"

	"github.com/hubastard/forge/engine/core"
	"github.com/hubastard/forge/engine/gfx"
	"github.com/hubastard/forge/engine/profiler"
	"github.com/hubastard/forge/engine/shader"
)

// ------- Triangle drawn through the shader pipeline -------
type LayerTriangle struct {
	shaderPath string
	err        error

	program  *shader.Program
	watcher  *shader.Watcher
	va       gfx.VertexArray
	vertices gfx.VertexBuffer
	t        float64
}

// position (x, y, z), color (r, g, b, a)
var triangleVertices = []float32{
	0.0, 0.6, 0, 1.0, 0.2, 0.2, 1,
	-0.6, -0.6, 0, 0.2, 1.0, 0.2, 1,
	0.6, -0.6, 0, 0.2, 0.2, 1.0, 1,
}

func (l *LayerTriangle) OnAttach(e *core.Engine) {
	l.program, l.err = e.Renderer.CreateShader(l.shaderPath, shader.FromFile)
	if l.err != nil {
		return
	}
	e.Logger.Info("shader ready", "shader", l.program.Name(), "resources", len(l.program.All()))

	l.va = e.Renderer.NewVertexArray()
	l.vertices = e.Renderer.NewVertexBuffer(triangleVertices, gfx.Dynamic)
	l.vertices.SetLayout(gfx.NewLayout(
		gfx.Element(gfx.Float3, "a_Position"),
		gfx.Element(gfx.Float4, "a_Color"),
	))
	if l.err = l.va.AddVertexBuffer(l.vertices); l.err != nil {
		return
	}
	if l.err = l.va.SetIndexBuffer(e.Renderer.NewIndexBuffer([]uint32{0, 1, 2}, gfx.Static)); l.err != nil {
		return
	}

	if e.Config.Shaders.HotReload {
		w, err := shader.Watch(e.Logger, l.shaderPath)
		if err != nil {
			e.Logger.Warn("shader hot reload disabled", "err", err)
			return
		}
		l.watcher = w
	}
}

func (l *LayerTriangle) OnDetach(e *core.Engine) {
	if l.watcher != nil {
		l.watcher.Close()
	}
	if l.va != nil {
		l.va.Destroy()
	}
	if l.program != nil {
		l.program.Destroy()
	}
}

func (l *LayerTriangle) OnUpdate(e *core.Engine, dt float64) {
	l.t += dt
	if l.watcher == nil {
		return
	}
	path, changed, closed := l.watcher.Poll()
	switch {
	case closed:
		e.Logger.Warn("shader watcher stopped, hot reload disabled")
		l.watcher.Close()
		l.watcher = nil
	case changed:
		e.Logger.Info("shader changed", "path", path)
		l.reload(e)
	}
}

func (l *LayerTriangle) reload(e *core.Engine) {
	prog, err := e.Renderer.ReloadShader(l.program, l.shaderPath, shader.FromFile)
	if err != nil {
		e.Logger.Error("shader reload failed, keeping previous program", "shader", l.program.Name(), "err", err)
		return
	}
	l.program = prog
}

func (l *LayerTriangle) OnRender(e *core.Engine, alpha float64) {
	end := profiler.Start("LayerTriangle.OnRender")
	defer end()

	// pulse the top vertex
	top := float32(0.6 + 0.4*math.Sin(l.t*2))
	if err := l.vertices.SubmitData([]float32{top, 0.2, 0.2, 1}, 3); err != nil {
		e.Logger.Error("vertex update failed", "err", err)
	}

	l.program.Bind()
	e.Renderer.DrawIndexed(l.va)
	l.program.Unbind()
}

func (l *LayerTriangle) OnEvent(e *core.Engine, ev core.Event) bool {
	if k, ok := ev.(core.EventKey); ok && k.Down && k.Key == core.KeyR {
		l.reload(e)
		return true
	}
	return false
}

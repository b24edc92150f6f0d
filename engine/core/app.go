package core

import (
	"log/slog"
	"time"

	"github.com/hubastard/forge/engine/config"
	"github.com/hubastard/forge/engine/fsys"
	"github.com/hubastard/forge/engine/gfx"
	"github.com/hubastard/forge/engine/shader"
)

// App defines the application hooks.
type App interface {
	OnStart(e *Engine) error           // called once after window/renderer init
	OnUpdate(e *Engine, dt float64)    // called at a fixed tick (60Hz)
	OnRender(e *Engine, alpha float64) // render with interpolation alpha [0..1]
	OnEvent(e *Engine, ev Event)       // input/window events
	OnShutdown(e *Engine)              // before exit
}

// Engine exposes core services to the App. There is one per Run; it is
// passed to every hook instead of living in a global.
type Engine struct {
	Window   Window
	Renderer Renderer
	Input    *Input
	Layers   *LayerStack
	Config   Config
	Logger   *slog.Logger

	start time.Time
	quit  bool
}

func (e *Engine) Uptime() time.Duration { return time.Since(e.start) }

// Quit ends the main loop after the current frame.
func (e *Engine) Quit() { e.quit = true }

// Window abstraction.
type Window interface {
	PollEvents()
	SwapBuffers()
	ShouldClose() bool
	FramebufferSize() (int, int)
	SetTitle(title string)
	SetEventCallback(cb func(Event))
	Destroy()
}

// Renderer is the backend the app draws through.
type Renderer interface {
	Resize(w, h int)
	Clear(state gfx.ClearState)

	// CreateShader builds a program from an annotated shader file or text.
	CreateShader(data string, origin shader.Origin) (*shader.Program, error)
	// ReloadShader rebuilds old from changed source; on failure old is
	// returned unchanged together with the error.
	ReloadShader(old *shader.Program, data string, origin shader.Origin) (*shader.Program, error)

	NewVertexBuffer(data []float32, mode gfx.DrawMode) gfx.VertexBuffer
	NewIndexBuffer(indices []uint32, mode gfx.DrawMode) gfx.IndexBuffer
	NewVertexArray() gfx.VertexArray
	DrawIndexed(va gfx.VertexArray)

	Shutdown()
}

// Event model.
type Event interface{ isEvent() }

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

type EventKey struct {
	Key  Key
	Down bool
	Mods Mod
}

func (EventKey) isEvent() {}

type EventMouseMove struct{ X, Y float64 }

func (EventMouseMove) isEvent() {}

type EventScroll struct{ Xoff, Yoff float64 }

func (EventScroll) isEvent() {}

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyW
	KeyA
	KeyS
	KeyD
	KeyR
)

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)

// Config for the engine run: the loaded settings plus the resolved
// directories and the logger every component receives.
type Config struct {
	config.Config
	Paths  fsys.Paths
	Logger *slog.Logger
}

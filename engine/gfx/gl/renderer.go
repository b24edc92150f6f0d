package glbackend

import (
	"log/slog"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/hubastard/forge/engine/core"
	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/gfx"
	"github.com/hubastard/forge/engine/logx"
	"github.com/hubastard/forge/engine/shader"
)

// Renderer implements core.Renderer on an OpenGL core context that the
// window has already made current.
type Renderer struct {
	win      core.Window
	dev      *Device
	pipeline *shader.Pipeline
	viewport gfx.Viewport
	log      *slog.Logger
}

// NewRenderer sets up the default GL state and a shader pipeline configured
// from cfg.
func NewRenderer(win core.Window, cfg core.Config) (*Renderer, error) {
	log := logx.Or(cfg.Logger)
	if _, err := cfg.API(); err != nil {
		return nil, err
	}
	r := &Renderer{win: win, dev: NewDevice(), log: log}

	mode := cfg.ShaderMode()
	if mode == shader.ModeBinary && !r.dev.SupportsSPIRV() {
		major, minor := r.dev.Version()
		return nil, errs.New(errs.InvalidConfiguration, "glbackend.NewRenderer",
			"shader mode binary needs OpenGL 4.6, context is %d.%d", major, minor)
	}

	cacheDir, err := cfg.CacheDir()
	if err != nil {
		return nil, errs.Wrap(errs.InvalidFilePath, "glbackend.NewRenderer", err)
	}
	if cacheDir == "" && cfg.Paths.Data != "" {
		cacheDir = cfg.Paths.ShaderCache()
	}
	var cache *shader.Cache
	if cacheDir != "" {
		cache = shader.NewCache(cacheDir, log)
		cache.ContentHash = cfg.Shaders.ContentHash
	}

	opts := shader.DefaultCompilerOptions()
	opts.Validate = cfg.Shaders.Validate
	compiler := shader.NewCompiler(opts)
	major, minor := r.dev.Version()
	r.pipeline = &shader.Pipeline{
		Device:     r.dev,
		Compiler:   compiler,
		Cache:      cache,
		Translator: shader.TranslatorFor(major, minor, compiler),
		Mode:       mode,
		Logger:     log,
	}

	gl.Enable(gl.DEPTH_TEST)
	log.Debug("renderer ready", "gl", [2]int{major, minor}, "shader_mode", mode.String(), "cache", cacheDir)
	return r, nil
}

// Open adapts NewRenderer to core.Run.
func Open(win core.Window, cfg core.Config) (core.Renderer, error) {
	r, err := NewRenderer(win, cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Device() *Device            { return r.dev }
func (r *Renderer) Pipeline() *shader.Pipeline { return r.pipeline }
func (r *Renderer) Viewport() gfx.Viewport     { return r.viewport }

func (r *Renderer) Resize(w, h int) {
	r.SetViewport(gfx.FullViewport(w, h))
}

func (r *Renderer) SetViewport(v gfx.Viewport) {
	if v.Empty() {
		return
	}
	r.viewport = v
	gl.Viewport(int32(v.X), int32(v.Y), int32(v.Width), int32(v.Height))
	gl.DepthRange(float64(v.MinDepth), float64(v.MaxDepth))
}

// Clear clears the buffers selected in s to its values.
func (r *Renderer) Clear(s gfx.ClearState) {
	var mask uint32
	if s.ClearColor {
		c := s.Color
		gl.ClearColor(c[0], c[1], c[2], c[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if s.ClearDepth {
		gl.ClearDepthf(s.Depth)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if s.ClearStencil {
		gl.ClearStencil(s.Stencil)
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (r *Renderer) CreateShader(data string, origin shader.Origin) (*shader.Program, error) {
	return r.pipeline.Build(data, origin)
}

func (r *Renderer) ReloadShader(old *shader.Program, data string, origin shader.Origin) (*shader.Program, error) {
	return r.pipeline.Reload(old, data, origin)
}

// NewVertexBuffer uploads data; a Dynamic buffer accepts SubmitData later.
func (r *Renderer) NewVertexBuffer(data []float32, mode gfx.DrawMode) gfx.VertexBuffer {
	return NewVertexBuffer(data, len(data), mode)
}

func (r *Renderer) NewIndexBuffer(indices []uint32, mode gfx.DrawMode) gfx.IndexBuffer {
	return NewIndexBuffer(indices, mode)
}

func (r *Renderer) NewVertexArray() gfx.VertexArray {
	return NewVertexArray()
}

// DrawIndexed draws va's index buffer as triangles with whatever program
// is bound.
func (r *Renderer) DrawIndexed(va gfx.VertexArray) {
	ib := va.IndexBuffer()
	if ib == nil || ib.Count() == 0 {
		return
	}
	va.Bind()
	gl.DrawElements(gl.TRIANGLES, int32(ib.Count()), gl.UNSIGNED_INT, nil)
	va.Unbind()
}

func (r *Renderer) Shutdown() {
	r.dev.UseProgram(0)
	r.log.Debug("renderer shutdown")
}

var _ core.Renderer = (*Renderer)(nil)

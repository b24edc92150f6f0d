package shader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/logx"
	"github.com/hubastard/forge/engine/profiler"
)

// Mode selects what the linker receives for each stage.
type Mode uint8

const (
	// ModeTranslate compiles WGSL to SPIR-V, caches and reflects it, and
	// hands translated GLSL to the device.
	ModeTranslate Mode = iota
	// ModeDirect hands the stage sources to the device as they are (GLSL),
	// with no intermediate step, cache or reflection.
	ModeDirect
	// ModeBinary is ModeTranslate without translation: the device ingests
	// the SPIR-V binaries (GL 4.6 / ARB_gl_spirv).
	ModeBinary
)

var modeNames = map[string]Mode{"translate": ModeTranslate, "direct": ModeDirect, "binary": ModeBinary}

func (m Mode) String() string {
	for s, v := range modeNames {
		if v == m {
			return s
		}
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode parses "translate", "direct" or "binary".
func ParseMode(s string) (Mode, error) {
	if m, ok := modeNames[strings.ToLower(s)]; ok {
		return m, nil
	}
	return 0, errs.New(errs.InvalidConfiguration, "shader.ParseMode", "unknown shader mode %q", s)
}

// Pipeline turns annotated shader text into linked programs.
type Pipeline struct {
	Device     Device
	Compiler   *Compiler
	Cache      *Cache // nil disables caching
	Translator Translator
	Mode       Mode
	Logger     *slog.Logger
}

func (p *Pipeline) compiler() *Compiler {
	if p.Compiler == nil {
		p.Compiler = NewCompiler(DefaultCompilerOptions())
	}
	return p.Compiler
}

func (p *Pipeline) translator() Translator {
	if p.Translator == nil {
		p.Translator = TranslatorFor(3, 3, p.compiler())
	}
	return p.Translator
}

// Prepared is a shader that went through every pipeline step except
// linking: the linker input and the resources of all stages.
type Prepared struct {
	Name       string
	Stages     []StageCode
	Reflection *Reflection
}

// Prepare splits, compiles, reflects and translates one shader. It needs no
// Device, so it also serves offline tools.
//
// File and parse errors and a missing #name abort before any compilation.
// Every stage then gets compiled (or loaded from the cache) and reflected
// even if a sibling fails, so all stage diagnostics are logged; the first
// stage failure is returned. A reflection failure is logged and leaves that
// stage's resources out.
func (p *Pipeline) Prepare(data string, origin Origin) (*Prepared, error) {
	log := logx.Or(p.Logger)

	end := profiler.Start("shader.split")
	sources, name, err := Split(data, origin)
	end()
	if err != nil {
		log.Error("shader source rejected", "origin", origin, "err", err)
		return nil, err
	}
	if name == "" {
		return nil, errs.New(errs.InvalidArgument, "shader.Prepare", "shader has no #name directive")
	}
	if len(sources) == 0 {
		return nil, errs.New(errs.InvalidArgument, "shader.Prepare", "shader %q declares no stages", name)
	}

	prep := &Prepared{Name: name, Reflection: &Reflection{logger: log}}
	if p.Mode == ModeDirect {
		for _, k := range sources.Kinds() {
			prep.Stages = append(prep.Stages, StageCode{Kind: k, Label: name + ":" + k.String(), Source: sources[k]})
		}
		return prep, nil
	}
	if prep.Stages, err = p.prepare(prep.Reflection, sources, name, log); err != nil {
		return nil, err
	}
	return prep, nil
}

// Build runs Prepare and links the result. The program is only linked when
// every stage is ready.
func (p *Pipeline) Build(data string, origin Origin) (*Program, error) {
	log := logx.Or(p.Logger)
	if p.Device == nil {
		return nil, errs.New(errs.InvalidOperation, "shader.Build", "pipeline has no device")
	}
	prep, err := p.Prepare(data, origin)
	if err != nil {
		return nil, err
	}

	prog := newProgram(prep.Name, p.Device)
	prog.Reflection = *prep.Reflection

	end := profiler.Start("shader.link")
	err = prog.link(prep.Stages)
	end()
	if err != nil {
		log.Error("shader link failed", "shader", prep.Name, "err", err)
		return nil, err
	}
	log.Debug("shader program linked", "shader", prep.Name, "stages", len(prep.Stages),
		"resources", len(prog.All()), "mode", p.Mode)
	return prog, nil
}

// prepare compiles, reflects and translates every stage and folds the
// per-stage results into the linker input or the first failure.
func (p *Pipeline) prepare(refl *Reflection, sources Sources, name string, log *slog.Logger) ([]StageCode, error) {
	results := make([]StageResult, 0, len(sources))
	for _, k := range sources.Kinds() {
		end := profiler.Start("shader.compile")
		u, err := p.compileStage(sources[k], k, name, log)
		end()
		results = append(results, StageResult{Unit: u, Err: err})
	}

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if err := Reflect(r.Unit.Binary, r.Unit.Kind, refl); err != nil {
			log.Error("shader reflection failed", "shader", name, "stage", r.Unit.Kind, "err", err)
		}
	}

	stages := make([]StageCode, 0, len(results))
	var first error
	for i := range results {
		r := &results[i]
		if r.Err == nil {
			code := StageCode{Kind: r.Unit.Kind, Label: r.Unit.Label(), Binary: r.Unit.Binary}
			if p.Mode == ModeBinary {
				code.EntryPoint, r.Err = EntryPoint(r.Unit.Binary, r.Unit.Kind)
			} else {
				code.Source, r.Err = p.translator().Translate(r.Unit)
				if r.Err != nil {
					log.Error("shader translation failed", "shader", name, "stage", r.Unit.Kind, "err", r.Err)
				}
			}
			stages = append(stages, code)
		}
		if r.Err != nil && first == nil {
			first = r.Err
		}
	}
	if first != nil {
		return nil, first
	}
	return stages, nil
}

// compileStage loads one stage from the cache or compiles and stores it.
func (p *Pipeline) compileStage(src string, kind StageKind, name string, log *slog.Logger) (Unit, error) {
	if p.Cache != nil {
		if u, ok := p.loadCached(src, kind, name, log); ok {
			return u, nil
		}
	}

	u, err := p.compiler().Compile(src, kind, name)
	if err != nil {
		log.Error("shader stage compilation failed", "shader", name, "stage", kind, "err", err)
		return u, err
	}
	if p.Cache != nil {
		if err := p.Cache.Store(name, kind, src, u.Binary); err != nil {
			log.Warn("shader cache store failed", "shader", name, "stage", kind, "err", err)
		}
	}
	return u, nil
}

// loadCached returns the cached unit for a stage. Its Source is the text the
// binary was compiled from, so translation and reflection of a stale entry
// describe the same shader.
func (p *Pipeline) loadCached(src string, kind StageKind, name string, log *slog.Logger) (Unit, bool) {
	bin, ok, err := p.Cache.Load(name, kind, src)
	switch {
	case err != nil:
		log.Warn("shader cache unreadable, recompiling", "shader", name, "stage", kind, "err", err)
		return Unit{}, false
	case !ok:
		return Unit{}, false
	case bin.CheckHeader() != nil:
		log.Warn("shader cache entry corrupt, recompiling", "shader", name, "stage", kind)
		return Unit{}, false
	}

	cached, ok, err := p.Cache.LoadSource(name, kind, src)
	switch {
	case err != nil:
		log.Warn("shader cache source unreadable, recompiling", "shader", name, "stage", kind, "err", err)
		return Unit{}, false
	case !ok:
		log.Warn("shader cache entry has no source, recompiling", "shader", name, "stage", kind)
		return Unit{}, false
	}
	if cached != src {
		log.Debug("shader cache entry is stale", "shader", name, "stage", kind)
	}
	return Unit{Kind: kind, Name: name, Source: cached, Binary: bin}, true
}

// MustBuild is Build for callers that treat a shader failure as fatal.
func (p *Pipeline) MustBuild(data string, origin Origin) *Program {
	prog, err := p.Build(data, origin)
	if err != nil {
		logx.Critical(logx.Or(p.Logger), "shader program creation failed", "err", err)
		panic(err)
	}
	return prog
}

// Reload rebuilds a shader after its source changed: the cached binaries of
// old are dropped first. On failure old stays in use and is returned with
// the error; on success old is destroyed.
func (p *Pipeline) Reload(old *Program, data string, origin Origin) (*Program, error) {
	if p.Cache != nil && old != nil {
		if err := p.Cache.Invalidate(old.Name()); err != nil {
			logx.Or(p.Logger).Warn("shader cache invalidate failed", "shader", old.Name(), "err", err)
		}
	}
	prog, err := p.Build(data, origin)
	if err != nil {
		return old, err
	}
	if old != nil {
		old.Destroy()
	}
	return prog, nil
}

package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"github.com/hubastard/forge/engine/errs"
)

// Unit is one stage on its way through the pipeline.
type Unit struct {
	Kind   StageKind
	Name   string // logical shader name
	Source string
	Binary Binary

	// module is the lowered IR, kept when the unit was compiled in this run.
	// Units loaded from the cache carry only the binary.
	module *ir.Module
}

// Label is the "name:Stage" tag used in diagnostics.
func (u Unit) Label() string { return u.Name + ":" + u.Kind.String() }

// CompilerOptions configures the WGSL to SPIR-V compiler.
type CompilerOptions struct {
	SPIRVVersion spirv.Version
	Validate     bool
}

// DefaultCompilerOptions targets SPIR-V 1.3 with IR validation on.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{SPIRVVersion: spirv.Version1_3, Validate: true}
}

// Compiler turns WGSL stage sources into SPIR-V binaries.
//
// The output is sized for caching: only the OpName and OpMemberName debug
// names that reflection reads are emitted, no line or source info.
type Compiler struct {
	opts CompilerOptions
}

func NewCompiler(opts CompilerOptions) *Compiler {
	if opts.SPIRVVersion.Major == 0 {
		opts.SPIRVVersion = spirv.Version1_3
	}
	return &Compiler{opts: opts}
}

var irStages = map[StageKind]ir.ShaderStage{
	StageVertex:   ir.StageVertex,
	StageFragment: ir.StageFragment,
	StageCompute:  ir.StageCompute,
}

// Compile compiles one stage. name only labels diagnostics.
func (c *Compiler) Compile(src string, kind StageKind, name string) (Unit, error) {
	u := Unit{Kind: kind, Name: name, Source: src}
	op := "compile " + u.Label()

	module, err := c.lower(src, kind, op)
	if err != nil {
		return u, err
	}

	if c.opts.Validate {
		verrs, err := naga.Validate(module)
		if err != nil {
			return u, &errs.Error{Code: errs.ShaderCompilationFailed, Op: op, Err: err}
		}
		if len(verrs) > 0 {
			msgs := make([]string, len(verrs))
			for i := range verrs {
				msgs[i] = verrs[i].Error()
			}
			return u, &errs.Error{
				Code: errs.ShaderCompilationFailed, Op: op,
				Err: fmt.Errorf("validation failed"), Log: strings.Join(msgs, "\n"),
			}
		}
	}

	words, err := naga.GenerateSPIRV(module, spirv.Options{Version: c.opts.SPIRVVersion, Debug: true})
	if err != nil {
		return u, &errs.Error{Code: errs.ShaderCompilationFailed, Op: op, Err: err}
	}
	bin, err := BinaryFromBytes(words)
	if err == nil {
		bin, err = nameResources(bin, module)
	}
	if err != nil {
		return u, &errs.Error{Code: errs.ShaderCompilationFailed, Op: op, Err: err}
	}

	u.Binary = bin
	u.module = module
	return u, nil
}

// Lower parses and lowers a stage without emitting SPIR-V. The translator
// uses it to rebuild the IR of units that came from the cache.
func (c *Compiler) Lower(src string, kind StageKind, name string) (*ir.Module, error) {
	return c.lower(src, kind, "lower "+name+":"+kind.String())
}

func (c *Compiler) lower(src string, kind StageKind, op string) (*ir.Module, error) {
	want, ok := irStages[kind]
	if !ok {
		return nil, errs.New(errs.ShaderCompilationFailed, op, "stage %s not supported by the WGSL frontend", kind)
	}
	if strings.TrimSpace(src) == "" {
		return nil, errs.New(errs.InvalidArgument, op, "empty stage source")
	}

	ast, err := naga.Parse(src)
	if err != nil {
		return nil, &errs.Error{Code: errs.ShaderCompilationFailed, Op: op, Err: err}
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, &errs.Error{Code: errs.ShaderCompilationFailed, Op: op, Err: err}
	}
	if entryPointFor(module, want) == nil {
		return nil, errs.New(errs.ShaderCompilationFailed, op, "no %s entry point", kind)
	}
	return module, nil
}

func entryPointFor(m *ir.Module, stage ir.ShaderStage) *ir.EntryPoint {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage == stage {
			return &m.EntryPoints[i]
		}
	}
	return nil
}

// StageResult is the outcome of compiling one stage.
type StageResult struct {
	Unit Unit
	Err  error
}

// CompileAll compiles every stage independently. A failing stage does not
// stop its siblings; the caller folds the results.
func (c *Compiler) CompileAll(sources Sources, name string) []StageResult {
	out := make([]StageResult, 0, len(sources))
	for _, k := range sources.Kinds() {
		u, err := c.Compile(sources[k], k, name)
		out = append(out, StageResult{Unit: u, Err: err})
	}
	return out
}

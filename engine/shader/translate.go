package shader

import (
	"fmt"

	"github.com/gogpu/naga/glsl"
	"github.com/hubastard/forge/engine/errs"
)

// Translator produces backend source for one compiled stage.
type Translator interface {
	Translate(u Unit) (string, error)
}

// GLSLTranslator emits desktop GLSL at a fixed language version.
type GLSLTranslator struct {
	Version glsl.Version

	// Lowerer rebuilds the IR of units loaded from the cache.
	Lowerer *Compiler
}

// TranslatorFor picks the GLSL version for a GL context version: 4.3 and up
// get 430 (compute, storage buffers), 4.1 and 4.2 get 410, older gets 330.
func TranslatorFor(major, minor int, c *Compiler) *GLSLTranslator {
	v := glsl.Version330
	switch {
	case major > 4 || (major == 4 && minor >= 3):
		v = glsl.Version430
	case major == 4 && minor >= 1:
		v = glsl.Version410
	}
	return &GLSLTranslator{Version: v, Lowerer: c}
}

func (t *GLSLTranslator) Translate(u Unit) (src string, err error) {
	op := "translate " + u.Label()
	if err := u.Binary.CheckHeader(); err != nil {
		return "", &errs.Error{Code: errs.ShaderCompilationFailed, Op: op, Err: err}
	}

	module := u.module
	if module == nil {
		if t.Lowerer == nil {
			return "", errs.New(errs.ShaderCompilationFailed, op, "no IR for cached unit")
		}
		if module, err = t.Lowerer.Lower(u.Source, u.Kind, u.Name); err != nil {
			return "", err
		}
	}

	stage, ok := irStages[u.Kind]
	if !ok {
		return "", errs.New(errs.ShaderCompilationFailed, op, "stage %s has no GLSL target", u.Kind)
	}
	ep := entryPointFor(module, stage)
	if ep == nil {
		return "", errs.New(errs.ShaderCompilationFailed, op, "no %s entry point", u.Kind)
	}

	defer func() {
		if r := recover(); r != nil {
			src = ""
			err = &errs.Error{Code: errs.ShaderCompilationFailed, Op: op, Err: fmt.Errorf("glsl writer: %v", r)}
		}
	}()
	opts := glsl.DefaultOptions()
	opts.LangVersion = t.Version
	opts.EntryPoint = ep.Name
	out, _, err := glsl.Compile(module, opts)
	if err != nil {
		return "", &errs.Error{Code: errs.ShaderCompilationFailed, Op: op, Err: err}
	}
	return out, nil
}

var _ Translator = (*GLSLTranslator)(nil)

package shader

import (
	"github.com/hubastard/forge/engine/errs"
)

// StageCode is what the device compiles for one stage: source text, or a
// SPIR-V binary for devices that ingest it directly.
type StageCode struct {
	Kind   StageKind
	Label  string
	Source string
	Binary Binary

	// EntryPoint names the function a binary stage starts at; "" means main.
	EntryPoint string
}

// IsBinary reports whether the stage is handed to the device as SPIR-V.
func (c StageCode) IsBinary() bool { return c.Source == "" && len(c.Binary) > 0 }

// Device is the slice of a GPU backend the linker drives. Handles are
// backend object names; 0 is never a valid handle. Compile and link
// failures return an *errs.Error whose Log holds the driver diagnostic.
type Device interface {
	CompileStage(code StageCode) (uint32, error)
	DeleteStage(stage uint32)
	CreateProgram() (uint32, error)
	AttachStage(program, stage uint32)
	DetachStage(program, stage uint32)
	LinkProgram(program uint32) error
	DeleteProgram(program uint32)
	// UseProgram makes program current; 0 unbinds.
	UseProgram(program uint32)
}

// Link compiles every stage and links them into one program.
//
// If a stage fails to compile, the stages compiled so far are deleted and
// the compile error is returned. If linking fails, the program and all
// stages are deleted. On success the stages are detached and deleted; the
// program keeps the compiled code.
func Link(dev Device, stages []StageCode) (uint32, error) {
	if len(stages) == 0 {
		return 0, errs.New(errs.InvalidArgument, "shader.Link", "no stages to link")
	}

	compiled := make([]uint32, 0, len(stages))
	release := func() {
		for _, s := range compiled {
			dev.DeleteStage(s)
		}
	}

	for _, code := range stages {
		s, err := dev.CompileStage(code)
		if err != nil {
			release()
			if errs.CodeOf(err) != errs.ShaderCompilationFailed {
				err = &errs.Error{Code: errs.ShaderCompilationFailed, Op: "compile " + code.Label, Err: err}
			}
			return 0, err
		}
		compiled = append(compiled, s)
	}

	prog, err := dev.CreateProgram()
	if err != nil {
		release()
		return 0, errs.Wrap(errs.PipelineCreationFailed, "shader.Link", err)
	}
	for _, s := range compiled {
		dev.AttachStage(prog, s)
	}
	if err := dev.LinkProgram(prog); err != nil {
		dev.DeleteProgram(prog)
		release()
		if errs.CodeOf(err) != errs.ShaderLinkFailed {
			err = &errs.Error{Code: errs.ShaderLinkFailed, Op: "shader.Link", Err: err}
		}
		return 0, err
	}
	for _, s := range compiled {
		dev.DetachStage(prog, s)
	}
	release()
	return prog, nil
}

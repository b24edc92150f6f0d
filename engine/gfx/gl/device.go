package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/shader"
)

var stageTypes = map[shader.StageKind]uint32{
	shader.StageVertex:         gl.VERTEX_SHADER,
	shader.StageFragment:       gl.FRAGMENT_SHADER,
	shader.StageGeometry:       gl.GEOMETRY_SHADER,
	shader.StageCompute:        gl.COMPUTE_SHADER,
	shader.StageTessControl:    gl.TESS_CONTROL_SHADER,
	shader.StageTessEvaluation: gl.TESS_EVALUATION_SHADER,
}

// minVersion is the first core version with each optional stage.
var minVersion = map[shader.StageKind][2]int{
	shader.StageCompute:        {4, 3},
	shader.StageTessControl:    {4, 0},
	shader.StageTessEvaluation: {4, 0},
}

// Device is the OpenGL implementation of shader.Device. It must only be
// used on the thread that owns the context.
type Device struct {
	major, minor int
	current      uint32
}

// NewDevice reads the version of the current context.
func NewDevice() *Device {
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	return &Device{major: int(major), minor: int(minor)}
}

// Version is the context version, e.g. 4, 6.
func (d *Device) Version() (major, minor int) { return d.major, d.minor }

func (d *Device) atLeast(major, minor int) bool {
	return d.major > major || (d.major == major && d.minor >= minor)
}

// SupportsSPIRV reports GL 4.6, the first core version that ingests SPIR-V.
func (d *Device) SupportsSPIRV() bool { return d.atLeast(4, 6) }

func (d *Device) CompileStage(code shader.StageCode) (uint32, error) {
	op := "compile " + code.Label
	typ, ok := stageTypes[code.Kind]
	if !ok {
		return 0, errs.New(errs.ShaderCompilationFailed, op, "no GL shader type for stage %s", code.Kind)
	}
	if need, ok := minVersion[code.Kind]; ok && !d.atLeast(need[0], need[1]) {
		return 0, errs.New(errs.ShaderCompilationFailed, op, "%s stages need OpenGL %d.%d, have %d.%d",
			code.Kind, need[0], need[1], d.major, d.minor)
	}

	sh := gl.CreateShader(typ)
	if sh == 0 {
		return 0, errs.New(errs.ResourceCreationFailed, op, "glCreateShader returned 0")
	}

	if code.IsBinary() {
		if !d.SupportsSPIRV() {
			gl.DeleteShader(sh)
			return 0, errs.New(errs.InvalidOperation, op, "SPIR-V stages need OpenGL 4.6, have %d.%d", d.major, d.minor)
		}
		entry := code.EntryPoint
		if entry == "" {
			entry = "main"
		}
		gl.ShaderBinary(1, &sh, gl.SHADER_BINARY_FORMAT_SPIR_V, unsafe.Pointer(&code.Binary[0]), int32(code.Binary.Len()))
		gl.SpecializeShader(sh, gl.Str(entry+"\x00"), 0, nil, nil)
	} else {
		csrc, free := gl.Strs(code.Source + "\x00")
		gl.ShaderSource(sh, 1, csrc, nil)
		free()
		gl.CompileShader(sh)
	}

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen)+1)
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, &errs.Error{
			Code: errs.ShaderCompilationFailed, Op: op,
			Err: fmt.Errorf("driver rejected %s stage", code.Kind), Log: log,
		}
	}
	return sh, nil
}

func (d *Device) DeleteStage(stage uint32) { gl.DeleteShader(stage) }

func (d *Device) CreateProgram() (uint32, error) {
	p := gl.CreateProgram()
	if p == 0 {
		return 0, errs.New(errs.ResourceCreationFailed, "gl.CreateProgram", "glCreateProgram returned 0")
	}
	return p, nil
}

func (d *Device) AttachStage(program, stage uint32) { gl.AttachShader(program, stage) }
func (d *Device) DetachStage(program, stage uint32) { gl.DetachShader(program, stage) }

func (d *Device) LinkProgram(program uint32) error {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen)+1)
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		return &errs.Error{Code: errs.ShaderLinkFailed, Op: "gl.LinkProgram", Err: fmt.Errorf("program %d", program), Log: log}
	}
	return nil
}

func (d *Device) DeleteProgram(program uint32) {
	if d.current == program {
		d.current = 0
	}
	gl.DeleteProgram(program)
}

// UseProgram binds program unless it is already current.
func (d *Device) UseProgram(program uint32) {
	if d.current == program {
		return
	}
	gl.UseProgram(program)
	d.current = program
}

var _ shader.Device = (*Device)(nil)

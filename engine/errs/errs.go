// Package errs defines the engine's numeric error codes and the error value
// that carries them through the shader pipeline and the GL backend.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a numeric error code. Codes are grouped in ranges of 1000 per
// category, so the category can be recovered from the number alone.
type Code uint32

const (
	Success Code = 0

	// System errors (1000-1999)
	SystemBase Code = 1000 + iota - 1
	FileNotFound
	FileAccessDenied
	InvalidFilePath
	InsufficientMemory
	InvalidConfiguration
	SystemInitFailed
	PermissionDenied
	InvalidOperation
	TimeoutError
	InvalidArgument
)

// Render errors (2000-2999)
const (
	RenderBase Code = 2000 + iota
	ShaderCompilationFailed
	TextureLoadFailed
	InvalidMesh
	SwapchainError
	FramebufferError
	InvalidRenderTarget
	PipelineCreationFailed
	InvalidShaderModule
	RenderPassError
	GraphicsDriverError
	ShaderLinkFailed
)

// Resource errors (5000-5999)
const (
	ResourceBase Code = 5000 + iota
	ResourceLoadFailed
	ResourceNotFound
	InvalidResourceType
	ResourceCreationFailed
)

// Critical errors (13000-13999)
const (
	CriticalBase Code = 13000 + iota
	EngineInitFailed
	FatalError
	SystemShutdownError
	UnrecoverableError
)

var codeNames = map[Code]string{
	Success:                 "Success",
	SystemBase:              "SystemError",
	FileNotFound:            "FileNotFound",
	FileAccessDenied:        "FileAccessDenied",
	InvalidFilePath:         "InvalidFilePath",
	InsufficientMemory:      "InsufficientMemory",
	InvalidConfiguration:    "InvalidConfiguration",
	SystemInitFailed:        "SystemInitFailed",
	PermissionDenied:        "PermissionDenied",
	InvalidOperation:        "InvalidOperation",
	TimeoutError:            "TimeoutError",
	InvalidArgument:         "InvalidArgument",
	RenderBase:              "RenderError",
	ShaderCompilationFailed: "ShaderCompilationFailed",
	TextureLoadFailed:       "TextureLoadFailed",
	InvalidMesh:             "InvalidMesh",
	SwapchainError:          "SwapchainError",
	FramebufferError:        "FramebufferError",
	InvalidRenderTarget:     "InvalidRenderTarget",
	PipelineCreationFailed:  "PipelineCreationFailed",
	InvalidShaderModule:     "InvalidShaderModule",
	RenderPassError:         "RenderPassError",
	GraphicsDriverError:     "GraphicsDriverError",
	ShaderLinkFailed:        "ShaderLinkFailed",
	ResourceBase:            "ResourceError",
	ResourceLoadFailed:      "ResourceLoadFailed",
	ResourceNotFound:        "ResourceNotFound",
	InvalidResourceType:     "InvalidResourceType",
	ResourceCreationFailed:  "ResourceCreationFailed",
	CriticalBase:            "CriticalError",
	EngineInitFailed:        "EngineInitFailed",
	FatalError:              "FatalError",
	SystemShutdownError:     "SystemShutdownError",
	UnrecoverableError:      "UnrecoverableError",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

// Category groups codes by their thousand range.
type Category int

const (
	CategoryNone Category = iota
	CategorySystem
	CategoryRender
	CategoryAudio
	CategoryPhysics
	CategoryResource
	CategoryScene
	CategoryInput
	CategoryNetwork
	CategoryScript
	CategoryAnimation
	CategoryUI
	CategoryDebug
	CategoryCritical
)

var categoryNames = [...]string{
	"None", "System", "Render", "Audio", "Physics", "Resource", "Scene",
	"Input", "Network", "Script", "Animation", "UI", "Debug", "Critical",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "None"
	}
	return categoryNames[c]
}

// Category returns the category for the code's range.
func (c Code) Category() Category {
	if c == Success || c < 1000 || c >= 14000 {
		return CategoryNone
	}
	return Category(c / 1000)
}

// Error is an engine error: a code, the operation that failed, an optional
// path, the backend diagnostic text (compiler or linker log) and the cause.
type Error struct {
	Code Code
	Op   string
	Path string
	Log  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Code.String())
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Log != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(e.Log, "\x00\n"))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code. It makes the
// sentinel values below usable with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrFileNotFound            = &Error{Code: FileNotFound}
	ErrFileAccessDenied        = &Error{Code: FileAccessDenied}
	ErrIO                      = &Error{Code: SystemBase}
	ErrInvalidArgument         = &Error{Code: InvalidArgument}
	ErrInvalidOperation        = &Error{Code: InvalidOperation}
	ErrInvalidConfiguration    = &Error{Code: InvalidConfiguration}
	ErrShaderCompilationFailed = &Error{Code: ShaderCompilationFailed}
	ErrShaderLinkFailed        = &Error{Code: ShaderLinkFailed}
	ErrInvalidShaderModule     = &Error{Code: InvalidShaderModule}
)

// New returns an error with the given code and a formatted cause.
func New(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a code and operation to err. A nil err yields nil.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, Success for a
// nil error and SystemBase for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return SystemBase
}

package gfx

import "github.com/hubastard/forge/engine/colors"

// ClearState selects which framebuffer planes a clear touches and the values
// written to them.
type ClearState struct {
	Color   colors.Color
	Depth   float32
	Stencil int32

	ClearColor   bool
	ClearDepth   bool
	ClearStencil bool
}

// DefaultClearState clears color to opaque black and depth to 1; stencil is
// left alone.
func DefaultClearState() ClearState {
	return ClearState{
		Color:      colors.Black,
		Depth:      1,
		ClearColor: true,
		ClearDepth: true,
	}
}

// Any reports whether the clear touches at least one plane.
func (c ClearState) Any() bool { return c.ClearColor || c.ClearDepth || c.ClearStencil }

// Viewport is the framebuffer rectangle and depth range drawn into.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// FullViewport covers a w by h framebuffer with the [0, 1] depth range.
func FullViewport(w, h int) Viewport {
	return Viewport{Width: float32(w), Height: float32(h), MaxDepth: 1}
}

// Empty reports a viewport with no area, as seen while a window is minimized.
func (v Viewport) Empty() bool { return v.Width < 1 || v.Height < 1 }

package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/forge/engine/colors"
	"github.com/hubastard/forge/engine/errs"
)

func TestSelectAPI(t *testing.T) {
	a, err := SelectAPI(APIOpenGL)
	require.NoError(t, err)
	assert.Equal(t, APIOpenGL, a)

	for _, a := range []GraphicsAPI{APINone, APIVulkan, APIDirectX12, APIMetal, APIWebGL} {
		_, err := SelectAPI(a)
		assert.ErrorIs(t, err, errs.ErrInvalidConfiguration, a.String())
	}
	assert.Equal(t, []GraphicsAPI{APIOpenGL}, AvailableAPIs())
}

func TestParseAPI(t *testing.T) {
	for s, want := range map[string]GraphicsAPI{"gl": APIOpenGL, "OpenGL": APIOpenGL, "vulkan": APIVulkan, "Metal": APIMetal} {
		got, err := ParseAPI(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := ParseAPI("glide")
	assert.Error(t, err)
	assert.Equal(t, "None", GraphicsAPI(42).String())
}

func TestDataTypeSizes(t *testing.T) {
	tests := []struct {
		t          DataType
		size, comp uint32
	}{
		{DataNone, 0, 0},
		{Float, 4, 1},
		{Float3, 12, 3},
		{Mat3, 36, 9},
		{Mat4, 64, 16},
		{Int2, 8, 2},
		{Int4, 16, 4},
		{Bool, 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.t.Size(), "size of %d", tt.t)
		assert.Equal(t, tt.comp, tt.t.ComponentCount(), "components of %d", tt.t)
	}
	assert.True(t, Int3.IsInteger())
	assert.False(t, Mat4.IsInteger())
}

func TestLayoutOffsetsAndStride(t *testing.T) {
	l := NewLayout(
		Element(Float3, "a_Position"),
		Element(Float4, "a_Color"),
		Element(Float2, "a_TexCoord"),
	)
	require.Len(t, l.Elements(), 3)
	assert.Equal(t, uint32(36), l.Stride())
	assert.Equal(t, uint32(0), l.Elements()[0].Offset)
	assert.Equal(t, uint32(12), l.Elements()[1].Offset)
	assert.Equal(t, uint32(28), l.Elements()[2].Offset)
	assert.Equal(t, uint32(8), l.Elements()[2].Size)

	assert.True(t, NewLayout().Empty())
	assert.Zero(t, NewLayout().Stride())
}

func TestClearState(t *testing.T) {
	c := DefaultClearState()
	assert.Equal(t, colors.Black, c.Color)
	assert.Equal(t, float32(1), c.Depth)
	assert.True(t, c.Any())
	assert.False(t, c.ClearStencil)
	assert.False(t, ClearState{}.Any())
}

func TestViewport(t *testing.T) {
	v := FullViewport(1280, 720)
	assert.Equal(t, float32(1280), v.Width)
	assert.Equal(t, float32(1), v.MaxDepth)
	assert.False(t, v.Empty())
	assert.True(t, FullViewport(0, 720).Empty())
}

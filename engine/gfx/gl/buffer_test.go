package glbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/gfx"
)

// These cases are rejected before any GL call, so no context is needed.

func TestStaticBuffersRejectSubmit(t *testing.T) {
	vb := &VertexBuffer{mode: gfx.Static, count: 9}
	assert.ErrorIs(t, vb.SubmitData([]float32{1, 2, 3}, 0), errs.ErrInvalidOperation)

	ib := &IndexBuffer{mode: gfx.Static, count: 3}
	assert.ErrorIs(t, ib.SubmitData([]uint32{0, 1, 2}, 0), errs.ErrInvalidOperation)
}

func TestDynamicSubmitBounds(t *testing.T) {
	vb := &VertexBuffer{mode: gfx.Dynamic, count: 4}
	assert.ErrorIs(t, vb.SubmitData(make([]float32, 3), 2), errs.ErrInvalidArgument)
	assert.ErrorIs(t, vb.SubmitData(make([]float32, 1), -1), errs.ErrInvalidArgument)
	assert.NoError(t, vb.SubmitData(nil, 4), "an empty update is a no-op")
}

func TestVertexArrayRejectsForeignBuffers(t *testing.T) {
	va := &VertexArray{}
	assert.ErrorIs(t, va.AddVertexBuffer(nil), errs.ErrInvalidArgument)
	assert.ErrorIs(t, va.SetIndexBuffer(nil), errs.ErrInvalidArgument)
	assert.Nil(t, va.IndexBuffer())

	assert.ErrorIs(t, va.AddVertexBuffer(&VertexBuffer{}), errs.ErrInvalidOperation, "no layout")
}

func TestAttributeTypes(t *testing.T) {
	assert.Equal(t, uint32(0x1406), baseType(gfx.Float3)) // GL_FLOAT
	assert.Equal(t, uint32(0x1404), baseType(gfx.Int2))   // GL_INT
	assert.Equal(t, uint32(0x88E4), usage(gfx.Static))    // GL_STATIC_DRAW
	assert.Equal(t, uint32(0x88E8), usage(gfx.Dynamic))   // GL_DYNAMIC_DRAW
}

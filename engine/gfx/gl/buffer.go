package glbackend

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/gfx"
)

func usage(m gfx.DrawMode) uint32 {
	if m == gfx.Dynamic {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func baseType(t gfx.DataType) uint32 {
	switch t {
	case gfx.Int, gfx.Int2, gfx.Int3, gfx.Int4:
		return gl.INT
	case gfx.Bool:
		return gl.BOOL
	}
	return gl.FLOAT
}

// checkSubmit validates a SubmitData call before any GL state is touched.
func checkSubmit(op string, mode gfx.DrawMode, offset, count, capacity int) error {
	if mode != gfx.Dynamic {
		return errs.New(errs.InvalidOperation, op, "buffer was created Static; use Dynamic to update it")
	}
	if offset < 0 || offset+count > capacity {
		return errs.New(errs.InvalidArgument, op, "range [%d, %d) outside buffer of %d", offset, offset+count, capacity)
	}
	return nil
}

// VertexBuffer is a GL_ARRAY_BUFFER of float32 vertex data.
type VertexBuffer struct {
	id     uint32
	mode   gfx.DrawMode
	count  int
	layout gfx.BufferLayout
}

// NewVertexBuffer uploads data. A Dynamic buffer may be created with nil
// data and a size of count floats, to be filled by SubmitData.
func NewVertexBuffer(data []float32, count int, mode gfx.DrawMode) *VertexBuffer {
	if len(data) > count {
		count = len(data)
	}
	vb := &VertexBuffer{mode: mode, count: count}
	gl.GenBuffers(1, &vb.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.id)
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(gl.ARRAY_BUFFER, count*4, ptr, usage(mode))
	return vb
}

func (vb *VertexBuffer) Bind()   { gl.BindBuffer(gl.ARRAY_BUFFER, vb.id) }
func (vb *VertexBuffer) Unbind() { gl.BindBuffer(gl.ARRAY_BUFFER, 0) }

func (vb *VertexBuffer) Layout() gfx.BufferLayout          { return vb.layout }
func (vb *VertexBuffer) SetLayout(layout gfx.BufferLayout) { vb.layout = layout }

// SubmitData overwrites floats starting at element offset. Static buffers
// reject updates.
func (vb *VertexBuffer) SubmitData(data []float32, offset int) error {
	if err := checkSubmit("VertexBuffer.SubmitData", vb.mode, offset, len(data), vb.count); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	vb.Bind()
	gl.BufferSubData(gl.ARRAY_BUFFER, offset*4, len(data)*4, gl.Ptr(data))
	return nil
}

func (vb *VertexBuffer) Destroy() {
	if vb.id != 0 {
		gl.DeleteBuffers(1, &vb.id)
		vb.id = 0
	}
}

// IndexBuffer is a GL_ELEMENT_ARRAY_BUFFER of uint32 indices.
type IndexBuffer struct {
	id    uint32
	mode  gfx.DrawMode
	count int
}

func NewIndexBuffer(indices []uint32, mode gfx.DrawMode) *IndexBuffer {
	ib := &IndexBuffer{mode: mode, count: len(indices)}
	gl.GenBuffers(1, &ib.id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.id)
	var ptr unsafe.Pointer
	if len(indices) > 0 {
		ptr = gl.Ptr(indices)
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, ptr, usage(mode))
	return ib
}

func (ib *IndexBuffer) Bind()      { gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.id) }
func (ib *IndexBuffer) Unbind()    { gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0) }
func (ib *IndexBuffer) Count() int { return ib.count }

// SubmitData overwrites indices starting at element offset. Static buffers
// reject updates.
func (ib *IndexBuffer) SubmitData(indices []uint32, offset int) error {
	if err := checkSubmit("IndexBuffer.SubmitData", ib.mode, offset, len(indices), ib.count); err != nil {
		return err
	}
	if len(indices) == 0 {
		return nil
	}
	ib.Bind()
	gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, offset*4, len(indices)*4, gl.Ptr(indices))
	return nil
}

func (ib *IndexBuffer) Destroy() {
	if ib.id != 0 {
		gl.DeleteBuffers(1, &ib.id)
		ib.id = 0
	}
}

// VertexArray binds vertex buffers to attribute slots in layout order and
// holds the index buffer used for indexed draws.
type VertexArray struct {
	id       uint32
	next     uint32
	vertices []*VertexBuffer
	indices  *IndexBuffer
}

func NewVertexArray() *VertexArray {
	va := &VertexArray{}
	gl.GenVertexArrays(1, &va.id)
	return va
}

func (va *VertexArray) Bind()   { gl.BindVertexArray(va.id) }
func (va *VertexArray) Unbind() { gl.BindVertexArray(0) }

// AddVertexBuffer enables one attribute per layout element, continuing the
// attribute numbering of earlier buffers.
func (va *VertexArray) AddVertexBuffer(vb gfx.VertexBuffer) error {
	glvb, ok := vb.(*VertexBuffer)
	if !ok {
		return errs.New(errs.InvalidArgument, "VertexArray.AddVertexBuffer", "%T is not a GL vertex buffer", vb)
	}
	layout := glvb.Layout()
	if layout.Empty() {
		return errs.New(errs.InvalidOperation, "VertexArray.AddVertexBuffer", "vertex buffer has no layout")
	}

	va.Bind()
	glvb.Bind()
	stride := int32(layout.Stride())
	for _, e := range layout.Elements() {
		gl.EnableVertexAttribArray(va.next)
		off := gl.PtrOffset(int(e.Offset))
		if e.Type.IsInteger() {
			gl.VertexAttribIPointer(va.next, int32(e.Type.ComponentCount()), baseType(e.Type), stride, off)
		} else {
			gl.VertexAttribPointer(va.next, int32(e.Type.ComponentCount()), baseType(e.Type), e.Normalized, stride, off)
		}
		va.next++
	}
	va.Unbind()
	va.vertices = append(va.vertices, glvb)
	return nil
}

func (va *VertexArray) SetIndexBuffer(ib gfx.IndexBuffer) error {
	glib, ok := ib.(*IndexBuffer)
	if !ok {
		return errs.New(errs.InvalidArgument, "VertexArray.SetIndexBuffer", "%T is not a GL index buffer", ib)
	}
	va.Bind()
	glib.Bind()
	va.Unbind()
	va.indices = glib
	return nil
}

func (va *VertexArray) IndexBuffer() gfx.IndexBuffer {
	if va.indices == nil {
		return nil
	}
	return va.indices
}

// Destroy deletes the array and every buffer attached to it.
func (va *VertexArray) Destroy() {
	for _, vb := range va.vertices {
		vb.Destroy()
	}
	if va.indices != nil {
		va.indices.Destroy()
	}
	if va.id != 0 {
		gl.DeleteVertexArrays(1, &va.id)
		va.id = 0
	}
}

var (
	_ gfx.VertexBuffer = (*VertexBuffer)(nil)
	_ gfx.IndexBuffer  = (*IndexBuffer)(nil)
	_ gfx.VertexArray  = (*VertexArray)(nil)
)

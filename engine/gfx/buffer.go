package gfx

// VertexBuffer holds interleaved float vertex data described by a layout.
type VertexBuffer interface {
	Bind()
	Unbind()
	Layout() BufferLayout
	SetLayout(BufferLayout)
	// SubmitData overwrites data starting at element offset. Static
	// buffers return an errs.InvalidOperation error.
	SubmitData(data []float32, offset int) error
	Destroy()
}

// IndexBuffer holds uint32 indices.
type IndexBuffer interface {
	Bind()
	Unbind()
	Count() int
	SubmitData(indices []uint32, offset int) error
	Destroy()
}

// VertexArray ties vertex buffers and an index buffer together for drawing.
type VertexArray interface {
	Bind()
	Unbind()
	AddVertexBuffer(VertexBuffer) error
	SetIndexBuffer(IndexBuffer) error
	IndexBuffer() IndexBuffer
	Destroy()
}

package gfx

// DataType is the type of one vertex attribute.
type DataType uint8

const (
	DataNone DataType = iota
	Float
	Float2
	Float3
	Float4
	Mat3
	Mat4
	Int
	Int2
	Int3
	Int4
	Bool
)

// Size is the attribute size in bytes.
func (t DataType) Size() uint32 {
	if t == Bool {
		return 1
	}
	return t.ComponentCount() * 4
}

// ComponentCount is the number of scalars in the attribute.
func (t DataType) ComponentCount() uint32 {
	switch t {
	case Float, Int, Bool:
		return 1
	case Float2, Int2:
		return 2
	case Float3, Int3:
		return 3
	case Float4, Int4:
		return 4
	case Mat3:
		return 3 * 3
	case Mat4:
		return 4 * 4
	}
	return 0
}

// IsInteger reports the int and bool types, which backends upload without
// float conversion.
func (t DataType) IsInteger() bool {
	switch t {
	case Int, Int2, Int3, Int4, Bool:
		return true
	}
	return false
}

// BufferElement is one attribute of an interleaved vertex.
type BufferElement struct {
	Name       string
	Type       DataType
	Size       uint32
	Offset     uint32
	Normalized bool
}

// Element declares an attribute; its size and offset are filled in by
// NewLayout.
func Element(t DataType, name string) BufferElement {
	return BufferElement{Name: name, Type: t, Size: t.Size()}
}

// BufferLayout describes interleaved vertex data: attribute offsets follow
// declaration order and the stride is the sum of the sizes.
type BufferLayout struct {
	elements []BufferElement
	stride   uint32
}

func NewLayout(elements ...BufferElement) BufferLayout {
	l := BufferLayout{elements: make([]BufferElement, len(elements))}
	for i, e := range elements {
		e.Size = e.Type.Size()
		e.Offset = l.stride
		l.stride += e.Size
		l.elements[i] = e
	}
	return l
}

func (l BufferLayout) Elements() []BufferElement { return l.elements }
func (l BufferLayout) Stride() uint32            { return l.stride }
func (l BufferLayout) Empty() bool               { return len(l.elements) == 0 }

// DrawMode is the update policy of a buffer. Static buffers are written
// once at creation.
type DrawMode uint8

const (
	Static DrawMode = iota
	Dynamic
)

func (m DrawMode) String() string {
	if m == Dynamic {
		return "Dynamic"
	}
	return "Static"
}

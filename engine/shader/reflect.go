package shader

import (
	"fmt"

	"github.com/gogpu/naga/spirv"
	"github.com/hubastard/forge/engine/errs"
)

// Opcodes and decorations read by the reflector that naga/spirv does not
// export.
const (
	opTypeImage        spirv.OpCode     = 25
	opTypeSampler      spirv.OpCode     = 26
	opTypeSampledImage spirv.OpCode     = 27
	opTypeRuntimeArray spirv.OpCode     = 29
	decorationBuffer   spirv.Decoration = 3 // BufferBlock
)

// Execution models of OpEntryPoint.
var executionModels = map[uint32]StageKind{
	0: StageVertex,
	1: StageTessControl,
	2: StageTessEvaluation,
	3: StageGeometry,
	4: StageFragment,
	5: StageCompute,
}

// Storage classes of OpVariable.
const (
	storageUniformConstant uint32 = 0
	storageInput           uint32 = 1
	storageUniform         uint32 = 2
	storageOutput          uint32 = 3
	storageStorageBuffer   uint32 = 12
)

type spvType struct {
	op      spirv.OpCode
	width   uint32   // scalar bit width
	elem    uint32   // vector component / matrix column / array element / pointee
	count   uint32   // vector size / matrix columns
	length  uint32   // array length constant id
	members []uint32 // struct member types
	storage uint32   // pointer storage class
}

type spvVar struct {
	id, typ, storage uint32
}

type memberKey struct{ id, member uint32 }

// reflector holds the tables built from one pass over a SPIR-V module.
type reflector struct {
	names       map[uint32]string
	decorations map[uint32]map[spirv.Decoration]uint32
	memberDecos map[memberKey]map[spirv.Decoration]uint32
	types       map[uint32]*spvType
	constants   map[uint32]uint32
	vars        []spvVar
	entries     map[StageKind]string
}

// Reflect collects the resources of one stage binary into into. Stage inputs
// are only reflected for the vertex stage; outputs for every stage. A stage
// that fails to reflect adds nothing.
func Reflect(bin Binary, kind StageKind, into *Reflection) error {
	r, err := parseModule(bin)
	if err != nil {
		return err
	}
	found := make([]Resource, 0, len(r.vars))
	for _, v := range r.vars {
		res, ok, err := r.resource(v, kind)
		if err != nil {
			return err
		}
		if ok {
			found = append(found, res)
		}
	}
	for _, res := range found {
		into.add(res)
	}
	return nil
}

// EntryPoint returns the name of the first entry point of the given stage.
// Devices that ingest SPIR-V need it to specialize the module.
func EntryPoint(bin Binary, kind StageKind) (string, error) {
	r, err := parseModule(bin)
	if err != nil {
		return "", err
	}
	name, ok := r.entries[kind]
	if !ok {
		return "", malformed("no %s entry point", kind)
	}
	return name, nil
}

func malformed(format string, args ...any) error {
	return errs.New(errs.InvalidShaderModule, "shader.Reflect", format, args...)
}

func parseModule(bin Binary) (*reflector, error) {
	if err := bin.CheckHeader(); err != nil {
		return nil, err
	}
	r := &reflector{
		names:       map[uint32]string{},
		decorations: map[uint32]map[spirv.Decoration]uint32{},
		memberDecos: map[memberKey]map[spirv.Decoration]uint32{},
		types:       map[uint32]*spvType{},
		constants:   map[uint32]uint32{},
		entries:     map[StageKind]string{},
	}

	for pc := headerWords; pc < len(bin); {
		count := int(bin[pc] >> 16)
		op := spirv.OpCode(bin[pc] & 0xffff)
		if count == 0 || pc+count > len(bin) {
			return nil, malformed("instruction at word %d has bad length %d", pc, count)
		}
		if err := r.visit(op, bin[pc+1:pc+count]); err != nil {
			return nil, fmt.Errorf("word %d: %w", pc, err)
		}
		pc += count
	}
	return r, nil
}

func need(ops []uint32, n int, op spirv.OpCode) error {
	if len(ops) < n {
		return malformed("opcode %d: %d operands, want %d", op, len(ops), n)
	}
	return nil
}

func (r *reflector) visit(op spirv.OpCode, ops []uint32) error {
	switch op {
	case spirv.OpEntryPoint:
		if err := need(ops, 3, op); err != nil {
			return err
		}
		if k, ok := executionModels[ops[0]]; ok {
			if _, seen := r.entries[k]; !seen {
				r.entries[k] = literalString(ops[2:])
			}
		}

	case spirv.OpName:
		if err := need(ops, 2, op); err != nil {
			return err
		}
		r.names[ops[0]] = literalString(ops[1:])

	case spirv.OpDecorate:
		if err := need(ops, 2, op); err != nil {
			return err
		}
		m := r.decorations[ops[0]]
		if m == nil {
			m = map[spirv.Decoration]uint32{}
			r.decorations[ops[0]] = m
		}
		m[spirv.Decoration(ops[1])] = operand(ops, 2)

	case spirv.OpMemberDecorate:
		if err := need(ops, 3, op); err != nil {
			return err
		}
		key := memberKey{ops[0], ops[1]}
		m := r.memberDecos[key]
		if m == nil {
			m = map[spirv.Decoration]uint32{}
			r.memberDecos[key] = m
		}
		m[spirv.Decoration(ops[2])] = operand(ops, 3)

	case spirv.OpTypeVoid, spirv.OpTypeBool, opTypeSampler:
		if err := need(ops, 1, op); err != nil {
			return err
		}
		r.types[ops[0]] = &spvType{op: op, width: 32}

	case spirv.OpTypeInt, spirv.OpTypeFloat:
		if err := need(ops, 2, op); err != nil {
			return err
		}
		r.types[ops[0]] = &spvType{op: op, width: ops[1]}

	case spirv.OpTypeVector, spirv.OpTypeMatrix:
		if err := need(ops, 3, op); err != nil {
			return err
		}
		r.types[ops[0]] = &spvType{op: op, elem: ops[1], count: ops[2]}

	case opTypeImage, opTypeSampledImage, opTypeRuntimeArray:
		if err := need(ops, 2, op); err != nil {
			return err
		}
		r.types[ops[0]] = &spvType{op: op, elem: ops[1]}

	case spirv.OpTypeArray:
		if err := need(ops, 3, op); err != nil {
			return err
		}
		r.types[ops[0]] = &spvType{op: op, elem: ops[1], length: ops[2]}

	case spirv.OpTypeStruct:
		if err := need(ops, 1, op); err != nil {
			return err
		}
		r.types[ops[0]] = &spvType{op: op, members: append([]uint32(nil), ops[1:]...)}

	case spirv.OpTypePointer:
		if err := need(ops, 3, op); err != nil {
			return err
		}
		r.types[ops[0]] = &spvType{op: op, storage: ops[1], elem: ops[2]}

	case spirv.OpConstant:
		if err := need(ops, 3, op); err != nil {
			return err
		}
		r.constants[ops[1]] = ops[2]

	case spirv.OpVariable:
		if err := need(ops, 3, op); err != nil {
			return err
		}
		r.vars = append(r.vars, spvVar{typ: ops[0], id: ops[1], storage: ops[2]})
	}
	return nil
}

func operand(ops []uint32, i int) uint32 {
	if i < len(ops) {
		return ops[i]
	}
	return 0
}

// literalString decodes a nul-terminated UTF-8 string packed little-endian
// into words.
func literalString(words []uint32) string {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for i := 0; i < 4; i++ {
			c := byte(w >> (8 * i))
			if c == 0 {
				return string(b)
			}
			b = append(b, c)
		}
	}
	return string(b)
}

func (r *reflector) decoration(id uint32, d spirv.Decoration) (uint32, bool) {
	v, ok := r.decorations[id][d]
	return v, ok
}

func (r *reflector) typ(id uint32) (*spvType, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, malformed("unknown type id %d", id)
	}
	return t, nil
}

// stripArrays follows array types down to their element type.
func (r *reflector) stripArrays(id uint32) (uint32, *spvType, error) {
	for depth := 0; depth < 16; depth++ {
		t, err := r.typ(id)
		if err != nil {
			return 0, nil, err
		}
		if t.op != spirv.OpTypeArray && t.op != opTypeRuntimeArray {
			return id, t, nil
		}
		id = t.elem
	}
	return 0, nil, malformed("array nesting too deep")
}

func (r *reflector) resource(v spvVar, kind StageKind) (Resource, bool, error) {
	ptr, err := r.typ(v.typ)
	if err != nil {
		return Resource{}, false, err
	}
	if ptr.op != spirv.OpTypePointer {
		return Resource{}, false, malformed("variable %d is not a pointer", v.id)
	}
	if _, builtin := r.decoration(v.id, spirv.DecorationBuiltIn); builtin {
		return Resource{}, false, nil
	}
	baseID, base, err := r.stripArrays(ptr.elem)
	if err != nil {
		return Resource{}, false, err
	}

	res := Resource{Name: r.name(v.id, baseID)}
	res.Binding, _ = r.decoration(v.id, spirv.DecorationBinding)
	res.Set, _ = r.decoration(v.id, spirv.DecorationDescriptorSet)

	switch v.storage {
	case storageUniform, storageStorageBuffer:
		if base.op != spirv.OpTypeStruct {
			return Resource{}, false, nil
		}
		_, isBlock := r.decoration(baseID, spirv.DecorationBlock)
		_, isBufferBlock := r.decoration(baseID, decorationBuffer)
		switch {
		case v.storage == storageStorageBuffer || isBufferBlock:
			res.Kind = StorageBuffer
		case isBlock:
			res.Kind = UniformBuffer
		default:
			return Resource{}, false, nil
		}
		baseID, base = r.unwrap(baseID, base)
		res.Name = r.name(v.id, baseID)
		size, err := r.structSize(baseID, 0)
		if err != nil {
			return Resource{}, false, err
		}
		res.Size = size
		res.MemberCount = uint32(len(base.members))
		return res, true, nil

	case storageUniformConstant:
		switch base.op {
		case opTypeSampledImage, opTypeImage, opTypeSampler:
			res.Kind = Sampler
			return res, true, nil
		}
		return Resource{}, false, nil

	case storageInput, storageOutput:
		if v.storage == storageInput && kind != StageVertex {
			return Resource{}, false, nil
		}
		loc, ok := r.decoration(v.id, spirv.DecorationLocation)
		if !ok || r.isBuiltinBlock(baseID, base) {
			return Resource{}, false, nil
		}
		res.Kind = Input
		if v.storage == storageOutput {
			res.Kind = Output
		}
		res.Location = loc
		res.Binding, res.Set = 0, 0
		if v.storage == storageInput {
			comps, err := r.components(ptr.elem, 0)
			if err != nil {
				return Resource{}, false, err
			}
			// Every component is assumed to be a 4-byte scalar, which
			// misreports double and 64-bit integer attributes.
			res.Size = comps * 4
		}
		return res, true, nil
	}
	return Resource{}, false, nil
}

// name is the variable's debug name, else its type's, else "_<id>".
func (r *reflector) name(varID, typeID uint32) string {
	if n := r.names[varID]; n != "" {
		return n
	}
	if n := r.names[typeID]; n != "" {
		return n
	}
	return fmt.Sprintf("_%d", varID)
}

// unwrap returns the struct inside a generated wrapper block: an unnamed
// block whose only member is a struct.
func (r *reflector) unwrap(id uint32, t *spvType) (uint32, *spvType) {
	if r.names[id] != "" || len(t.members) != 1 {
		return id, t
	}
	inner, ok := r.types[t.members[0]]
	if !ok || inner.op != spirv.OpTypeStruct {
		return id, t
	}
	return t.members[0], inner
}

func (r *reflector) isBuiltinBlock(id uint32, t *spvType) bool {
	if t.op != spirv.OpTypeStruct {
		return false
	}
	for i := range t.members {
		if _, ok := r.memberDecos[memberKey{id, uint32(i)}][spirv.DecorationBuiltIn]; ok {
			return true
		}
	}
	return false
}

const maxTypeDepth = 32

// components counts the scalar components of a type.
func (r *reflector) components(id uint32, depth int) (uint32, error) {
	if depth > maxTypeDepth {
		return 0, malformed("type nesting too deep")
	}
	t, err := r.typ(id)
	if err != nil {
		return 0, err
	}
	switch t.op {
	case spirv.OpTypeBool, spirv.OpTypeInt, spirv.OpTypeFloat:
		return 1, nil
	case spirv.OpTypeVector:
		return t.count, nil
	case spirv.OpTypeMatrix:
		col, err := r.components(t.elem, depth+1)
		return t.count * col, err
	case spirv.OpTypeArray:
		elem, err := r.components(t.elem, depth+1)
		return r.constants[t.length] * elem, err
	case spirv.OpTypeStruct:
		var n uint32
		for _, m := range t.members {
			c, err := r.components(m, depth+1)
			if err != nil {
				return 0, err
			}
			n += c
		}
		return n, nil
	}
	return 0, nil
}

// structSize is the declared size of a struct: the end of its furthest
// member when offsets are present, the sum of member sizes otherwise.
// Runtime arrays contribute nothing.
func (r *reflector) structSize(id uint32, depth int) (uint32, error) {
	t, err := r.typ(id)
	if err != nil {
		return 0, err
	}
	var size, sum uint32
	for i, m := range t.members {
		deco := r.memberDecos[memberKey{id, uint32(i)}]
		ms, err := r.size(m, deco[spirv.DecorationMatrixStride], depth+1)
		if err != nil {
			return 0, err
		}
		sum += ms
		if off, ok := deco[spirv.DecorationOffset]; ok && off+ms > size {
			size = off + ms
		}
	}
	if size == 0 {
		return sum, nil
	}
	return size, nil
}

// size returns the byte size of a type. matrixStride comes from the member
// decoration of the enclosing struct and is 0 when absent.
func (r *reflector) size(id, matrixStride uint32, depth int) (uint32, error) {
	if depth > maxTypeDepth {
		return 0, malformed("type nesting too deep")
	}
	t, err := r.typ(id)
	if err != nil {
		return 0, err
	}
	switch t.op {
	case spirv.OpTypeBool:
		return 4, nil
	case spirv.OpTypeInt, spirv.OpTypeFloat:
		return t.width / 8, nil
	case spirv.OpTypeVector:
		elem, err := r.size(t.elem, 0, depth+1)
		return t.count * elem, err
	case spirv.OpTypeMatrix:
		if matrixStride != 0 {
			return t.count * matrixStride, nil
		}
		col, err := r.size(t.elem, 0, depth+1)
		return t.count * col, err
	case spirv.OpTypeArray:
		n := r.constants[t.length]
		if stride, ok := r.decoration(id, spirv.DecorationArrayStride); ok {
			return n * stride, nil
		}
		elem, err := r.size(t.elem, matrixStride, depth+1)
		return n * elem, err
	case opTypeRuntimeArray:
		return 0, nil
	case spirv.OpTypeStruct:
		return r.structSize(id, depth)
	}
	return 0, nil
}

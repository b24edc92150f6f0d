package shader

import (
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// Preamble opcodes naga/spirv does not export.
const (
	opSourceContinued spirv.OpCode = 2
	opSourceExtension spirv.OpCode = 4
	opExecutionModeID spirv.OpCode = 331
)

// preamble is every opcode allowed before the annotation section.
var preamble = map[spirv.OpCode]bool{
	spirv.OpNop:           true,
	spirv.OpCapability:    true,
	spirv.OpExtension:     true,
	spirv.OpExtInstImport: true,
	spirv.OpMemoryModel:   true,
	spirv.OpEntryPoint:    true,
	spirv.OpExecutionMode: true,
	opExecutionModeID:     true,
	spirv.OpString:        true,
	spirv.OpSource:        true,
	opSourceContinued:     true,
	opSourceExtension:     true,
	spirv.OpName:          true,
	spirv.OpMemberName:    true,
}

type bindingSlot struct{ set, binding uint32 }

// nameResources adds the OpName instructions the code generator leaves out
// for bound globals: the variable gets its declared name and the struct it
// holds gets the struct's name. Variables are matched by descriptor set and
// binding. Existing names are kept.
func nameResources(bin Binary, module *ir.Module) (Binary, error) {
	r, err := parseModule(bin)
	if err != nil {
		return nil, err
	}

	slots := map[bindingSlot]spvVar{}
	for _, v := range r.vars {
		set, okSet := r.decoration(v.id, spirv.DecorationDescriptorSet)
		binding, okBinding := r.decoration(v.id, spirv.DecorationBinding)
		if okSet && okBinding {
			slots[bindingSlot{set, binding}] = v
		}
	}

	var names []uint32
	add := func(id uint32, name string) {
		if name == "" || r.names[id] != "" {
			return
		}
		r.names[id] = name
		names = append(names, opName(id, name)...)
	}

	for _, g := range module.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		v, ok := slots[bindingSlot{g.Binding.Group, g.Binding.Binding}]
		if !ok {
			continue
		}
		add(v.id, g.Name)

		if int(g.Type) >= len(module.Types) || module.Types[g.Type].Name == "" {
			continue
		}
		ptr, err := r.typ(v.typ)
		if err != nil || ptr.op != spirv.OpTypePointer {
			continue
		}
		id, t, err := r.stripArrays(ptr.elem)
		if err != nil || t.op != spirv.OpTypeStruct {
			continue
		}
		if wrapsGlobal(module, g) && len(t.members) == 1 {
			id = t.members[0]
		}
		add(id, module.Types[g.Type].Name)
	}

	if len(names) == 0 {
		return bin, nil
	}
	at := preambleEnd(bin)
	out := make(Binary, 0, len(bin)+len(names))
	out = append(out, bin[:at]...)
	out = append(out, names...)
	return append(out, bin[at:]...), nil
}

// wrapsGlobal reports whether the SPIR-V backend puts the global inside a
// one-member Block struct. Buffers already ending in a runtime array and
// binding arrays are left as declared.
func wrapsGlobal(m *ir.Module, g ir.GlobalVariable) bool {
	if g.Space != ir.SpaceUniform && g.Space != ir.SpaceStorage {
		return false
	}
	switch t := m.Types[g.Type].Inner.(type) {
	case ir.StructType:
		if len(t.Members) == 0 {
			return false
		}
		last := t.Members[len(t.Members)-1]
		if int(last.Type) < len(m.Types) {
			if arr, ok := m.Types[last.Type].Inner.(ir.ArrayType); ok && arr.Size.Constant == nil {
				return false
			}
		}
		return true
	case ir.BindingArrayType:
		return false
	}
	return true
}

// preambleEnd is the word offset of the first annotation, type or function
// instruction. The binary must already have passed parseModule.
func preambleEnd(bin Binary) int {
	pc := headerWords
	for pc < len(bin) {
		if !preamble[spirv.OpCode(bin[pc]&0xffff)] {
			break
		}
		pc += int(bin[pc] >> 16)
	}
	return pc
}

func opName(id uint32, name string) []uint32 {
	lit := literalWords(name)
	out := make([]uint32, 0, len(lit)+2)
	out = append(out, uint32(len(lit)+2)<<16|uint32(spirv.OpName), id)
	return append(out, lit...)
}

// literalWords packs s nul-terminated into little-endian words.
func literalWords(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
	return out
}

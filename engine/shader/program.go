package shader

import "fmt"

// State is the lifecycle of a Program.
type State uint8

const (
	Unlinked State = iota
	Linking
	Linked
	Failed
)

func (s State) String() string {
	switch s {
	case Unlinked:
		return "Unlinked"
	case Linking:
		return "Linking"
	case Linked:
		return "Linked"
	default:
		return "Failed"
	}
}

// Program is a linked GPU program together with the resources reflected
// from its stages. Only a Linked program may be bound.
type Program struct {
	Reflection

	name   string
	dev    Device
	handle uint32
	state  State
}

func newProgram(name string, dev Device) *Program {
	return &Program{name: name, dev: dev, state: Unlinked}
}

// link runs the linker and settles the program in Linked or Failed.
func (p *Program) link(stages []StageCode) error {
	if p.state != Unlinked {
		return fmt.Errorf("shader %q: link in state %s", p.name, p.state)
	}
	p.state = Linking
	h, err := Link(p.dev, stages)
	if err != nil {
		p.state = Failed
		return err
	}
	p.handle = h
	p.state = Linked
	return nil
}

func (p *Program) Name() string   { return p.name }
func (p *Program) State() State   { return p.state }
func (p *Program) Handle() uint32 { return p.handle }

// Bind makes the program current. Binding a program that is not Linked is a
// programming error and panics.
func (p *Program) Bind() {
	if p == nil || p.state != Linked || p.handle == 0 {
		state := Failed
		if p != nil {
			state = p.state
		}
		panic(fmt.Sprintf("shader: bind of unusable program (state %s)", state))
	}
	p.dev.UseProgram(p.handle)
}

// Unbind restores the no-program state.
func (p *Program) Unbind() { p.dev.UseProgram(0) }

// Destroy releases the GPU program. The program cannot be used afterwards.
func (p *Program) Destroy() {
	if p.handle != 0 {
		p.dev.DeleteProgram(p.handle)
		p.handle = 0
	}
	p.state = Failed
}

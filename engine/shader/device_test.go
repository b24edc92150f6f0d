package shader

import (
	"fmt"

	"github.com/hubastard/forge/engine/errs"
)

// fakeDevice records the calls of the linker and can be told to fail.
type fakeDevice struct {
	next     uint32
	stages   map[uint32]StageCode
	programs map[uint32][]uint32
	current  uint32

	compiled []StageCode
	deleted  []uint32
	detached []uint32

	failCompile StageKind
	failLink    bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{next: 1, stages: map[uint32]StageCode{}, programs: map[uint32][]uint32{}}
}

func (d *fakeDevice) handle() uint32 {
	h := d.next
	d.next++
	return h
}

func (d *fakeDevice) CompileStage(code StageCode) (uint32, error) {
	if code.Kind == d.failCompile {
		return 0, &errs.Error{
			Code: errs.ShaderCompilationFailed, Op: "compile " + code.Label,
			Err: fmt.Errorf("driver rejected stage"), Log: "0:1: error: syntax\x00",
		}
	}
	h := d.handle()
	d.stages[h] = code
	d.compiled = append(d.compiled, code)
	return h, nil
}

func (d *fakeDevice) DeleteStage(stage uint32) {
	delete(d.stages, stage)
	d.deleted = append(d.deleted, stage)
}

func (d *fakeDevice) CreateProgram() (uint32, error) {
	h := d.handle()
	d.programs[h] = nil
	return h, nil
}

func (d *fakeDevice) AttachStage(program, stage uint32) {
	d.programs[program] = append(d.programs[program], stage)
}

func (d *fakeDevice) DetachStage(program, stage uint32) {
	d.detached = append(d.detached, stage)
}

func (d *fakeDevice) LinkProgram(program uint32) error {
	if d.failLink {
		return fmt.Errorf("link: varying mismatch")
	}
	return nil
}

func (d *fakeDevice) DeleteProgram(program uint32) {
	delete(d.programs, program)
	if d.current == program {
		d.current = 0
	}
}

func (d *fakeDevice) UseProgram(program uint32) { d.current = program }

var _ Device = (*fakeDevice)(nil)

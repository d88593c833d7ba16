package vm

import "linh/bytecode"

// Frame is one saved call context: the function being executed, its
// instruction pointer, and where its locals begin on the VM's shared
// value stack. Locals are never copied into a separate per-frame array —
// the emitter assigns them dense slots on the same stack the rest of
// expression evaluation uses, so "base+slot" is all a frame needs to
// address them (the technique a register-less stack VM calls a "base
// pointer").
type Frame struct {
	proto *bytecode.FunctionProto
	code  []bytecode.Instruction
	ip    int
	base  int
}

func newModuleFrame(code []bytecode.Instruction) *Frame {
	return &Frame{code: code, base: 0}
}

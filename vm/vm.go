// Package vm executes linh/bytecode.Bytecode over a tagged-value stack:
// a fetch-decode-execute loop, a call stack of Frames sharing the same
// operand stack for locals, and an explicit try-frame stack standing in
// for host exceptions.
package vm

import (
	"fmt"
	"io"
	"os"

	"linh/bytecode"
	"linh/host"
	"linh/value"
)

// VM holds everything one execution of a Bytecode program needs. It is
// not safe for concurrent use — the spec's concurrency model is strictly
// single-threaded and synchronous.
type VM struct {
	stack     Stack
	frames    []*Frame
	tryFrames []tryFrame
	globals   map[string]value.Value
	halted    bool

	provider host.PackageProvider
	io       IO
}

// New constructs a VM wired to stdin/stdout and the given package
// provider (pass host.NullProvider{} for a program with no host
// integration).
func New(provider host.PackageProvider) *VM {
	return NewWithIO(provider, os.Stdin, os.Stdout)
}

// NewWithIO is New with explicit reader/writer, e.g. to drive "input"/
// "print" against in-memory buffers in a test.
func NewWithIO(provider host.PackageProvider, r io.Reader, w io.Writer) *VM {
	return &VM{
		globals:  make(map[string]value.Value),
		provider: provider,
		io:       newIO(r, w),
	}
}

// Run executes bc's module-level instruction stream to completion (an
// OP_HALT) or until an uncaught runtime error is reported.
func (vm *VM) Run(bc bytecode.Bytecode) error {
	vm.stack = vm.stack[:0]
	vm.frames = []*Frame{newModuleFrame(bc.Instructions)}
	vm.tryFrames = nil
	vm.halted = false

	for {
		frame := vm.frames[len(vm.frames)-1]
		if frame.ip >= len(frame.code) {
			return newRuntimeError(0, 0, "instruction pointer ran off the end of %s", frameName(frame))
		}
		ins := frame.code[frame.ip]
		frame.ip++

		if err := vm.step(frame, ins, bc); err != nil {
			if rerr, ok := err.(RuntimeError); ok {
				if vm.raise(rerr) {
					continue
				}
			}
			return err
		}
		if vm.halted {
			return nil
		}
	}
}

func frameName(f *Frame) string {
	if f.proto != nil {
		return f.proto.Name
	}
	return "<module>"
}

// step executes one instruction against frame, the top of vm.frames.
// Control-flow opcodes (CALL, RETURN, jumps, try) mutate vm.frames/ip
// directly; everything else is a straight-line stack operation.
func (vm *VM) step(frame *Frame, ins bytecode.Instruction, bc bytecode.Bytecode) error {
	switch ins.Op {
	case bytecode.OP_HALT:
		vm.halted = true
		return nil

	case bytecode.OP_CONSTANT:
		vm.stack.Push(constantValue(ins.Operand))

	case bytecode.OP_NIL:
		vm.stack.Push(value.Sol)
	case bytecode.OP_TRUE:
		vm.stack.Push(value.Bool(true))
	case bytecode.OP_FALSE:
		vm.stack.Push(value.Bool(false))
	case bytecode.OP_UNINIT:
		vm.stack.Push(value.Uninit)

	case bytecode.OP_POP:
		vm.stack.Pop()
	case bytecode.OP_DUP:
		top, ok := vm.stack.Peek()
		if !ok {
			top = value.Sol
		}
		vm.stack.Push(top)

	case bytecode.OP_ADD, bytecode.OP_SUBTRACT, bytecode.OP_MULTIPLY, bytecode.OP_DIVIDE,
		bytecode.OP_MODULO, bytecode.OP_FLOOR_DIVIDE, bytecode.OP_POWER,
		bytecode.OP_SHL, bytecode.OP_SHR, bytecode.OP_BIT_AND, bytecode.OP_BIT_OR, bytecode.OP_BIT_XOR,
		bytecode.OP_EQUAL, bytecode.OP_NOT_EQUAL, bytecode.OP_LESS, bytecode.OP_LESS_EQUAL,
		bytecode.OP_LARGER, bytecode.OP_LARGER_EQUAL:
		b, _ := vm.stack.Pop()
		a, _ := vm.stack.Pop()
		result, err := binaryArith(ins.Op, a, b, ins.Line, ins.Column)
		if err != nil {
			return err
		}
		vm.stack.Push(result)

	case bytecode.OP_NEGATE, bytecode.OP_NOT, bytecode.OP_BIT_NOT:
		v, _ := vm.stack.Pop()
		result, err := unaryArith(ins.Op, v, ins.Line, ins.Column)
		if err != nil {
			return err
		}
		vm.stack.Push(result)

	case bytecode.OP_GET_LOCAL:
		vm.stack.Push(vm.stack[frame.base+ins.Operand.Int])
	case bytecode.OP_SET_LOCAL:
		top, _ := vm.stack.Peek()
		vm.stack[frame.base+ins.Operand.Int] = top

	case bytecode.OP_GET_GLOBAL:
		name := ins.Operand.Text
		if builtinNames[name] {
			vm.stack.Push(value.Native(name))
		} else if v, ok := vm.globals[name]; ok {
			vm.stack.Push(v)
		} else if proto, ok := bc.Functions[name]; ok {
			vm.stack.Push(value.Function(proto))
		} else {
			return newRuntimeError(ins.Line, ins.Column, "undefined name '%s'", name)
		}
	case bytecode.OP_SET_GLOBAL:
		top, _ := vm.stack.Peek()
		vm.globals[ins.Operand.Text] = top
	case bytecode.OP_DEFINE_GLOBAL:
		v, _ := vm.stack.Pop()
		vm.globals[ins.Operand.Text] = v

	case bytecode.OP_JUMP:
		frame.ip = ins.Operand.Int
	case bytecode.OP_JUMP_IF_FALSE:
		v, _ := vm.stack.Pop()
		if !v.IsTruthy() {
			frame.ip = ins.Operand.Int
		}
	case bytecode.OP_LOOP:
		frame.ip = ins.Operand.Int
	case bytecode.OP_SCOPE_EXIT:
		n := ins.Operand.Int
		vm.stack = vm.stack[:len(vm.stack)-n]

	case bytecode.OP_FUNCTION:
		vm.stack.Push(value.Function(ins.Operand.Function))

	case bytecode.OP_CALL:
		return vm.call(ins.Operand.Int, ins.Line, ins.Column)
	case bytecode.OP_RETURN:
		return vm.doReturn()

	case bytecode.OP_PRINT:
		v, _ := vm.stack.Pop()
		fmt.Fprintln(vm.io.Writer, v.String())

	case bytecode.OP_BUILD_ARRAY:
		n := ins.Operand.Int
		elements := vm.stack.PopN(n)
		vm.stack.Push(value.FromArray(value.NewArray(elements)))
	case bytecode.OP_BUILD_MAP:
		n := ins.Operand.Int
		pairs := vm.stack.PopN(2 * n)
		m := value.NewMap()
		for i := 0; i < n; i++ {
			m.Set(pairs[2*i], pairs[2*i+1])
		}
		vm.stack.Push(value.FromMap(m))

	case bytecode.OP_INDEX_GET:
		index, _ := vm.stack.Pop()
		obj, _ := vm.stack.Pop()
		vm.stack.Push(indexGet(obj, index))
	case bytecode.OP_INDEX_SET:
		v, _ := vm.stack.Pop()
		index, _ := vm.stack.Pop()
		obj, _ := vm.stack.Pop()
		if err := indexSet(obj, index, v, ins.Line, ins.Column); err != nil {
			return err
		}
		vm.stack.Push(v)
	case bytecode.OP_DELETE_INDEX:
		index, _ := vm.stack.Pop()
		obj, _ := vm.stack.Pop()
		if err := deleteIndex(obj, index, ins.Line, ins.Column); err != nil {
			return err
		}

	case bytecode.OP_GET_PROPERTY:
		obj, _ := vm.stack.Pop()
		v, err := getProperty(obj, ins.Operand.Text, ins.Line, ins.Column)
		if err != nil {
			return err
		}
		vm.stack.Push(v)

	case bytecode.OP_CALL_METHOD:
		return vm.callMethod(ins.Operand, ins.Line, ins.Column)

	case bytecode.OP_PACKAGE_CONST:
		pkg, name := splitDotted(ins.Operand.Text)
		v, err := vm.provider.Const(pkg, name)
		if err != nil {
			return newRuntimeError(ins.Line, ins.Column, "%s", err.Error())
		}
		vm.stack.Push(v)

	case bytecode.OP_INTERP_CONCAT:
		n := ins.Operand.Int
		parts := vm.stack.PopN(n)
		var text string
		for _, p := range parts {
			text += p.String()
		}
		vm.stack.Push(value.String(text))

	case bytecode.OP_TRY_PUSH:
		vm.tryFrames = append(vm.tryFrames, newTryFrame(ins.Operand.Try, len(vm.frames)-1, len(vm.stack)))
	case bytecode.OP_TRY_POP:
		vm.tryFrames = vm.tryFrames[:len(vm.tryFrames)-1]
	case bytecode.OP_THROW:
		v, _ := vm.stack.Pop()
		return newRuntimeError(ins.Line, ins.Column, "%s", v.String())

	default:
		return newRuntimeError(ins.Line, ins.Column, "unimplemented opcode %s", ins.Op)
	}
	return nil
}

func constantValue(op bytecode.Operand) value.Value {
	switch op.Kind {
	case bytecode.OperandInt:
		return value.Int(int64(op.Int))
	case bytecode.OperandUint:
		return value.Uint(op.Uint)
	case bytecode.OperandFloat:
		return value.Float(op.Float)
	case bytecode.OperandText:
		return value.String(op.Text)
	default:
		return value.Sol
	}
}

func splitDotted(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// call implements OP_CALL: the callee sits argc slots below the top of
// the stack, untouched by this function for the user-function path (it
// becomes the new frame's "slot -1", reclaimed only on return).
func (vm *VM) call(argc int, line int32, column int) error {
	calleeIdx := len(vm.stack) - argc - 1
	if calleeIdx < 0 {
		return newRuntimeError(line, column, "call stack underflow")
	}
	callee := vm.stack[calleeIdx]

	switch callee.Kind {
	case value.KindFunction:
		proto := callee.Func
		if proto.Arity != argc {
			return newRuntimeError(line, column, "'%s' expects %d argument(s), got %d", proto.Name, proto.Arity, argc)
		}
		vm.frames = append(vm.frames, &Frame{proto: proto, code: proto.Code, base: calleeIdx + 1})
		return nil
	case value.KindNative:
		args := vm.stack.PopN(argc)
		vm.stack.Pop() // the native sentinel itself
		result, err := callBuiltin(callee.Str, args, vm.io, line, column)
		if err != nil {
			return err
		}
		vm.stack.Push(result)
		return nil
	default:
		return newRuntimeError(line, column, "cannot call a %s value", callee.Kind)
	}
}

// doReturn implements OP_RETURN: the value just computed becomes the
// call's result, and the callee's locals (and the callee value itself,
// living one slot below frame.base) are dropped from the shared stack.
func (vm *VM) doReturn() error {
	result, ok := vm.stack.Peek()
	if !ok {
		result = value.Sol
	} else {
		vm.stack.Pop()
	}
	frame := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.stack = vm.stack[:frame.base-1]
	vm.stack.Push(result)
	return nil
}

// callMethod implements OP_CALL_METHOD's two shapes (see compiler.
// VisitMethodCall): Bool true is a host-package call with no receiver on
// the stack; Bool false is a container method with the receiver pushed
// beneath its arguments.
func (vm *VM) callMethod(op bytecode.Operand, line int32, column int) error {
	argc := op.Int
	if op.Bool {
		args := vm.stack.PopN(argc)
		pkg, method := splitDotted(op.Text)
		result, err := vm.provider.Call(pkg, method, args)
		if err != nil {
			return newRuntimeError(line, column, "%s", err.Error())
		}
		vm.stack.Push(result)
		return nil
	}
	args := vm.stack.PopN(argc)
	receiver, _ := vm.stack.Pop()
	result, err := callContainerMethod(receiver, op.Text, args, line, column)
	if err != nil {
		return err
	}
	vm.stack.Push(result)
	return nil
}

// raise offers a runtime error to the nearest active try-frame, unwinding
// the call stack and operand stack to where TRY_PUSH ran. It reports
// whether some try-frame handled it (true) or the error must propagate
// out of Run (false).
func (vm *VM) raise(err RuntimeError) bool {
	for len(vm.tryFrames) > 0 {
		tf := vm.tryFrames[len(vm.tryFrames)-1]
		vm.tryFrames = vm.tryFrames[:len(vm.tryFrames)-1]

		vm.frames = vm.frames[:tf.frameIndex+1]
		vm.stack = vm.stack[:tf.stackBase]

		if len(tf.catchTargets) == 0 {
			// A try with only "finally" doesn't catch; keep unwinding to
			// the next enclosing try-frame without running this one's
			// finally on the error path.
			continue
		}
		vm.stack.Push(value.String(err.Diagnostic.Message))
		vm.frames[len(vm.frames)-1].ip = tf.catchTargets[0]
		return true
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return false
}

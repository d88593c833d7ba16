// Package bytecode defines the instruction set the compiler emits and the
// VM executes. Unlike a byte-packed instruction stream, instructions here
// are a flat, typed slice: operands that need to carry text, floats,
// booleans, or multi-field try-frame descriptors do so directly, with no
// width-encoding tax and no little/big-endian concerns.
package bytecode

import "fmt"

// Opcode identifies one VM instruction.
type Opcode byte

const (
	OP_CONSTANT Opcode = iota
	OP_POP
	OP_DUP

	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_MODULO
	OP_FLOOR_DIVIDE
	OP_POWER
	OP_NEGATE

	OP_SHL
	OP_SHR
	OP_BIT_AND
	OP_BIT_OR
	OP_BIT_XOR
	OP_BIT_NOT

	OP_NOT
	OP_EQUAL
	OP_NOT_EQUAL
	OP_LESS
	OP_LESS_EQUAL
	OP_LARGER
	OP_LARGER_EQUAL

	OP_GET_LOCAL
	OP_SET_LOCAL
	OP_GET_GLOBAL
	OP_SET_GLOBAL
	OP_DEFINE_GLOBAL

	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_LOOP
	OP_SCOPE_EXIT

	OP_CALL
	OP_RETURN
	OP_FUNCTION

	OP_PRINT
	OP_BUILD_ARRAY
	OP_BUILD_MAP
	OP_INDEX_GET
	OP_INDEX_SET
	OP_DELETE_INDEX

	OP_GET_PROPERTY
	OP_CALL_METHOD
	OP_PACKAGE_CONST

	OP_INTERP_CONCAT

	OP_TRY_PUSH
	OP_TRY_POP
	OP_THROW

	OP_NIL
	OP_TRUE
	OP_FALSE
	OP_UNINIT

	OP_HALT
)

var opcodeNames = map[Opcode]string{
	OP_CONSTANT:      "OP_CONSTANT",
	OP_POP:           "OP_POP",
	OP_DUP:           "OP_DUP",
	OP_ADD:           "OP_ADD",
	OP_SUBTRACT:      "OP_SUBTRACT",
	OP_MULTIPLY:      "OP_MULTIPLY",
	OP_DIVIDE:        "OP_DIVIDE",
	OP_MODULO:        "OP_MODULO",
	OP_FLOOR_DIVIDE:  "OP_FLOOR_DIVIDE",
	OP_POWER:         "OP_POWER",
	OP_NEGATE:        "OP_NEGATE",
	OP_SHL:           "OP_SHL",
	OP_SHR:           "OP_SHR",
	OP_BIT_AND:       "OP_BIT_AND",
	OP_BIT_OR:        "OP_BIT_OR",
	OP_BIT_XOR:       "OP_BIT_XOR",
	OP_BIT_NOT:       "OP_BIT_NOT",
	OP_NOT:           "OP_NOT",
	OP_EQUAL:         "OP_EQUAL",
	OP_NOT_EQUAL:     "OP_NOT_EQUAL",
	OP_LESS:          "OP_LESS",
	OP_LESS_EQUAL:    "OP_LESS_EQUAL",
	OP_LARGER:        "OP_LARGER",
	OP_LARGER_EQUAL:  "OP_LARGER_EQUAL",
	OP_GET_LOCAL:     "OP_GET_LOCAL",
	OP_SET_LOCAL:     "OP_SET_LOCAL",
	OP_GET_GLOBAL:    "OP_GET_GLOBAL",
	OP_SET_GLOBAL:    "OP_SET_GLOBAL",
	OP_DEFINE_GLOBAL: "OP_DEFINE_GLOBAL",
	OP_JUMP:          "OP_JUMP",
	OP_JUMP_IF_FALSE: "OP_JUMP_IF_FALSE",
	OP_LOOP:          "OP_LOOP",
	OP_SCOPE_EXIT:    "OP_SCOPE_EXIT",
	OP_CALL:          "OP_CALL",
	OP_RETURN:        "OP_RETURN",
	OP_FUNCTION:      "OP_FUNCTION",
	OP_PRINT:         "OP_PRINT",
	OP_BUILD_ARRAY:   "OP_BUILD_ARRAY",
	OP_BUILD_MAP:     "OP_BUILD_MAP",
	OP_INDEX_GET:     "OP_INDEX_GET",
	OP_INDEX_SET:     "OP_INDEX_SET",
	OP_DELETE_INDEX:  "OP_DELETE_INDEX",
	OP_GET_PROPERTY:  "OP_GET_PROPERTY",
	OP_CALL_METHOD:   "OP_CALL_METHOD",
	OP_PACKAGE_CONST: "OP_PACKAGE_CONST",
	OP_INTERP_CONCAT: "OP_INTERP_CONCAT",
	OP_TRY_PUSH:      "OP_TRY_PUSH",
	OP_TRY_POP:       "OP_TRY_POP",
	OP_THROW:         "OP_THROW",
	OP_NIL:           "OP_NIL",
	OP_TRUE:          "OP_TRUE",
	OP_FALSE:         "OP_FALSE",
	OP_UNINIT:        "OP_UNINIT",
	OP_HALT:          "OP_HALT",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// OperandKind tags which field of Operand is meaningful.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandInt
	OperandUint
	OperandFloat
	OperandText
	OperandBool
	OperandTry
	OperandFunction
)

// TryOperand describes a try-frame: the instruction offsets of each catch
// clause's entry point, the name each clause binds its caught value to,
// and the offset of the finally block (-1 if none).
type TryOperand struct {
	CatchTargets  []int
	CatchNames    []string
	FinallyTarget int
}

// Operand is a closed tagged union: exactly the field named by Kind is
// meaningful. A flat struct (rather than `any`) keeps instruction slices
// contiguous and keeps the emitter's jump-patching code simple: patching
// a jump only ever touches the Int field.
type Operand struct {
	Kind     OperandKind
	Int      int
	Uint     uint64
	Float    float64
	Text     string
	Bool     bool
	Try      TryOperand
	Function *FunctionProto
}

// IntOperand builds an integer-valued Operand, the common case for jump
// targets, slot indices, and constant-pool indices.
func IntOperand(n int) Operand { return Operand{Kind: OperandInt, Int: n} }

// Instruction is one bytecode op and its positioned operand.
type Instruction struct {
	Op      Opcode
	Operand Operand
	Line    int32
	Column  int
}

// FunctionProto is the compiled form of a function declaration: its
// parameter count, its own instruction stream, and the constants it
// references. It lives in this package (rather than package value) so
// that value.Value can hold a *FunctionProto without an import cycle.
type FunctionProto struct {
	Name       string
	Arity      int
	LocalCount int
	Code       []Instruction
	Constants  []any
}

// Bytecode is the top-level compiled unit produced for a source file: its
// module-level instruction stream plus every function compiled from it.
type Bytecode struct {
	Instructions []Instruction
	Constants    []any
	Functions    map[string]*FunctionProto
}

// Disassemble renders a single instruction in a human-readable form.
func Disassemble(ins Instruction) string {
	switch ins.Operand.Kind {
	case OperandNone:
		return fmt.Sprintf("%04d %-18s", ins.Line, ins.Op)
	case OperandInt:
		return fmt.Sprintf("%04d %-18s %d", ins.Line, ins.Op, ins.Operand.Int)
	case OperandUint:
		return fmt.Sprintf("%04d %-18s %d", ins.Line, ins.Op, ins.Operand.Uint)
	case OperandFloat:
		return fmt.Sprintf("%04d %-18s %g", ins.Line, ins.Op, ins.Operand.Float)
	case OperandText:
		return fmt.Sprintf("%04d %-18s %q", ins.Line, ins.Op, ins.Operand.Text)
	case OperandBool:
		return fmt.Sprintf("%04d %-18s %v", ins.Line, ins.Op, ins.Operand.Bool)
	case OperandFunction:
		return fmt.Sprintf("%04d %-18s <fn %s/%d>", ins.Line, ins.Op, ins.Operand.Function.Name, ins.Operand.Function.Arity)
	case OperandTry:
		return fmt.Sprintf("%04d %-18s catches=%v finally=%d", ins.Line, ins.Op, ins.Operand.Try.CatchNames, ins.Operand.Try.FinallyTarget)
	default:
		return fmt.Sprintf("%04d %-18s ?", ins.Line, ins.Op)
	}
}

// DisassembleAll renders an entire instruction stream, one line per
// instruction, prefixed with its index (the jump target addressing unit).
func DisassembleAll(code []Instruction) string {
	out := ""
	for i, ins := range code {
		out += fmt.Sprintf("%04d| %s\n", i, Disassemble(ins))
	}
	return out
}

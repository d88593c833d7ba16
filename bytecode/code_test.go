package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "OP_ADD", OP_ADD.String())
	assert.Equal(t, "OP_UNKNOWN(255)", Opcode(255).String())
}

func TestDisassembleEachOperandKind(t *testing.T) {
	cases := []struct {
		name string
		ins  Instruction
		want string
	}{
		{"none", Instruction{Op: OP_POP, Line: 1}, "0001 OP_POP            "},
		{"int", Instruction{Op: OP_GET_LOCAL, Operand: IntOperand(2), Line: 1}, "0001 OP_GET_LOCAL       2"},
		{"text", Instruction{Op: OP_GET_GLOBAL, Operand: Operand{Kind: OperandText, Text: "x"}, Line: 1}, `0001 OP_GET_GLOBAL      "x"`},
		{"bool", Instruction{Op: OP_CALL_METHOD, Operand: Operand{Kind: OperandBool, Bool: true}, Line: 1}, "0001 OP_CALL_METHOD     true"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Disassemble(c.ins), c.name)
	}
}

func TestDisassembleFunctionOperand(t *testing.T) {
	proto := &FunctionProto{Name: "fact", Arity: 1}
	ins := Instruction{Op: OP_FUNCTION, Operand: Operand{Kind: OperandFunction, Function: proto}, Line: 3}
	assert.Equal(t, "0003 OP_FUNCTION        <fn fact/1>", Disassemble(ins))
}

func TestDisassembleTryOperand(t *testing.T) {
	ins := Instruction{
		Op: OP_TRY_PUSH,
		Operand: Operand{
			Kind: OperandTry,
			Try:  TryOperand{CatchTargets: []int{5}, CatchNames: []string{"e"}, FinallyTarget: -1},
		},
		Line: 2,
	}
	assert.Equal(t, "0002 OP_TRY_PUSH        catches=[e] finally=-1", Disassemble(ins))
}

func TestDisassembleAllPrefixesInstructionIndex(t *testing.T) {
	code := []Instruction{
		{Op: OP_TRUE},
		{Op: OP_POP},
	}
	want := "0000| 0000 OP_TRUE           \n0001| 0000 OP_POP            \n"
	assert.Equal(t, want, DisassembleAll(code))
}

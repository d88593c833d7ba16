package compiler

import (
	"testing"

	"linh/bytecode"
	"linh/host"
	"linh/lexer"
	"linh/parser"
)

func compileSource(t *testing.T, src string) bytecode.Bytecode {
	t.Helper()
	tokens, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	statements, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) > 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}
	bc, compErrs := New(host.NullProvider{}, host.NullLoader{}).Compile(statements)
	if len(compErrs) > 0 {
		t.Fatalf("compile errors: %v", compErrs)
	}
	return bc
}

func TestCompileAppendsHalt(t *testing.T) {
	bc := compileSource(t, `print(1);`)
	last := bc.Instructions[len(bc.Instructions)-1]
	if last.Op != bytecode.OP_HALT {
		t.Errorf("expected the instruction stream to end in OP_HALT, got %s", last.Op)
	}
}

func TestConstantFoldingReducesLiteralArithmetic(t *testing.T) {
	bc := compileSource(t, `print(2 + 3);`)
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.OP_ADD {
			t.Error("constant folding should have eliminated the OP_ADD for a literal '2 + 3'")
		}
	}
	found := false
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.OP_CONSTANT && ins.Operand.Kind == bytecode.OperandInt && ins.Operand.Int == 5 {
			found = true
		}
	}
	if !found {
		t.Error("expected a folded constant 5 in the instruction stream")
	}
}

func TestConstantFoldingCanBeDisabled(t *testing.T) {
	tokens, _ := lexer.New(`print(2 + 3);`).Scan()
	statements, _ := parser.Make(tokens).Parse()
	bc, errs := NewWithOptions(host.NullProvider{}, host.NullLoader{}, Options{FoldConstants: false}).Compile(statements)
	if len(errs) > 0 {
		t.Fatalf("compile errors: %v", errs)
	}
	found := false
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.OP_ADD {
			found = true
		}
	}
	if !found {
		t.Error("expected an unfolded OP_ADD when FoldConstants is disabled")
	}
}

func TestFunctionDeclarationRegistersInFunctionTable(t *testing.T) {
	bc := compileSource(t, `func add(a, b) { return a + b; } print(add(1, 2));`)
	proto, ok := bc.Functions["add"]
	if !ok {
		t.Fatal("expected 'add' to be registered in the function table")
	}
	if proto.Arity != 2 {
		t.Errorf("expected arity 2, got %d", proto.Arity)
	}
}

func TestBlockScopedLocalsEmitScopeExit(t *testing.T) {
	bc := compileSource(t, `{ var x = 1; var y = 2; }`)
	found := false
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.OP_SCOPE_EXIT && ins.Operand.Int == 2 {
			found = true
		}
	}
	if !found {
		t.Error("expected a single OP_SCOPE_EXIT(2) closing the block's two locals")
	}
}

func TestGlobalVarEmitsDefineGlobal(t *testing.T) {
	bc := compileSource(t, `var x = 1;`)
	found := false
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.OP_DEFINE_GLOBAL && ins.Operand.Text == "x" {
			found = true
		}
	}
	if !found {
		t.Error("expected an OP_DEFINE_GLOBAL for a module-level var")
	}
}

func TestMemberAssignDesugarsToIndexSet(t *testing.T) {
	bc := compileSource(t, `var m = {}; m.a = 1;`)
	found := false
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.OP_INDEX_SET {
			found = true
		}
	}
	if !found {
		t.Error("expected 'm.a = 1' to desugar to OP_INDEX_SET")
	}
}

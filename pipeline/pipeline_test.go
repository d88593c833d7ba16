package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"linh/vm"
)

func TestRunFactorial(t *testing.T) {
	p := New()
	var out bytes.Buffer
	machine := vm.NewWithIO(p.Provider, strings.NewReader(""), &out)

	src := `func fact(n) { if (n <= 1) { return 1; } return n * fact(n - 1); } print(fact(5));`
	if _, err := p.Run(machine, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "120\n" {
		t.Errorf("got %q, want %q", out.String(), "120\n")
	}
}

func TestRunStopsAtLexError(t *testing.T) {
	p := New()
	var out bytes.Buffer
	machine := vm.NewWithIO(p.Provider, strings.NewReader(""), &out)

	result, err := p.Run(machine, `var x = "unterminated`)
	if err == nil {
		t.Fatal("expected a lex error, got nil")
	}
	if result.Statements != nil {
		t.Errorf("parse should not have run after a lex error, got statements %v", result.Statements)
	}
}

func TestRunStopsAtParseError(t *testing.T) {
	p := New()
	var out bytes.Buffer
	machine := vm.NewWithIO(p.Provider, strings.NewReader(""), &out)

	_, err := p.Run(machine, `var x = ;`)
	if err == nil {
		t.Fatal("expected a parse error, got nil")
	}
}

func TestRunStopsAtSemanticError(t *testing.T) {
	p := New()
	var out bytes.Buffer
	machine := vm.NewWithIO(p.Provider, strings.NewReader(""), &out)

	_, err := p.Run(machine, `print(undeclaredName);`)
	if err == nil {
		t.Fatal("expected a semantic error for an undeclared name, got nil")
	}
}

func TestRunReportsUncaughtRuntimeError(t *testing.T) {
	p := New()
	var out bytes.Buffer
	machine := vm.NewWithIO(p.Provider, strings.NewReader(""), &out)

	_, err := p.Run(machine, `print(1 / 0);`)
	if err == nil {
		t.Fatal("expected a runtime error for division by zero, got nil")
	}
}

package vm

import (
	"bytes"
	"strings"
	"testing"

	"linh/compiler"
	"linh/host"
	"linh/lexer"
	"linh/parser"
	"linh/semantic"
)

// run lexes, parses, analyzes, compiles, and executes src, returning
// everything printed to stdout. It fails the test on any pipeline error
// except a runtime error, which is instead returned for the caller to
// assert against (the try/catch scenario exercises one on purpose).
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	tokens, lexErr := lexer.New(src).Scan()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	statements, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) > 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}
	if semErrs := semantic.New(host.NullProvider{}).Analyze(statements); len(semErrs) > 0 {
		t.Fatalf("semantic errors: %v", semErrs)
	}
	bc, compErrs := compiler.New(host.NullProvider{}, host.NullLoader{}).Compile(statements)
	if len(compErrs) > 0 {
		t.Fatalf("compile errors: %v", compErrs)
	}
	var out bytes.Buffer
	machine := NewWithIO(host.NullProvider{}, strings.NewReader(""), &out)
	err := machine.Run(bc)
	return out.String(), err
}

func TestControlFlowAndArithmetic(t *testing.T) {
	out, err := run(t, `var s = 0; for (var i = 1; i <= 10; i = i + 1) { s = s + i; } print(s);`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if out != "55\n" {
		t.Errorf("got %q, want %q", out, "55\n")
	}
}

func TestFloorDivisionSign(t *testing.T) {
	out, err := run(t, `print(-7 # 2); print(-7 / 2); print(-7 % 2);`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	want := "-4\n-3\n-1\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestStringInterpolation(t *testing.T) {
	out, err := run(t, `var name = "Ada"; print("Hi, &{name}!");`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if out != "Hi, Ada!\n" {
		t.Errorf("got %q, want %q", out, "Hi, Ada!\n")
	}
}

func TestMapAndArrayMethods(t *testing.T) {
	out, err := run(t, `var m = {"a": 1}; m.a = 2; print(m.keys()); print(m["a"]);`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	want := "[\"a\"]\n2\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestTryCatchDivisionByZero(t *testing.T) {
	out, err := run(t, `try { var x = 1 / 0; print(x); } catch (e) { print(e); }`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if !strings.Contains(out, "division by zero") {
		t.Errorf("got %q, want a line mentioning division by zero", out)
	}
}

func TestRecursiveFactorial(t *testing.T) {
	out, err := run(t, `func fact(n) { if (n <= 1) { return 1; } return n * fact(n - 1); } print(fact(5));`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if out != "120\n" {
		t.Errorf("got %q, want %q", out, "120\n")
	}
}

func TestContainerAliasing(t *testing.T) {
	out, err := run(t, `let a = [1,2,3]; let b = a; b.append(4); print(len(a));`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if out != "4\n" {
		t.Errorf("got %q, want %q", out, "4\n")
	}
}

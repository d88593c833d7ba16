package semantic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"linh/host"
	"linh/lexer"
	"linh/parser"
)

func analyze(t *testing.T, src string) []error {
	t.Helper()
	tokens, err := lexer.New(src).Scan()
	require.NoError(t, err, "lex error")
	statements, parseErrs := parser.Make(tokens).Parse()
	require.Empty(t, parseErrs, "parse errors")
	return New(host.NullProvider{}).Analyze(statements)
}

func TestUndefinedNameIsReported(t *testing.T) {
	errs := analyze(t, `print(missing);`)
	require.NotEmpty(t, errs, "expected an error for an undefined name")
}

func TestBuiltinNamesNeedNoDeclaration(t *testing.T) {
	errs := analyze(t, `print(len("abc")); print(pow(2, 3));`)
	require.Empty(t, errs, "built-ins should not be flagged as undefined")
}

func TestAssignToConstIsReported(t *testing.T) {
	errs := analyze(t, `const x = 1; x = 2;`)
	require.NotEmpty(t, errs, "expected an error for assigning to a const")
}

func TestReturnOutsideFunctionIsReported(t *testing.T) {
	errs := analyze(t, `return 1;`)
	require.NotEmpty(t, errs, "expected an error for 'return' outside a function")
}

func TestBreakOutsideLoopOrSwitchIsReported(t *testing.T) {
	errs := analyze(t, `break;`)
	require.NotEmpty(t, errs, "expected an error for 'break' outside a loop or switch")
}

func TestBreakInsideLoopIsFine(t *testing.T) {
	errs := analyze(t, `while (true) { break; }`)
	require.Empty(t, errs)
}

func TestReturnInsideFunctionIsFine(t *testing.T) {
	errs := analyze(t, `func f() { return 1; }`)
	require.Empty(t, errs)
}

func TestDeleteRequiresSubscriptTarget(t *testing.T) {
	errs := analyze(t, `var x = 1; delete x;`)
	require.NotEmpty(t, errs, "expected an error requiring a subscript target for 'delete'")
}

func TestDeleteOnSubscriptIsFine(t *testing.T) {
	errs := analyze(t, `var m = {"a": 1}; delete m["a"];`)
	require.Empty(t, errs)
}

package compiler

import "linh/diagnostic"

// Error is a compile-time diagnostic: a return outside a function, a
// break or continue with no enclosing loop, an unreachable extra catch
// clause, a failed import, and so on. The
// semantic analyzer is expected to catch most of these first; the
// compiler's own checks are a second line of defense for anything that
// only becomes visible once code generation resolves slots and jumps.
type Error struct {
	diagnostic.Diagnostic
}

func newError(line int32, column int, message string) Error {
	return Error{diagnostic.New(diagnostic.Bytecode, line, column, message)}
}

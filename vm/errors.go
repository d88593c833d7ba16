package vm

import (
	"fmt"

	"linh/diagnostic"
)

// RuntimeError is a VM-stage diagnostic: division by zero, a type
// mismatch in an arithmetic/bitwise op, a bad argument count, an unknown
// user function, and so on. Raised errors are first offered to the
// nearest active try-frame before they propagate out of Run.
type RuntimeError struct {
	diagnostic.Diagnostic
}

func newRuntimeError(line int32, column int, format string, args ...any) RuntimeError {
	return RuntimeError{diagnostic.New(diagnostic.Runtime, line, column, fmt.Sprintf(format, args...))}
}

package semantic

import "linh/diagnostic"

// Error is a semantic-analysis diagnostic.
type Error struct {
	diagnostic.Diagnostic
}

func newError(line int32, column int, message string) Error {
	return Error{diagnostic.New(diagnostic.Semantic, line, column, message)}
}

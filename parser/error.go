package parser

import "linh/diagnostic"

// SyntaxError is a parser-stage diagnostic.
type SyntaxError struct {
	diagnostic.Diagnostic
}

func CreateSyntaxError(line int32, column int, message string) SyntaxError {
	return SyntaxError{diagnostic.New(diagnostic.Parser, line, column, message)}
}

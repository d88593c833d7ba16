// Package diagnostic defines the single line format every stage of the
// pipeline (lexer, parser, semantic analyzer, VM) reports problems in.
package diagnostic

import "fmt"

// Stage names a pipeline phase that can report a Diagnostic.
type Stage string

const (
	Lexer    Stage = "Lexer"
	Parser   Stage = "Parser"
	Semantic Stage = "Semantic"
	Bytecode Stage = "Bytecode"
	Runtime  Stage = "Runtime"
)

// Diagnostic is a single positioned error report.
//
// Its Error() rendering is the wire format every stage-specific error type
// embeds: "[Line L , Col C] <Stage>Error : <message>".
type Diagnostic struct {
	Stage   Stage
	Line    int32
	Column  int
	Message string
}

func New(stage Stage, line int32, column int, message string) Diagnostic {
	return Diagnostic{Stage: stage, Line: line, Column: column, Message: message}
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("[Line %d , Col %d] %sError : %s", d.Line, d.Column, d.Stage, d.Message)
}

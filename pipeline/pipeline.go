// Package pipeline wires the five stages named in spec.md §6 — lex,
// parse, analyze, emit, execute — into the single sequence the CLI (and
// anything else embedding the language) drives a source file through.
// Each stage's error type is returned as-is rather than wrapped, so a
// caller can still type-switch on diagnostic.Diagnostic (the lexer's)/
// parser.SyntaxError/semantic.Error/compiler.Error/vm.RuntimeError the
// way cmd_repl_compiled.go does.
package pipeline

import (
	"linh/ast"
	"linh/bytecode"
	"linh/compiler"
	"linh/host"
	"linh/lexer"
	"linh/parser"
	"linh/semantic"
	"linh/token"
	"linh/vm"
)

// Pipeline holds the host collaborators every stage from analyze onward
// needs: a package provider for math/time-style host packages and a
// module loader for "import" statements. Both default to a no-op that
// rejects every lookup when the embedder has nothing to offer.
type Pipeline struct {
	Provider host.PackageProvider
	Loader   host.ModuleLoader
}

// New returns a Pipeline with no host integration — every package
// lookup and import fails. Set Provider/Loader on the result to wire in
// real host packages or a module source reader.
func New() *Pipeline {
	return &Pipeline{Provider: host.NullProvider{}, Loader: host.NullLoader{}}
}

// Lex implements spec.md's lex(text) -> tokens.
func (p *Pipeline) Lex(source string) ([]token.Token, error) {
	return lexer.New(source).Scan()
}

// Parse implements parse(tokens) -> ast, had_error. The bool return
// mirrors spec.md's "had_error" flag; the statements are still whatever
// the parser managed to recover, same as a one-shot CLI run discards
// them on error.
func (p *Pipeline) Parse(tokens []token.Token) ([]ast.Stmt, bool, []error) {
	statements, errs := parser.Make(tokens).Parse()
	return statements, len(errs) > 0, errs
}

// Analyze implements analyze(ast, reset_state) -> errors. A fresh
// semantic.Analyzer is constructed per call, which is what "reset_state"
// amounts to here — the analyzer carries no state across invocations.
func (p *Pipeline) Analyze(statements []ast.Stmt) []error {
	return semantic.New(p.Provider).Analyze(statements)
}

// Emit implements emit(ast) -> instruction_list, function_table.
func (p *Pipeline) Emit(statements []ast.Stmt) (bytecode.Bytecode, []error) {
	return compiler.New(p.Provider, p.Loader).Compile(statements)
}

// Execute implements execute(vm, instruction_list): run already-emitted
// bytecode to completion on the given VM.
func (p *Pipeline) Execute(machine *vm.VM, bc bytecode.Bytecode) error {
	return machine.Run(bc)
}

// Result bundles everything a full Run produced, so a caller that wants
// to disassemble or inspect intermediate stages (as the "-trace" CLI
// flag does) doesn't have to re-run earlier stages.
type Result struct {
	Tokens     []token.Token
	Statements []ast.Stmt
	Bytecode   bytecode.Bytecode
}

// Run drives source through every stage up to and including execution
// on machine, stopping at the first stage that reports an error.
func (p *Pipeline) Run(machine *vm.VM, source string) (Result, error) {
	var result Result

	tokens, err := p.Lex(source)
	if err != nil {
		return result, err
	}
	result.Tokens = tokens

	statements, hadError, parseErrs := p.Parse(tokens)
	result.Statements = statements
	if hadError {
		return result, parseErrs[0]
	}

	if semErrs := p.Analyze(statements); len(semErrs) > 0 {
		return result, semErrs[0]
	}

	bc, compErrs := p.Emit(statements)
	result.Bytecode = bc
	if len(compErrs) > 0 {
		return result, compErrs[0]
	}

	return result, p.Execute(machine, bc)
}

// Package compiler walks a checked AST and emits linh/bytecode
// instructions for the stack VM. It is grounded on the same Local/
// scope-depth technique as a classic single-pass bytecode compiler:
// a block's locals are just stack slots addressed by position, globals
// are resolved by name at run time, and forward jumps are emitted as
// placeholders and back-patched once their target is known.
//
// Package-qualified access ("math.PI", "math.sqrt(x)") and the
// Member-to-PackageConst resolution the semantic analyzer deliberately
// does not perform are both done here, at code-generation time, once the
// compiler knows which names were brought in by an "import" statement.
package compiler

import (
	"fmt"

	"linh/ast"
	"linh/bytecode"
	"linh/host"
)

// Local records one stack-slot-resident variable of the function (or
// module top level) currently being compiled.
type Local struct {
	name  string
	depth int
}

// controlContext tracks the pending jumps of one break/continue target:
// a loop pushes one with isLoop true, a switch pushes one with isLoop
// false (switch accepts "break" but not "continue").
type controlContext struct {
	isLoop        bool
	breakJumps    []int
	continueJumps []int
}

// Emitter compiles one function body or module top level into a flat
// bytecode.Instruction stream. Nested function declarations are compiled
// by a fresh child Emitter (see compileFunction), so a function's locals
// never alias its enclosing scope's: this VM has no upvalues, so a
// function body only ever sees its own parameters/locals and module
// globals, never an enclosing function's locals.
type Emitter struct {
	code       []bytecode.Instruction
	locals     []Local
	scopeDepth int
	maxLocals  int
	isFunction bool

	controlStack []*controlContext

	provider        host.PackageProvider
	loader          host.ModuleLoader
	importedAliases map[string]bool
	namePrefix      string

	functions map[string]*bytecode.FunctionProto

	options Options
	errors  []error
}

// New constructs a module-level Emitter using DefaultOptions. provider
// resolves package-qualified references; loader resolves "import" paths.
// Pass host.NullProvider{}/host.NullLoader{} when no host integration
// exists.
func New(provider host.PackageProvider, loader host.ModuleLoader) *Emitter {
	return NewWithOptions(provider, loader, DefaultOptions)
}

// NewWithOptions is New with explicit Options, e.g. to disable constant
// folding for a debug build that wants a 1:1 source-to-bytecode mapping.
func NewWithOptions(provider host.PackageProvider, loader host.ModuleLoader, options Options) *Emitter {
	return &Emitter{
		provider:        provider,
		loader:          loader,
		importedAliases: make(map[string]bool),
		functions:       make(map[string]*bytecode.FunctionProto),
		options:         options,
	}
}

// newFunctionCompiler builds the child Emitter used to compile one
// function body, sharing the parent's host integration, import aliases,
// and collected function table, but starting with empty locals of its own.
func newFunctionCompiler(parent *Emitter) *Emitter {
	return &Emitter{
		isFunction:      true,
		provider:        parent.provider,
		loader:          parent.loader,
		importedAliases: parent.importedAliases,
		namePrefix:      parent.namePrefix,
		functions:       parent.functions,
		options:         parent.options,
	}
}

// Compile compiles an entire checked program into a module Bytecode: its
// top-level instruction stream plus every function it declared.
func (c *Emitter) Compile(statements []ast.Stmt) (bytecode.Bytecode, []error) {
	for _, stmt := range statements {
		stmt.Accept(c)
	}
	if len(c.errors) > 0 {
		return bytecode.Bytecode{}, c.errors
	}
	c.emit(bytecode.OP_HALT, bytecode.Operand{}, 0, 0)
	return bytecode.Bytecode{Instructions: c.code, Functions: c.functions}, nil
}

func (c *Emitter) fail(line int32, column int, format string, args ...any) {
	c.errors = append(c.errors, newError(line, column, fmt.Sprintf(format, args...)))
}

// --- low-level emission ---

func (c *Emitter) emit(op bytecode.Opcode, operand bytecode.Operand, line int32, column int) int {
	c.code = append(c.code, bytecode.Instruction{Op: op, Operand: operand, Line: line, Column: column})
	return len(c.code) - 1
}

func (c *Emitter) emitPlaceholderJump(op bytecode.Opcode, line int32, column int) int {
	return c.emit(op, bytecode.IntOperand(-1), line, column)
}

func (c *Emitter) patchJump(idx int) {
	c.code[idx].Operand = bytecode.IntOperand(len(c.code))
}

func (c *Emitter) patchJumpTo(idx int, target int) {
	c.code[idx].Operand = bytecode.IntOperand(target)
}

func (c *Emitter) here() int { return len(c.code) }

// --- scopes and locals ---

func (c *Emitter) beginScope() { c.scopeDepth++ }

// endScope pops every local declared at the scope being closed, emitting
// a single OP_SCOPE_EXIT so the VM drops them from the value stack in one
// step rather than one OP_POP per local.
func (c *Emitter) endScope(line int32, column int) {
	c.scopeDepth--
	count := 0
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.locals = c.locals[:len(c.locals)-1]
		count++
	}
	if count > 0 {
		c.emit(bytecode.OP_SCOPE_EXIT, bytecode.IntOperand(count), line, column)
	}
}

func (c *Emitter) declareLocal(name string) int {
	slot := len(c.locals)
	c.locals = append(c.locals, Local{name: name, depth: c.scopeDepth})
	if len(c.locals) > c.maxLocals {
		c.maxLocals = len(c.locals)
	}
	return slot
}

// resolveLocal searches innermost-to-outermost among the locals declared
// in the current function (or module top level), honoring shadowing.
func (c *Emitter) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

func (c *Emitter) globalName(name string) string {
	return c.namePrefix + name
}

// isGlobalScope reports whether a VarStmt/FuncStmt at the compiler's
// current position binds a module global rather than a stack-slot local:
// true only at the outermost scope of a module (never inside a function,
// even at that function's own outermost scope).
func (c *Emitter) isGlobalScope() bool {
	return !c.isFunction && c.scopeDepth == 0
}

// --- break/continue targets ---

func (c *Emitter) pushControl(isLoop bool) *controlContext {
	ctx := &controlContext{isLoop: isLoop}
	c.controlStack = append(c.controlStack, ctx)
	return ctx
}

func (c *Emitter) popControl() *controlContext {
	ctx := c.controlStack[len(c.controlStack)-1]
	c.controlStack = c.controlStack[:len(c.controlStack)-1]
	return ctx
}

func (c *Emitter) patchJumps(idxs []int, target int) {
	for _, idx := range idxs {
		c.patchJumpTo(idx, target)
	}
}

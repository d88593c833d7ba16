package compiler

import (
	"linh/ast"
	"linh/bytecode"
	"linh/lexer"
	"linh/parser"
	"linh/semantic"
)

func (c *Emitter) compileStmt(stmt ast.Stmt) {
	stmt.Accept(c)
}

func (c *Emitter) compileBlock(statements []ast.Stmt, line int32, column int) {
	c.beginScope()
	for _, stmt := range statements {
		c.compileStmt(stmt)
	}
	c.endScope(line, column)
}

func (c *Emitter) VisitExpressionStmt(s ast.ExpressionStmt) any {
	s.Expression.Accept(c)
	c.emit(bytecode.OP_POP, bytecode.Operand{}, 0, 0)
	return nil
}

func (c *Emitter) VisitPrintStmt(s ast.PrintStmt) any {
	for _, expr := range s.Expressions {
		expr.Accept(c)
		c.emit(bytecode.OP_PRINT, bytecode.Operand{}, 0, 0)
	}
	return nil
}

// zeroValueLiteral synthesizes the default-initializer expression for a
// declared type, used when a "var"/"let"/etc. declaration gives a type
// but no initializer.
func zeroValueLiteral(t *ast.Type) ast.Expression {
	if t == nil || t.IsSol() {
		return ast.Literal{Value: nil}
	}
	switch t.Kind {
	case ast.TypeSizedInt:
		if t.Signed {
			return ast.Literal{Value: int64(0)}
		}
		return ast.Literal{Value: uint64(0)}
	case ast.TypeSizedFloat:
		return ast.Literal{Value: float64(0)}
	case ast.TypeStrLimit:
		return ast.Literal{Value: ""}
	case ast.TypeArray:
		return ast.ArrayLiteral{}
	case ast.TypeMap:
		return ast.MapLiteral{}
	case ast.TypeBase:
		switch t.Base {
		case ast.BaseInt, ast.BaseUint:
			return ast.Literal{Value: int64(0)}
		case ast.BaseFloat:
			return ast.Literal{Value: float64(0)}
		case ast.BaseStr:
			return ast.Literal{Value: ""}
		case ast.BaseBool:
			return ast.Literal{Value: false}
		}
	}
	return ast.Literal{Value: nil}
}

func (c *Emitter) VisitVarStmt(s ast.VarStmt) any {
	initializer := s.Initializer
	if initializer == nil {
		initializer = zeroValueLiteral(s.Type)
	}
	initializer.Accept(c)

	if c.isGlobalScope() {
		c.emit(bytecode.OP_DEFINE_GLOBAL, bytecode.Operand{Kind: bytecode.OperandText, Text: c.globalName(s.Name.Lexeme)}, s.Name.Line, s.Name.Column)
	} else {
		c.declareLocal(s.Name.Lexeme)
	}
	return nil
}

func (c *Emitter) VisitBlockStmt(s ast.BlockStmt) any {
	c.compileBlock(s.Statements, 0, 0)
	return nil
}

func (c *Emitter) VisitIfStmt(s ast.IfStmt) any {
	// A condition that folds to a constant makes one branch unreachable:
	// compile only the live one rather than emitting a jump that will
	// never run the other way.
	if lit, ok := c.foldConstLiteral(s.Condition); ok && c.options.FoldConstants {
		if literalTruthy(lit.Value) {
			c.compileStmt(s.ThenBranch)
		} else if s.ElseBranch != nil {
			c.compileStmt(s.ElseBranch)
		}
		return nil
	}

	s.Condition.Accept(c)
	thenJump := c.emitPlaceholderJump(bytecode.OP_JUMP_IF_FALSE, 0, 0)
	c.compileStmt(s.ThenBranch)

	if s.ElseBranch != nil {
		elseJump := c.emitPlaceholderJump(bytecode.OP_JUMP, 0, 0)
		c.patchJump(thenJump)
		c.compileStmt(s.ElseBranch)
		c.patchJump(elseJump)
	} else {
		c.patchJump(thenJump)
	}
	return nil
}

func (c *Emitter) VisitWhileStmt(s ast.WhileStmt) any {
	// "while false { ... }" never runs; drop the body instead of emitting
	// a loop whose condition test always exits on the first check.
	if lit, ok := c.foldConstLiteral(s.Condition); ok && c.options.FoldConstants && !literalTruthy(lit.Value) {
		return nil
	}

	loopStart := c.here()
	s.Condition.Accept(c)
	exitJump := c.emitPlaceholderJump(bytecode.OP_JUMP_IF_FALSE, 0, 0)

	ctx := c.pushControl(true)
	c.compileStmt(s.Body)
	c.popControl()

	c.patchJumps(ctx.continueJumps, loopStart)
	c.emit(bytecode.OP_LOOP, bytecode.IntOperand(loopStart), 0, 0)
	c.patchJump(exitJump)
	c.patchJumps(ctx.breakJumps, c.here())
	return nil
}

func (c *Emitter) VisitDoWhileStmt(s ast.DoWhileStmt) any {
	bodyStart := c.here()

	ctx := c.pushControl(true)
	c.compileStmt(s.Body)
	c.popControl()

	conditionPos := c.here()
	c.patchJumps(ctx.continueJumps, conditionPos)
	s.Condition.Accept(c)
	exitJump := c.emitPlaceholderJump(bytecode.OP_JUMP_IF_FALSE, 0, 0)
	c.emit(bytecode.OP_LOOP, bytecode.IntOperand(bodyStart), 0, 0)
	c.patchJump(exitJump)
	c.patchJumps(ctx.breakJumps, c.here())
	return nil
}

// compileFunction compiles a function declaration's body into its own
// FunctionProto using a fresh child Emitter, so the function's locals
// start clean at parameter slot 0.
func (c *Emitter) compileFunction(s ast.FuncStmt) *bytecode.FunctionProto {
	fc := newFunctionCompiler(c)
	for _, p := range s.Params {
		fc.declareLocal(p.Name.Lexeme)
	}
	for _, stmt := range s.Body {
		fc.compileStmt(stmt)
	}
	if len(fc.code) == 0 || fc.code[len(fc.code)-1].Op != bytecode.OP_RETURN {
		fc.emit(bytecode.OP_NIL, bytecode.Operand{}, 0, 0)
		fc.emit(bytecode.OP_RETURN, bytecode.Operand{}, 0, 0)
	}
	c.errors = append(c.errors, fc.errors...)

	proto := &bytecode.FunctionProto{
		Name:       s.Name.Lexeme,
		Arity:      len(s.Params),
		LocalCount: fc.maxLocals,
		Code:       fc.code,
	}
	return proto
}

func (c *Emitter) VisitFuncStmt(s ast.FuncStmt) any {
	proto := c.compileFunction(s)
	qualifiedName := c.globalName(s.Name.Lexeme)
	proto.Name = qualifiedName
	c.functions[qualifiedName] = proto

	c.emit(bytecode.OP_FUNCTION, bytecode.Operand{Kind: bytecode.OperandFunction, Function: proto}, s.Name.Line, s.Name.Column)
	if c.isGlobalScope() {
		c.emit(bytecode.OP_DEFINE_GLOBAL, bytecode.Operand{Kind: bytecode.OperandText, Text: qualifiedName}, s.Name.Line, s.Name.Column)
	} else {
		c.declareLocal(s.Name.Lexeme)
	}
	return nil
}

func (c *Emitter) VisitReturnStmt(s ast.ReturnStmt) any {
	if !c.isFunction {
		c.fail(s.Keyword.Line, s.Keyword.Column, "'return' outside of a function")
		return nil
	}
	if s.Value != nil {
		s.Value.Accept(c)
	} else {
		c.emit(bytecode.OP_NIL, bytecode.Operand{}, s.Keyword.Line, s.Keyword.Column)
	}
	c.emit(bytecode.OP_RETURN, bytecode.Operand{}, s.Keyword.Line, s.Keyword.Column)
	return nil
}

func (c *Emitter) VisitBreakStmt(s ast.BreakStmt) any {
	if len(c.controlStack) == 0 {
		c.fail(s.Keyword.Line, s.Keyword.Column, "'break' outside of a loop or switch")
		return nil
	}
	ctx := c.controlStack[len(c.controlStack)-1]
	idx := c.emitPlaceholderJump(bytecode.OP_JUMP, s.Keyword.Line, s.Keyword.Column)
	ctx.breakJumps = append(ctx.breakJumps, idx)
	return nil
}

func (c *Emitter) VisitContinueStmt(s ast.ContinueStmt) any {
	for i := len(c.controlStack) - 1; i >= 0; i-- {
		if c.controlStack[i].isLoop {
			idx := c.emitPlaceholderJump(bytecode.OP_JUMP, s.Keyword.Line, s.Keyword.Column)
			c.controlStack[i].continueJumps = append(c.controlStack[i].continueJumps, idx)
			return nil
		}
	}
	c.fail(s.Keyword.Line, s.Keyword.Column, "'continue' outside of a loop")
	return nil
}

// VisitSwitchStmt compiles a C-style fall-through switch: every case's
// test is emitted first as a chain of "dup discriminant, compare, jump to
// body-or-next-test", then every body is emitted back to back in source
// order with no jump between them, so omitting "break" falls into the
// next case body exactly as the bytecode's layout already does.
func (c *Emitter) VisitSwitchStmt(s ast.SwitchStmt) any {
	s.Discriminant.Accept(c)

	type pending struct {
		bodyJump int
		caseIdx  int
	}
	var bodyJumps []pending
	defaultIdx := -1

	for i, cs := range s.Cases {
		if cs.Value == nil {
			defaultIdx = i
			continue
		}
		c.emit(bytecode.OP_DUP, bytecode.Operand{}, 0, 0)
		cs.Value.Accept(c)
		c.emit(bytecode.OP_EQUAL, bytecode.Operand{}, 0, 0)
		notEqualJump := c.emitPlaceholderJump(bytecode.OP_JUMP_IF_FALSE, 0, 0)
		c.emit(bytecode.OP_POP, bytecode.Operand{}, 0, 0)
		bodyJump := c.emitPlaceholderJump(bytecode.OP_JUMP, 0, 0)
		bodyJumps = append(bodyJumps, pending{bodyJump: bodyJump, caseIdx: i})
		c.patchJump(notEqualJump)
	}

	c.emit(bytecode.OP_POP, bytecode.Operand{}, 0, 0)
	var noMatchJump int
	if defaultIdx >= 0 {
		noMatchJump = c.emitPlaceholderJump(bytecode.OP_JUMP, 0, 0)
	} else {
		noMatchJump = c.emitPlaceholderJump(bytecode.OP_JUMP, 0, 0)
	}

	ctx := c.pushControl(false)
	caseStart := make(map[int]int, len(s.Cases))
	for i, cs := range s.Cases {
		caseStart[i] = c.here()
		c.compileBlock(cs.Body, 0, 0)
	}
	c.popControl()

	for _, bj := range bodyJumps {
		c.patchJumpTo(bj.bodyJump, caseStart[bj.caseIdx])
	}
	if defaultIdx >= 0 {
		c.patchJumpTo(noMatchJump, caseStart[defaultIdx])
	} else {
		c.patchJump(noMatchJump)
	}
	c.patchJumps(ctx.breakJumps, c.here())
	return nil
}

func (c *Emitter) VisitDeleteStmt(s ast.DeleteStmt) any {
	sub, ok := s.Target.(ast.Subscript)
	if !ok {
		c.fail(s.Keyword.Line, s.Keyword.Column, "'delete' requires a subscript target")
		return nil
	}
	sub.Object.Accept(c)
	sub.Index.Accept(c)
	c.emit(bytecode.OP_DELETE_INDEX, bytecode.Operand{}, s.Keyword.Line, s.Keyword.Column)
	return nil
}

func (c *Emitter) VisitThrowStmt(s ast.ThrowStmt) any {
	s.Value.Accept(c)
	c.emit(bytecode.OP_THROW, bytecode.Operand{}, s.Keyword.Line, s.Keyword.Column)
	return nil
}

// VisitTryStmt compiles try/catch/finally. Only the first catch clause is
// reachable: the grammar allows a chain of "catch (name) { ... }" clauses
// for source compatibility with a historical dialect, but the language
// has no typed exceptions to discriminate between them, so a second
// clause could never run and is reported rather than compiled.
func (c *Emitter) VisitTryStmt(s ast.TryStmt) any {
	tryPushIdx := c.emit(bytecode.OP_TRY_PUSH, bytecode.Operand{Kind: bytecode.OperandTry}, s.Keyword.Line, s.Keyword.Column)

	c.compileBlock(s.Body, s.Keyword.Line, s.Keyword.Column)
	c.emit(bytecode.OP_TRY_POP, bytecode.Operand{}, 0, 0)
	jumpPastCatch := c.emitPlaceholderJump(bytecode.OP_JUMP, 0, 0)

	catchTargets := []int{}
	catchNames := []string{}
	if len(s.Catches) > 0 {
		cc := s.Catches[0]
		for _, extra := range s.Catches[1:] {
			c.fail(extra.Name.Line, extra.Name.Column, "unreachable catch clause: only the first catch clause ever runs")
		}
		catchTargets = append(catchTargets, c.here())
		catchNames = append(catchNames, cc.Name.Lexeme)
		c.beginScope()
		c.declareLocal(cc.Name.Lexeme)
		for _, stmt := range cc.Body {
			c.compileStmt(stmt)
		}
		c.endScope(cc.Name.Line, cc.Name.Column)
	}
	c.patchJump(jumpPastCatch)

	finallyTarget := -1
	if s.Finally != nil {
		finallyTarget = c.here()
		c.compileBlock(s.Finally, s.Keyword.Line, s.Keyword.Column)
	}

	c.code[tryPushIdx].Operand = bytecode.Operand{
		Kind: bytecode.OperandTry,
		Try: bytecode.TryOperand{
			CatchTargets:  catchTargets,
			CatchNames:    catchNames,
			FinallyTarget: finallyTarget,
		},
	}
	return nil
}

// VisitImportStmt recursively lexes, parses, and analyzes the imported
// module's source, then compiles it into this same instruction stream
// with every top-level global/function name mangled under "alias$".
// There is no per-module isolation beyond that name-mangling, and a path
// imported more than once is recompiled each time; both are acceptable
// for a single-file-module language without a package cache.
func (c *Emitter) VisitImportStmt(s ast.ImportStmt) any {
	if !c.isGlobalScope() {
		c.fail(s.Keyword.Line, s.Keyword.Column, "'import' is only allowed at module scope")
		return nil
	}
	alias := s.Alias
	if alias == "" {
		alias = s.Path
	}
	c.importedAliases[alias] = true

	src, err := c.loader.Load(s.Path)
	if err != nil {
		c.fail(s.Keyword.Line, s.Keyword.Column, "%s", err.Error())
		return nil
	}
	tokens, lexErr := lexer.New(src).Scan()
	if lexErr != nil {
		c.fail(s.Keyword.Line, s.Keyword.Column, "importing '%s': %s", s.Path, lexErr.Error())
		return nil
	}
	statements, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) > 0 {
		c.fail(s.Keyword.Line, s.Keyword.Column, "importing '%s': %s", s.Path, parseErrs[0].Error())
		return nil
	}
	if semErrs := semantic.New(c.provider).Analyze(statements); len(semErrs) > 0 {
		c.fail(s.Keyword.Line, s.Keyword.Column, "importing '%s': %s", s.Path, semErrs[0].Error())
		return nil
	}

	savedPrefix := c.namePrefix
	c.namePrefix = alias + "$"
	for _, stmt := range statements {
		c.compileStmt(stmt)
	}
	c.namePrefix = savedPrefix
	return nil
}

package compiler

import (
	"linh/ast"
	"linh/bytecode"
	"linh/token"
)

var binaryOps = map[token.TokenType]bytecode.Opcode{
	token.ADD:   bytecode.OP_ADD,
	token.SUB:   bytecode.OP_SUBTRACT,
	token.MULT:  bytecode.OP_MULTIPLY,
	token.DIV:   bytecode.OP_DIVIDE,
	token.PCT:   bytecode.OP_MODULO,
	token.FLOOR: bytecode.OP_FLOOR_DIVIDE,
	token.POW:   bytecode.OP_POWER,

	token.SHL: bytecode.OP_SHL,
	token.SHR: bytecode.OP_SHR,
	token.AMP: bytecode.OP_BIT_AND,
	// token.CARET doubles as both bitwise-xor here and boolean-xor; the
	// language has no separate operator for each.
	token.CARET: bytecode.OP_BIT_XOR,

	token.EQUAL_EQUAL:  bytecode.OP_EQUAL,
	token.NOT_EQUAL:    bytecode.OP_NOT_EQUAL,
	token.LESS:         bytecode.OP_LESS,
	token.LESS_EQUAL:   bytecode.OP_LESS_EQUAL,
	token.LARGER:       bytecode.OP_LARGER,
	token.LARGER_EQUAL: bytecode.OP_LARGER_EQUAL,
	// "is" performs the same structural-equality test as "==": the
	// language has no reference-identity distinct from value equality for
	// its value types, so there is nothing extra for "is" to check.
	token.IS: bytecode.OP_EQUAL,
}

func (c *Emitter) VisitBinary(e ast.Binary) any {
	if lit, ok := c.foldConstLiteral(e); ok {
		return c.VisitLiteral(lit)
	}
	e.Left.Accept(c)
	e.Right.Accept(c)
	op, ok := binaryOps[e.Operator.TokenType]
	if !ok {
		c.fail(e.Operator.Line, e.Operator.Column, "unsupported binary operator '%s'", e.Operator.Lexeme)
		return nil
	}
	c.emit(op, bytecode.Operand{}, e.Operator.Line, e.Operator.Column)
	return nil
}

func (c *Emitter) VisitUnary(e ast.Unary) any {
	switch e.Operator.TokenType {
	case token.INCREMENT, token.DECREMENT:
		c.compileIncrementDecrement(e.Right, e.Operator, true)
		return nil
	}

	if lit, ok := c.foldConstLiteral(e); ok {
		return c.VisitLiteral(lit)
	}

	e.Right.Accept(c)
	switch e.Operator.TokenType {
	case token.SUB:
		c.emit(bytecode.OP_NEGATE, bytecode.Operand{}, e.Operator.Line, e.Operator.Column)
	case token.BANG, token.NOT:
		c.emit(bytecode.OP_NOT, bytecode.Operand{}, e.Operator.Line, e.Operator.Column)
	case token.TILDE:
		c.emit(bytecode.OP_BIT_NOT, bytecode.Operand{}, e.Operator.Line, e.Operator.Column)
	default:
		c.fail(e.Operator.Line, e.Operator.Column, "unsupported unary operator '%s'", e.Operator.Lexeme)
	}
	return nil
}

func (c *Emitter) VisitPostfix(e ast.Postfix) any {
	c.compileIncrementDecrement(e.Target, e.Operator, false)
	return nil
}

// compileIncrementDecrement lowers both prefix ("++x") and postfix
// ("x++") increment/decrement into a get/add-or-subtract/set sequence.
// For a prefix form the set's own result (the new value) is the
// expression's result; for postfix the target's original value is read
// first and kept as the result, with the set's pushed value discarded.
// A Subscript or Member target's object/index sub-expressions are
// evaluated more than once (twice for prefix, three times for postfix,
// counting the extra read of the original value) — acceptable here
// since index expressions in this grammar are not expected to carry
// side effects, and avoids the extra stack-shuffling bytecode a
// single-evaluation scheme would need.
func (c *Emitter) compileIncrementDecrement(target ast.Expression, op token.Token, isPrefix bool) {
	delta := bytecode.OP_ADD
	if op.TokenType == token.DECREMENT {
		delta = bytecode.OP_SUBTRACT
	}

	binaryOp := token.TokenType(token.ADD)
	if delta == bytecode.OP_SUBTRACT {
		binaryOp = token.SUB
	}
	one := ast.Literal{Value: int64(1)}
	newValue := ast.Expression(ast.Binary{Left: target, Operator: token.CreateToken(binaryOp, op.Line, op.Column), Right: one})

	assignExpr, err := assignTargetFor(target, newValue, op)
	if err != nil {
		c.fail(op.Line, op.Column, "%s", err.Error())
		return
	}

	if isPrefix {
		assignExpr.Accept(c)
		return
	}

	target.Accept(c)
	assignExpr.Accept(c)
	c.emit(bytecode.OP_POP, bytecode.Operand{}, op.Line, op.Column)
}

// assignTargetFor builds the assignment AST node for target := value,
// mirroring the parser's makeAssignTarget (including "m.a" desugaring to
// a string-keyed subscript) for use by increment/decrement lowering.
func assignTargetFor(target ast.Expression, value ast.Expression, at token.Token) (ast.Expression, error) {
	switch t := target.(type) {
	case ast.Variable:
		return ast.Assign{Name: t.Name, Value: value}, nil
	case ast.Subscript:
		return ast.SubscriptAssign{Object: t.Object, Bracket: t.Bracket, Index: t.Index, Value: value}, nil
	case ast.Member:
		keyTok := token.CreateLiteralToken(token.STRING, t.Name.Lexeme, t.Name.Lexeme, t.Name.Line, t.Name.Column)
		return ast.SubscriptAssign{Object: t.Object, Bracket: t.Name, Index: ast.Literal{Value: keyTok.Literal}, Value: value}, nil
	default:
		return nil, newError(at.Line, at.Column, "invalid increment/decrement target")
	}
}

func (c *Emitter) VisitLiteral(e ast.Literal) any {
	switch v := e.Value.(type) {
	case nil:
		c.emit(bytecode.OP_NIL, bytecode.Operand{}, 0, 0)
	case bool:
		if v {
			c.emit(bytecode.OP_TRUE, bytecode.Operand{}, 0, 0)
		} else {
			c.emit(bytecode.OP_FALSE, bytecode.Operand{}, 0, 0)
		}
	case int64:
		c.emit(bytecode.OP_CONSTANT, bytecode.IntOperand(int(v)), 0, 0)
	case uint64:
		c.emit(bytecode.OP_CONSTANT, bytecode.Operand{Kind: bytecode.OperandUint, Uint: v}, 0, 0)
	case float64:
		c.emit(bytecode.OP_CONSTANT, bytecode.Operand{Kind: bytecode.OperandFloat, Float: v}, 0, 0)
	case string:
		c.emit(bytecode.OP_CONSTANT, bytecode.Operand{Kind: bytecode.OperandText, Text: v}, 0, 0)
	default:
		c.fail(0, 0, "unsupported literal value of type %T", v)
	}
	return nil
}

func (c *Emitter) VisitGrouping(e ast.Grouping) any {
	e.Expression.Accept(c)
	return nil
}

func (c *Emitter) VisitVariableExpression(e ast.Variable) any {
	if slot, ok := c.resolveLocal(e.Name.Lexeme); ok {
		c.emit(bytecode.OP_GET_LOCAL, bytecode.IntOperand(slot), e.Name.Line, e.Name.Column)
		return nil
	}
	c.emit(bytecode.OP_GET_GLOBAL, bytecode.Operand{Kind: bytecode.OperandText, Text: c.globalName(e.Name.Lexeme)}, e.Name.Line, e.Name.Column)
	return nil
}

// VisitAssignExpression compiles "name = value". The set instructions
// leave the assigned value on the stack so assignment composes as an
// expression (e.g. "x = y = 1;").
func (c *Emitter) VisitAssignExpression(e ast.Assign) any {
	e.Value.Accept(c)
	if slot, ok := c.resolveLocal(e.Name.Lexeme); ok {
		c.emit(bytecode.OP_SET_LOCAL, bytecode.IntOperand(slot), e.Name.Line, e.Name.Column)
		return nil
	}
	c.emit(bytecode.OP_SET_GLOBAL, bytecode.Operand{Kind: bytecode.OperandText, Text: c.globalName(e.Name.Lexeme)}, e.Name.Line, e.Name.Column)
	return nil
}

// VisitLogicalExpression compiles short-circuiting "and"/"or" using the
// standard dup-test-jump technique, since the instruction set has no
// dedicated logical-and/or opcode.
func (c *Emitter) VisitLogicalExpression(e ast.Logical) any {
	if lit, ok := c.foldConstLiteral(e); ok {
		return c.VisitLiteral(lit)
	}
	e.Left.Accept(c)
	c.emit(bytecode.OP_DUP, bytecode.Operand{}, 0, 0)

	switch e.Operator.TokenType {
	case token.OR:
		toRight := c.emitPlaceholderJump(bytecode.OP_JUMP_IF_FALSE, 0, 0)
		toEnd := c.emitPlaceholderJump(bytecode.OP_JUMP, 0, 0)
		c.patchJump(toRight)
		c.emit(bytecode.OP_POP, bytecode.Operand{}, 0, 0)
		e.Right.Accept(c)
		c.patchJump(toEnd)
	case token.AND:
		toEnd := c.emitPlaceholderJump(bytecode.OP_JUMP_IF_FALSE, 0, 0)
		c.emit(bytecode.OP_POP, bytecode.Operand{}, 0, 0)
		e.Right.Accept(c)
		c.patchJump(toEnd)
	default:
		c.fail(e.Operator.Line, e.Operator.Column, "unsupported logical operator '%s'", e.Operator.Lexeme)
	}
	return nil
}

// VisitCall compiles "callee(args...)": the callee is pushed first, then
// each argument, then OP_CALL pops argc arguments plus the callee and
// pushes the call's result.
func (c *Emitter) VisitCall(e ast.Call) any {
	e.Callee.Accept(c)
	for _, arg := range e.Arguments {
		arg.Accept(c)
	}
	c.emit(bytecode.OP_CALL, bytecode.IntOperand(len(e.Arguments)), e.Paren.Line, e.Paren.Column)
	return nil
}

func (c *Emitter) VisitArrayLiteral(e ast.ArrayLiteral) any {
	for _, el := range e.Elements {
		el.Accept(c)
	}
	c.emit(bytecode.OP_BUILD_ARRAY, bytecode.IntOperand(len(e.Elements)), e.Bracket.Line, e.Bracket.Column)
	return nil
}

func (c *Emitter) VisitMapLiteral(e ast.MapLiteral) any {
	for _, entry := range e.Entries {
		entry.Key.Accept(c)
		entry.Value.Accept(c)
	}
	c.emit(bytecode.OP_BUILD_MAP, bytecode.IntOperand(len(e.Entries)), e.Brace.Line, e.Brace.Column)
	return nil
}

func (c *Emitter) VisitSubscript(e ast.Subscript) any {
	e.Object.Accept(c)
	e.Index.Accept(c)
	c.emit(bytecode.OP_INDEX_GET, bytecode.Operand{}, e.Bracket.Line, e.Bracket.Column)
	return nil
}

// VisitSubscriptAssign compiles "obj[index] = value", leaving value on
// the stack as the expression's result (same convention as VisitAssignExpression).
func (c *Emitter) VisitSubscriptAssign(e ast.SubscriptAssign) any {
	e.Object.Accept(c)
	e.Index.Accept(c)
	e.Value.Accept(c)
	c.emit(bytecode.OP_INDEX_SET, bytecode.Operand{}, e.Bracket.Line, e.Bracket.Column)
	return nil
}

// VisitInterpolatedString pushes every literal-text and expression part
// in source order, then OP_INTERP_CONCAT pops all of them and joins their
// string renderings into a single result.
func (c *Emitter) VisitInterpolatedString(e ast.InterpolatedString) any {
	for _, part := range e.Parts {
		if part.Expr != nil {
			part.Expr.Accept(c)
		} else {
			c.emit(bytecode.OP_CONSTANT, bytecode.Operand{Kind: bytecode.OperandText, Text: part.Text}, 0, 0)
		}
	}
	c.emit(bytecode.OP_INTERP_CONCAT, bytecode.IntOperand(len(e.Parts)), 0, 0)
	return nil
}

// packageAliasName reports whether expr is a bare identifier naming a
// known package: either a built-in one the host provider recognises, or
// a module this file imported. Only in that case does "x.y" mean
// package access rather than ordinary member access on a value.
func (c *Emitter) packageAliasName(expr ast.Expression) (string, bool) {
	v, ok := expr.(ast.Variable)
	if !ok {
		return "", false
	}
	name := v.Name.Lexeme
	if c.provider != nil && c.provider.HasPackage(name) {
		return name, true
	}
	if c.importedAliases[name] {
		return name, true
	}
	return "", false
}

// VisitMember compiles "object.name". When Object names a package, this
// is the resolution the semantic analyzer deliberately leaves to code
// generation: a built-in package constant becomes OP_PACKAGE_CONST, and
// an imported module's global becomes an ordinary mangled-name global
// lookup. Otherwise it is shorthand for indexing the value by a
// string key, i.e. "m.a" reads the same as "m[\"a\"]".
func (c *Emitter) VisitMember(e ast.Member) any {
	if alias, ok := c.packageAliasName(e.Object); ok {
		if c.importedAliases[alias] && !(c.provider != nil && c.provider.HasPackage(alias)) {
			c.emit(bytecode.OP_GET_GLOBAL, bytecode.Operand{Kind: bytecode.OperandText, Text: alias + "$" + e.Name.Lexeme}, e.Name.Line, e.Name.Column)
			return nil
		}
		c.emit(bytecode.OP_PACKAGE_CONST, bytecode.Operand{Kind: bytecode.OperandText, Text: alias + "." + e.Name.Lexeme}, e.Name.Line, e.Name.Column)
		return nil
	}

	e.Object.Accept(c)
	c.emit(bytecode.OP_GET_PROPERTY, bytecode.Operand{Kind: bytecode.OperandText, Text: e.Name.Lexeme}, e.Name.Line, e.Name.Column)
	return nil
}

// VisitPackageConst exists only to satisfy ast.ExpressionVisitor; the AST
// never actually contains a PackageConst node produced by the parser
// (VisitMember resolves package access directly), but the node type is
// kept so an embedder could synthesize one.
func (c *Emitter) VisitPackageConst(e ast.PackageConst) any {
	c.emit(bytecode.OP_PACKAGE_CONST, bytecode.Operand{Kind: bytecode.OperandText, Text: e.Package + "." + e.Name}, e.Token.Line, e.Token.Column)
	return nil
}

// VisitMethodCall compiles "receiver.method(args...)". A package-alias
// receiver compiles to a plain call of the module's mangled global (or,
// for a host-provided package, OP_CALL_METHOD flagged as a package
// call); any other receiver compiles as a built-in container method call
// (append/remove/clear/clone/pop on arrays, delete/clear/keys/values/clone
// on maps), which OP_CALL_METHOD dispatches by name on the receiver value
// pushed beneath its arguments.
func (c *Emitter) VisitMethodCall(e ast.MethodCall) any {
	if alias, ok := c.packageAliasName(e.Receiver); ok {
		if c.importedAliases[alias] && !(c.provider != nil && c.provider.HasPackage(alias)) {
			c.emit(bytecode.OP_GET_GLOBAL, bytecode.Operand{Kind: bytecode.OperandText, Text: alias + "$" + e.Method.Lexeme}, e.Method.Line, e.Method.Column)
			for _, arg := range e.Arguments {
				arg.Accept(c)
			}
			c.emit(bytecode.OP_CALL, bytecode.IntOperand(len(e.Arguments)), e.Method.Line, e.Method.Column)
			return nil
		}
		for _, arg := range e.Arguments {
			arg.Accept(c)
		}
		c.emit(bytecode.OP_CALL_METHOD, bytecode.Operand{
			Kind: bytecode.OperandText,
			Text: alias + "." + e.Method.Lexeme,
			Int:  len(e.Arguments),
			Bool: true,
		}, e.Method.Line, e.Method.Column)
		return nil
	}

	e.Receiver.Accept(c)
	for _, arg := range e.Arguments {
		arg.Accept(c)
	}
	c.emit(bytecode.OP_CALL_METHOD, bytecode.Operand{
		Kind: bytecode.OperandText,
		Text: e.Method.Lexeme,
		Int:  len(e.Arguments),
		Bool: false,
	}, e.Method.Line, e.Method.Column)
	return nil
}

// VisitThis compiles the "this" receiver as an ordinary local lookup: the
// language has no user-defined classes/methods to bind a receiver for,
// so "this" only resolves inside a function body that happens to declare
// a local named "this" (reserved for a future method-dispatch calling
// convention); anywhere else it is a compile error.
func (c *Emitter) VisitThis(e ast.This) any {
	if slot, ok := c.resolveLocal("this"); ok {
		c.emit(bytecode.OP_GET_LOCAL, bytecode.IntOperand(slot), e.Keyword.Line, e.Keyword.Column)
		return nil
	}
	c.fail(e.Keyword.Line, e.Keyword.Column, "'this' used outside of a method context")
	return nil
}

// VisitNew compiles "new Type(args...)" construction. Array construction
// builds an array from the argument list directly; map construction
// supports only the no-argument form (an empty map); every other base
// type ignores its arguments and pushes that type's zero value, since
// this language's scalars have no constructor behavior of their own.
func (c *Emitter) VisitNew(e ast.New) any {
	switch {
	case e.Type != nil && e.Type.Kind == ast.TypeArray:
		for _, arg := range e.Arguments {
			arg.Accept(c)
		}
		c.emit(bytecode.OP_BUILD_ARRAY, bytecode.IntOperand(len(e.Arguments)), e.Keyword.Line, e.Keyword.Column)
	case e.Type != nil && e.Type.Kind == ast.TypeMap:
		if len(e.Arguments) > 0 {
			c.fail(e.Keyword.Line, e.Keyword.Column, "'new map(...)' does not take constructor arguments")
		}
		c.emit(bytecode.OP_BUILD_MAP, bytecode.IntOperand(0), e.Keyword.Line, e.Keyword.Column)
	default:
		zeroValueLiteral(e.Type).Accept(c)
	}
	return nil
}

func (c *Emitter) VisitUninit(e ast.Uninit) any {
	c.emit(bytecode.OP_UNINIT, bytecode.Operand{}, e.Keyword.Line, e.Keyword.Column)
	return nil
}

// Package semantic walks a parsed program before codegen, checking
// scoping rules, declaration-kind rules (var/vas/let/const), break/
// continue placement, parameter uniqueness, and (best-effort) missing
// return paths. It reports every problem it finds rather than stopping
// at the first, mirroring the parser's error-collection style.
package semantic

import (
	"fmt"

	"linh/ast"
	"linh/host"
)

// Analyzer performs a single pass over a parsed program.
type Analyzer struct {
	scopes      []*scope
	errors      []error
	loopDepth   int
	switchDepth int
	funcDepth   int
	provider    host.PackageProvider
	imports     map[string]bool
}

// New constructs an Analyzer. provider resolves package-qualified
// references recognised during analysis; pass host.NullProvider{} when
// no host integration is available.
func New(provider host.PackageProvider) *Analyzer {
	return &Analyzer{provider: provider, imports: make(map[string]bool)}
}

// builtinNames are the call-position built-ins the VM dispatches before
// ever consulting user globals (see vm/builtins.go): seeding them here
// lets "pow(2, 3)"/"len(x)"/... pass the same undefined-name check as
// any other call, without a user ever having declared them.
var builtinNames = []string{
	"pow", "sol", "str", "int", "uint", "float", "bool",
	"len", "id", "type", "input", "printf",
}

// Analyze checks a parsed program, returning every diagnostic found.
func (a *Analyzer) Analyze(statements []ast.Stmt) []error {
	a.pushScope()
	for _, name := range builtinNames {
		a.currentScope().symbols[name] = symbol{kind: ast.DeclConst}
	}
	for _, stmt := range statements {
		a.checkStmt(stmt)
	}
	a.popScope()
	return a.errors
}

func (a *Analyzer) fail(line int32, column int, format string, args ...any) {
	a.errors = append(a.errors, newError(line, column, fmt.Sprintf(format, args...)))
}

func (a *Analyzer) checkStmt(stmt ast.Stmt) {
	stmt.Accept(a)
}

func (a *Analyzer) checkExpr(expr ast.Expression) {
	if expr == nil {
		return
	}
	expr.Accept(a)
}

// --- StmtVisitor ---

func (a *Analyzer) VisitExpressionStmt(s ast.ExpressionStmt) any {
	a.checkExpr(s.Expression)
	return nil
}

func (a *Analyzer) VisitPrintStmt(s ast.PrintStmt) any {
	for _, e := range s.Expressions {
		a.checkExpr(e)
	}
	return nil
}

func (a *Analyzer) VisitVarStmt(s ast.VarStmt) any {
	a.checkExpr(s.Initializer)

	name := s.Name.Lexeme
	if s.Kind == ast.DeclLet {
		if _, exists := a.currentScope().symbols[name]; exists {
			a.fail(s.Name.Line, s.Name.Column, "redeclaration of '%s' in the same scope", name)
		}
	}
	a.currentScope().symbols[name] = symbol{kind: s.Kind, declaredAt: s.Name.Line}
	return nil
}

func (a *Analyzer) VisitBlockStmt(s ast.BlockStmt) any {
	a.pushScope()
	for _, stmt := range s.Statements {
		a.checkStmt(stmt)
	}
	a.popScope()
	return nil
}

func (a *Analyzer) VisitIfStmt(s ast.IfStmt) any {
	a.checkExpr(s.Condition)
	a.checkStmt(s.ThenBranch)
	if s.ElseBranch != nil {
		a.checkStmt(s.ElseBranch)
	}
	return nil
}

func (a *Analyzer) VisitWhileStmt(s ast.WhileStmt) any {
	a.checkExpr(s.Condition)
	a.loopDepth++
	a.checkStmt(s.Body)
	a.loopDepth--
	return nil
}

func (a *Analyzer) VisitDoWhileStmt(s ast.DoWhileStmt) any {
	a.loopDepth++
	a.checkStmt(s.Body)
	a.loopDepth--
	a.checkExpr(s.Condition)
	return nil
}

func (a *Analyzer) VisitFuncStmt(s ast.FuncStmt) any {
	a.currentScope().symbols[s.Name.Lexeme] = symbol{kind: ast.DeclConst, declaredAt: s.Name.Line}

	seen := make(map[string]bool)
	for _, p := range s.Params {
		if seen[p.Name.Lexeme] {
			a.fail(p.Name.Line, p.Name.Column, "duplicate parameter name '%s'", p.Name.Lexeme)
		}
		seen[p.Name.Lexeme] = true
	}

	a.pushScope()
	for _, p := range s.Params {
		a.currentScope().symbols[p.Name.Lexeme] = symbol{kind: ast.DeclVar, declaredAt: p.Name.Line}
	}
	a.funcDepth++
	for _, stmt := range s.Body {
		a.checkStmt(stmt)
	}
	a.funcDepth--
	a.popScope()

	if s.ReturnType != nil && !s.ReturnType.IsSol() && s.ReturnType.Kind == ast.TypeBase && s.ReturnType.Base != ast.BaseVoid {
		if !bodyMayReturn(s.Body) {
			a.fail(s.Name.Line, s.Name.Column, "function '%s' may fall off the end without returning a value", s.Name.Lexeme)
		}
	}
	return nil
}

// bodyMayReturn is a best-effort, non-exhaustive missing-return check: it
// looks for a return (or a terminating throw) reachable as the last
// statement of every control path, without full dataflow analysis.
func bodyMayReturn(body []ast.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	return stmtAlwaysReturns(body[len(body)-1])
}

func stmtAlwaysReturns(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case ast.ReturnStmt:
		return true
	case ast.ThrowStmt:
		return true
	case ast.BlockStmt:
		return bodyMayReturn(s.Statements)
	case ast.IfStmt:
		if s.ElseBranch == nil {
			return false
		}
		return stmtAlwaysReturns(s.ThenBranch) && stmtAlwaysReturns(s.ElseBranch)
	case ast.SwitchStmt:
		sawDefault := false
		for _, c := range s.Cases {
			if c.Value == nil {
				sawDefault = true
			}
			if len(c.Body) == 0 || !stmtAlwaysReturns(c.Body[len(c.Body)-1]) {
				return false
			}
		}
		return sawDefault
	default:
		return false
	}
}

func (a *Analyzer) VisitReturnStmt(s ast.ReturnStmt) any {
	if a.funcDepth == 0 {
		a.fail(s.Keyword.Line, s.Keyword.Column, "'return' outside of a function")
	}
	a.checkExpr(s.Value)
	return nil
}

func (a *Analyzer) VisitBreakStmt(s ast.BreakStmt) any {
	if a.loopDepth == 0 && a.switchDepth == 0 {
		a.fail(s.Keyword.Line, s.Keyword.Column, "'break' outside of a loop or switch")
	}
	return nil
}

func (a *Analyzer) VisitContinueStmt(s ast.ContinueStmt) any {
	if a.loopDepth == 0 {
		a.fail(s.Keyword.Line, s.Keyword.Column, "'continue' outside of a loop")
	}
	return nil
}

func (a *Analyzer) VisitSwitchStmt(s ast.SwitchStmt) any {
	a.checkExpr(s.Discriminant)
	a.switchDepth++
	for _, c := range s.Cases {
		a.checkExpr(c.Value)
		a.pushScope()
		for _, stmt := range c.Body {
			a.checkStmt(stmt)
		}
		a.popScope()
	}
	a.switchDepth--
	return nil
}

func (a *Analyzer) VisitDeleteStmt(s ast.DeleteStmt) any {
	if _, ok := s.Target.(ast.Subscript); !ok {
		a.fail(s.Keyword.Line, s.Keyword.Column, "'delete' requires a subscript target, e.g. delete m[\"k\"]")
	}
	a.checkExpr(s.Target)
	return nil
}

func (a *Analyzer) VisitThrowStmt(s ast.ThrowStmt) any {
	a.checkExpr(s.Value)
	return nil
}

func (a *Analyzer) VisitTryStmt(s ast.TryStmt) any {
	a.pushScope()
	for _, stmt := range s.Body {
		a.checkStmt(stmt)
	}
	a.popScope()

	for _, c := range s.Catches {
		a.pushScope()
		a.currentScope().symbols[c.Name.Lexeme] = symbol{kind: ast.DeclVar, declaredAt: c.Name.Line}
		for _, stmt := range c.Body {
			a.checkStmt(stmt)
		}
		a.popScope()
	}

	if s.Finally != nil {
		a.pushScope()
		for _, stmt := range s.Finally {
			a.checkStmt(stmt)
		}
		a.popScope()
	}
	return nil
}

func (a *Analyzer) VisitImportStmt(s ast.ImportStmt) any {
	name := s.Alias
	if name == "" {
		name = s.Path
	}
	if a.imports[name] {
		a.fail(s.Keyword.Line, s.Keyword.Column, "module '%s' already imported", name)
	}
	a.imports[name] = true
	a.currentScope().symbols[name] = symbol{kind: ast.DeclConst, declaredAt: s.Keyword.Line}
	return nil
}

// --- ExpressionVisitor ---

func (a *Analyzer) VisitBinary(e ast.Binary) any {
	a.checkExpr(e.Left)
	a.checkExpr(e.Right)
	return nil
}

func (a *Analyzer) VisitUnary(e ast.Unary) any {
	a.checkExpr(e.Right)
	return nil
}

func (a *Analyzer) VisitPostfix(e ast.Postfix) any {
	a.checkExpr(e.Target)
	return nil
}

func (a *Analyzer) VisitLiteral(e ast.Literal) any { return nil }

func (a *Analyzer) VisitGrouping(e ast.Grouping) any {
	a.checkExpr(e.Expression)
	return nil
}

func (a *Analyzer) VisitVariableExpression(e ast.Variable) any {
	if _, ok := a.lookup(e.Name.Lexeme); !ok {
		a.fail(e.Name.Line, e.Name.Column, "undefined name '%s'", e.Name.Lexeme)
	}
	return nil
}

func (a *Analyzer) VisitAssignExpression(e ast.Assign) any {
	if sym, ok := a.lookup(e.Name.Lexeme); ok {
		if sym.kind == ast.DeclConst {
			a.fail(e.Name.Line, e.Name.Column, "cannot assign to const '%s'", e.Name.Lexeme)
		}
	} else {
		a.fail(e.Name.Line, e.Name.Column, "undefined name '%s'", e.Name.Lexeme)
	}
	a.checkExpr(e.Value)
	return nil
}

func (a *Analyzer) VisitLogicalExpression(e ast.Logical) any {
	a.checkExpr(e.Left)
	a.checkExpr(e.Right)
	return nil
}

func (a *Analyzer) VisitCall(e ast.Call) any {
	a.checkExpr(e.Callee)
	for _, arg := range e.Arguments {
		a.checkExpr(arg)
	}
	return nil
}

func (a *Analyzer) VisitArrayLiteral(e ast.ArrayLiteral) any {
	for _, el := range e.Elements {
		a.checkExpr(el)
	}
	return nil
}

func (a *Analyzer) VisitMapLiteral(e ast.MapLiteral) any {
	for _, entry := range e.Entries {
		a.checkExpr(entry.Key)
		a.checkExpr(entry.Value)
	}
	return nil
}

func (a *Analyzer) VisitSubscript(e ast.Subscript) any {
	a.checkExpr(e.Object)
	a.checkExpr(e.Index)
	return nil
}

func (a *Analyzer) VisitSubscriptAssign(e ast.SubscriptAssign) any {
	a.checkExpr(e.Object)
	a.checkExpr(e.Index)
	a.checkExpr(e.Value)
	return nil
}

func (a *Analyzer) VisitInterpolatedString(e ast.InterpolatedString) any {
	for _, part := range e.Parts {
		if part.Expr != nil {
			a.checkExpr(part.Expr)
		}
	}
	return nil
}

func (a *Analyzer) VisitMember(e ast.Member) any {
	if variable, ok := e.Object.(ast.Variable); ok && a.provider != nil && a.provider.HasPackage(variable.Name.Lexeme) {
		return nil
	}
	a.checkExpr(e.Object)
	return nil
}

func (a *Analyzer) VisitPackageConst(e ast.PackageConst) any { return nil }

func (a *Analyzer) VisitMethodCall(e ast.MethodCall) any {
	a.checkExpr(e.Receiver)
	for _, arg := range e.Arguments {
		a.checkExpr(arg)
	}
	return nil
}

func (a *Analyzer) VisitThis(e ast.This) any {
	if a.funcDepth == 0 {
		a.fail(e.Keyword.Line, e.Keyword.Column, "'this' used outside of a method")
	}
	return nil
}

func (a *Analyzer) VisitNew(e ast.New) any {
	for _, arg := range e.Arguments {
		a.checkExpr(arg)
	}
	return nil
}

func (a *Analyzer) VisitUninit(e ast.Uninit) any { return nil }

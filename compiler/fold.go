package compiler

import (
	"linh/ast"
	"linh/token"
)

// Options customizes one Emitter run. It mirrors the OptimizeConst/
// OptimizeExpr flags of a constant-folding compiler: folding is an AST
// rewrite that happens before code generation, not a bytecode pass.
type Options struct {
	// FoldConstants replaces a constant sub-expression ("2 + 3", "!true")
	// with its computed ast.Literal before emission, and lets an "if"/
	// "while" whose condition folds to a constant skip compiling its
	// unreachable branch. Default true.
	FoldConstants bool
}

// DefaultOptions is what New uses when no Options are given.
var DefaultOptions = Options{FoldConstants: true}

// foldExpr recursively folds constant sub-expressions of e, bottom-up, and
// returns the (possibly rewritten) expression. It only simplifies the
// shapes a source program can actually spell as a constant: literal
// arithmetic/comparison, literal boolean logic, and literal unary
// negation. Anything it cannot evaluate at compile time is returned
// unchanged, with its folded children substituted in.
func foldExpr(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case ast.Grouping:
		return foldExpr(n.Expression)

	case ast.Unary:
		right := foldExpr(n.Right)
		if lit, ok := right.(ast.Literal); ok {
			if v, ok := foldUnary(n.Operator.TokenType, lit.Value); ok {
				return ast.Literal{Value: v}
			}
		}
		n.Right = right
		return n

	case ast.Binary:
		left := foldExpr(n.Left)
		right := foldExpr(n.Right)
		if ll, ok := left.(ast.Literal); ok {
			if rl, ok := right.(ast.Literal); ok {
				if v, ok := foldBinary(ll.Value, n.Operator.TokenType, rl.Value); ok {
					return ast.Literal{Value: v}
				}
			}
		}
		n.Left, n.Right = left, right
		return n

	case ast.Logical:
		left := foldExpr(n.Left)
		if lit, ok := left.(ast.Literal); ok {
			truthy := literalTruthy(lit.Value)
			// "x and c" short-circuits on a falsy left; "x or c" on a
			// truthy one - in both cases the right side never runs and
			// the left literal is the whole expression's value.
			if (n.Operator.TokenType == token.AND && !truthy) ||
				(n.Operator.TokenType == token.OR && truthy) {
				return left
			}
			// Left doesn't short-circuit, so the expression's value is
			// whatever the right side evaluates to.
			return foldExpr(n.Right)
		}
		n.Right = foldExpr(n.Right)
		return n

	default:
		return e
	}
}

func literalTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	default:
		return true
	}
}

func foldUnary(op token.TokenType, v any) (any, bool) {
	switch op {
	case token.SUB:
		switch n := v.(type) {
		case int64:
			return -n, true
		case float64:
			return -n, true
		}
	case token.BANG, token.NOT:
		if b, ok := v.(bool); ok {
			return !b, true
		}
	}
	return nil, false
}

// foldBinary evaluates a constant binary expression over literal operand
// values, promoting int64 to float64 when either side is a float, the
// same promotion VisitBinary's emitted OP_ADD/... apply at run time.
func foldBinary(l any, op token.TokenType, r any) (any, bool) {
	li, lIsInt := l.(int64)
	ri, rIsInt := r.(int64)
	lf, lIsFloat := l.(float64)
	rf, rIsFloat := r.(float64)

	if (lIsInt || lIsFloat) && (rIsInt || rIsFloat) {
		if lIsInt && rIsInt {
			if v, ok := foldIntBinary(li, op, ri); ok {
				return v, true
			}
			return nil, false
		}
		if !lIsFloat {
			lf = float64(li)
		}
		if !rIsFloat {
			rf = float64(ri)
		}
		return foldFloatBinary(lf, op, rf)
	}

	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return foldStringBinary(ls, op, rs)
		}
	}

	if lb, ok := l.(bool); ok {
		if rb, ok := r.(bool); ok {
			return foldBoolBinary(lb, op, rb)
		}
	}

	return nil, false
}

func foldIntBinary(l int64, op token.TokenType, r int64) (any, bool) {
	switch op {
	case token.ADD:
		return l + r, true
	case token.SUB:
		return l - r, true
	case token.MULT:
		return l * r, true
	case token.DIV:
		if r == 0 {
			return nil, false
		}
		return l / r, true
	case token.PCT:
		if r == 0 {
			return nil, false
		}
		return l % r, true
	case token.FLOOR:
		if r == 0 {
			return nil, false
		}
		q := l / r
		if (l%r != 0) && ((l < 0) != (r < 0)) {
			q--
		}
		return q, true
	case token.EQUAL_EQUAL, token.IS:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	case token.LESS:
		return l < r, true
	case token.LESS_EQUAL:
		return l <= r, true
	case token.LARGER:
		return l > r, true
	case token.LARGER_EQUAL:
		return l >= r, true
	}
	return nil, false
}

func foldFloatBinary(l float64, op token.TokenType, r float64) (any, bool) {
	switch op {
	case token.ADD:
		return l + r, true
	case token.SUB:
		return l - r, true
	case token.MULT:
		return l * r, true
	case token.DIV:
		if r == 0 {
			return nil, false
		}
		return l / r, true
	case token.EQUAL_EQUAL, token.IS:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	case token.LESS:
		return l < r, true
	case token.LESS_EQUAL:
		return l <= r, true
	case token.LARGER:
		return l > r, true
	case token.LARGER_EQUAL:
		return l >= r, true
	}
	return nil, false
}

func foldStringBinary(l string, op token.TokenType, r string) (any, bool) {
	switch op {
	case token.ADD:
		return l + r, true
	case token.EQUAL_EQUAL, token.IS:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	case token.LESS:
		return l < r, true
	case token.LESS_EQUAL:
		return l <= r, true
	case token.LARGER:
		return l > r, true
	case token.LARGER_EQUAL:
		return l >= r, true
	}
	return nil, false
}

func foldBoolBinary(l bool, op token.TokenType, r bool) (any, bool) {
	switch op {
	case token.EQUAL_EQUAL, token.IS:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	case token.CARET:
		return l != r, true
	}
	return nil, false
}

// foldConstLiteral folds e and reports whether it collapsed to a literal,
// the entry point VisitBinary/VisitUnary/VisitLogicalExpression use before
// falling back to ordinary code generation.
func (c *Emitter) foldConstLiteral(e ast.Expression) (ast.Literal, bool) {
	if !c.options.FoldConstants {
		return ast.Literal{}, false
	}
	folded := foldExpr(e)
	lit, ok := folded.(ast.Literal)
	return lit, ok
}

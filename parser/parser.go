// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// A recursive descent parser is a top-down parser because it starts from
// the top grammar rule and works its way down into the nested
// sub-expressions before reaching the leaves of the syntax tree (terminal
// rules).
package parser

import (
	"linh/ast"
	"linh/token"
)

var comparisonTokenTypes = []token.TokenType{
	token.LARGER,
	token.LARGER_EQUAL,
	token.LESS,
	token.LESS_EQUAL,
	token.IS,
}

var equalityTokenTypes = []token.TokenType{
	token.NOT_EQUAL,
	token.EQUAL_EQUAL,
}

var termTokenTypes = []token.TokenType{
	token.SUB,
	token.ADD,
}

var factorTokenTypes = []token.TokenType{
	token.MULT,
	token.DIV,
	token.PCT,
	token.FLOOR,
}

var compoundAssignTokenTypes = []token.TokenType{
	token.PLUS_ASSIGN,
	token.MINUS_ASSIGN,
	token.STAR_ASSIGN,
	token.SLASH_ASSIGN,
	token.PCT_ASSIGN,
	token.FLOOR_ASSIGN,
}

var declKeywords = []token.TokenType{token.VAR, token.VAS, token.LET, token.CONST}

// Parser consumes a flat token slice and produces the AST defined in
// package ast. Its position is always one unit ahead of the token most
// recently consumed.
type Parser struct {
	tokens   []token.Token
	position int
}

// Make constructs a new Parser over tokens produced by the lexer.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, position: 0}
}

func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

func (parser *Parser) peekNext() token.Token {
	if parser.position+1 >= len(parser.tokens) {
		return parser.tokens[len(parser.tokens)-1]
	}
	return parser.tokens[parser.position+1]
}

func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

func (parser *Parser) isFinished() bool {
	return parser.peek().TokenType == token.EOF
}

func (parser *Parser) checkType(tokenType token.TokenType) bool {
	if parser.isFinished() {
		return tokenType == token.EOF
	}
	return parser.peek().TokenType == tokenType
}

func (parser *Parser) isMatch(tokenTypes []token.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// consume advances past the current token if it matches tokenType,
// otherwise it reports a SyntaxError at the current position.
func (parser *Parser) consume(tokenType token.TokenType, errorMessage string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	currentToken := parser.peek()
	return token.Token{}, CreateSyntaxError(currentToken.Line, currentToken.Column, errorMessage)
}

func (parser *Parser) skipSemicolons() {
	for parser.checkType(token.SEMICOLON) {
		parser.advance()
	}
}

// Parse parses the entire token stream into a slice of Stmt nodes,
// continuing until end of input. Parse errors are collected but parsing
// resynchronizes at the next statement boundary to find further errors.
func (parser *Parser) Parse() ([]ast.Stmt, []error) {
	var statements []ast.Stmt
	var errors []error

	for !parser.isFinished() {
		parser.skipSemicolons()
		if parser.isFinished() {
			break
		}
		statement, err := parser.declaration()
		if err != nil {
			errors = append(errors, err)
			parser.synchronize()
			continue
		}
		statements = append(statements, statement)
	}

	return statements, errors
}

// synchronize discards tokens until it reaches a position likely to be
// the start of the next statement, so a single syntax error does not
// cascade into a wall of follow-on errors.
func (parser *Parser) synchronize() {
	for !parser.isFinished() {
		if parser.previous().TokenType == token.SEMICOLON {
			return
		}
		switch parser.peek().TokenType {
		case token.FUNC, token.VAR, token.VAS, token.LET, token.CONST, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN, token.TRY, token.SWITCH:
			return
		}
		parser.advance()
	}
}

func (parser *Parser) declaration() (ast.Stmt, error) {
	if parser.isMatch([]token.TokenType{token.FUNC}) {
		return parser.funcDeclaration()
	}
	if parser.isMatch(declKeywords) {
		stmt, err := parser.variableDeclaration(parser.previous())
		if err == nil {
			parser.skipSemicolons()
		}
		return stmt, err
	}
	return parser.statement()
}

func declKind(tok token.Token) ast.DeclKind {
	switch tok.TokenType {
	case token.VAS:
		return ast.DeclVas
	case token.LET:
		return ast.DeclLet
	case token.CONST:
		return ast.DeclConst
	default:
		return ast.DeclVar
	}
}

// variableDeclaration parses "<kind> name[: type][= expr];".
func (parser *Parser) variableDeclaration(keyword token.Token) (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "expected a variable name")
	if err != nil {
		return nil, err
	}

	var declaredType *ast.Type
	if parser.isMatch([]token.TokenType{token.COLON}) {
		declaredType, err = parser.parseType()
		if err != nil {
			return nil, err
		}
	}

	var initializer ast.Expression
	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		initializer, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}

	return ast.VarStmt{Kind: declKind(keyword), Name: name, Type: declaredType, Initializer: initializer}, nil
}

// funcDeclaration parses "func name(params) [: returnType] { body }".
func (parser *Parser) funcDeclaration() (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "expected a function name")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LPA, "expected '(' after function name"); err != nil {
		return nil, err
	}

	var params []ast.Param
	if !parser.checkType(token.RPA) {
		for {
			paramName, err := parser.consume(token.IDENTIFIER, "expected a parameter name")
			if err != nil {
				return nil, err
			}
			var paramType *ast.Type
			if parser.isMatch([]token.TokenType{token.COLON}) {
				paramType, err = parser.parseType()
				if err != nil {
					return nil, err
				}
			}
			params = append(params, ast.Param{Name: paramName, Type: paramType})
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RPA, "expected ')' after parameters"); err != nil {
		return nil, err
	}

	var returnType *ast.Type
	if parser.isMatch([]token.TokenType{token.COLON}) {
		returnType, err = parser.parseType()
		if err != nil {
			return nil, err
		}
	}

	if _, err := parser.consume(token.LCUR, "expected '{' to start function body"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}

	return ast.FuncStmt{Name: name, Params: params, ReturnType: returnType, Body: body}, nil
}

func (parser *Parser) statement() (ast.Stmt, error) {
	switch {
	case parser.isMatch([]token.TokenType{token.PRINT}):
		return parser.printStatement()
	case parser.isMatch([]token.TokenType{token.LCUR}):
		statements, err := parser.block()
		if err != nil {
			return nil, err
		}
		return ast.BlockStmt{Statements: statements}, nil
	case parser.isMatch([]token.TokenType{token.IF}):
		cond, err := parser.expression()
		if err != nil {
			return nil, err
		}
		thenBranch, err := parser.statement()
		if err != nil {
			return nil, err
		}
		var elseBranch ast.Stmt
		if parser.isMatch([]token.TokenType{token.ELSE}) {
			if elseBranch, err = parser.statement(); err != nil {
				return nil, err
			}
		}
		return ast.IfStmt{Condition: cond, ThenBranch: thenBranch, ElseBranch: elseBranch}, nil
	case parser.isMatch([]token.TokenType{token.WHILE}):
		return parser.whileStatement()
	case parser.isMatch([]token.TokenType{token.DO}):
		return parser.doWhileStatement()
	case parser.isMatch([]token.TokenType{token.FOR}):
		return parser.forStatement()
	case parser.isMatch([]token.TokenType{token.RETURN}):
		return parser.returnStatement()
	case parser.isMatch([]token.TokenType{token.BREAK}):
		keyword := parser.previous()
		parser.skipSemicolons()
		return ast.BreakStmt{Keyword: keyword}, nil
	case parser.isMatch([]token.TokenType{token.CONTINUE}):
		keyword := parser.previous()
		parser.skipSemicolons()
		return ast.ContinueStmt{Keyword: keyword}, nil
	case parser.isMatch([]token.TokenType{token.SWITCH}):
		return parser.switchStatement()
	case parser.isMatch([]token.TokenType{token.DELETE}):
		return parser.deleteStatement()
	case parser.isMatch([]token.TokenType{token.THROW}):
		return parser.throwStatement()
	case parser.isMatch([]token.TokenType{token.TRY}):
		return parser.tryStatement()
	case parser.isMatch([]token.TokenType{token.IMPORT}):
		return parser.importStatement()
	}

	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	parser.skipSemicolons()
	return ast.ExpressionStmt{Expression: expr}, nil
}

// printStatement parses "print expr (',' expr)*;".
func (parser *Parser) printStatement() (ast.Stmt, error) {
	var exprs []ast.Expression
	first, err := parser.expression()
	if err != nil {
		return nil, err
	}
	exprs = append(exprs, first)
	for parser.isMatch([]token.TokenType{token.COMMA}) {
		next, err := parser.expression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	parser.skipSemicolons()
	return ast.PrintStmt{Expressions: exprs}, nil
}

func (parser *Parser) whileStatement() (ast.Stmt, error) {
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	body, err := parser.statement()
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Condition: cond, Body: body}, nil
}

// doWhileStatement parses "do <stmt> while (cond);".
func (parser *Parser) doWhileStatement() (ast.Stmt, error) {
	body, err := parser.statement()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.WHILE, "expected 'while' after do block"); err != nil {
		return nil, err
	}
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	parser.skipSemicolons()
	return ast.DoWhileStmt{Body: body, Condition: cond}, nil
}

// forStatement parses C-style "for (init; cond; post) body" and desugars
// it into an init statement followed by a WhileStmt whose body appends
// the post expression, wrapped in its own block to scope the loop
// variable.
func (parser *Parser) forStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "expected '(' after for"); err != nil {
		return nil, err
	}

	var initStmt ast.Stmt
	if !parser.checkType(token.SEMICOLON) {
		if parser.isMatch(declKeywords) {
			s, err := parser.variableDeclaration(parser.previous())
			if err != nil {
				return nil, err
			}
			initStmt = s
		} else {
			expr, err := parser.expression()
			if err != nil {
				return nil, err
			}
			initStmt = ast.ExpressionStmt{Expression: expr}
		}
	}
	if _, err := parser.consume(token.SEMICOLON, "expected ';' after for-loop initializer"); err != nil {
		return nil, err
	}

	var cond ast.Expression
	if !parser.checkType(token.SEMICOLON) {
		var err error
		cond, err = parser.expression()
		if err != nil {
			return nil, err
		}
	} else {
		cond = ast.Literal{Value: true}
	}
	if _, err := parser.consume(token.SEMICOLON, "expected ';' after for-loop condition"); err != nil {
		return nil, err
	}

	var post ast.Expression
	if !parser.checkType(token.RPA) {
		var err error
		post, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.RPA, "expected ')' after for clauses"); err != nil {
		return nil, err
	}

	body, err := parser.statement()
	if err != nil {
		return nil, err
	}

	if post != nil {
		body = ast.BlockStmt{Statements: []ast.Stmt{body, ast.ExpressionStmt{Expression: post}}}
	}

	loop := ast.Stmt(ast.WhileStmt{Condition: cond, Body: body})
	if initStmt != nil {
		loop = ast.BlockStmt{Statements: []ast.Stmt{initStmt, loop}}
	}
	return loop, nil
}

func (parser *Parser) returnStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	var value ast.Expression
	if !parser.checkType(token.SEMICOLON) && !parser.checkType(token.RCUR) {
		var err error
		value, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	parser.skipSemicolons()
	return ast.ReturnStmt{Keyword: keyword, Value: value}, nil
}

// switchStatement parses "switch (expr) { case v: stmts* ... default: stmts* }",
// with C-style fall-through between cases.
func (parser *Parser) switchStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	if _, err := parser.consume(token.LPA, "expected '(' after switch"); err != nil {
		return nil, err
	}
	discriminant, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "expected ')' after switch expression"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "expected '{' to start switch body"); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	sawDefault := false
	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		var value ast.Expression
		if parser.isMatch([]token.TokenType{token.CASE}) {
			value, err = parser.expression()
			if err != nil {
				return nil, err
			}
		} else if parser.isMatch([]token.TokenType{token.DEFAULT}) {
			if sawDefault {
				tok := parser.previous()
				return nil, CreateSyntaxError(tok.Line, tok.Column, "switch may only have one default clause")
			}
			sawDefault = true
		} else {
			tok := parser.peek()
			return nil, CreateSyntaxError(tok.Line, tok.Column, "expected 'case' or 'default' in switch body")
		}
		if _, err := parser.consume(token.COLON, "expected ':' after case value"); err != nil {
			return nil, err
		}

		var body []ast.Stmt
		for !parser.checkType(token.CASE) && !parser.checkType(token.DEFAULT) && !parser.checkType(token.RCUR) && !parser.isFinished() {
			stmt, err := parser.declaration()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
		}
		cases = append(cases, ast.SwitchCase{Value: value, Body: body})
	}
	if _, err := parser.consume(token.RCUR, "expected '}' to close switch body"); err != nil {
		return nil, err
	}

	return ast.SwitchStmt{Keyword: keyword, Discriminant: discriminant, Cases: cases}, nil
}

// deleteStatement parses "delete target[key];".
func (parser *Parser) deleteStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	target, err := parser.expression()
	if err != nil {
		return nil, err
	}
	parser.skipSemicolons()
	return ast.DeleteStmt{Keyword: keyword, Target: target}, nil
}

func (parser *Parser) throwStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	value, err := parser.expression()
	if err != nil {
		return nil, err
	}
	parser.skipSemicolons()
	return ast.ThrowStmt{Keyword: keyword, Value: value}, nil
}

// tryStatement parses "try { ... } (catch (name) { ... })+ (finally { ... })?".
func (parser *Parser) tryStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	if _, err := parser.consume(token.LCUR, "expected '{' after try"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}

	var catches []ast.CatchClause
	for parser.isMatch([]token.TokenType{token.CATCH}) {
		if _, err := parser.consume(token.LPA, "expected '(' after catch"); err != nil {
			return nil, err
		}
		name, err := parser.consume(token.IDENTIFIER, "expected an identifier to bind the caught value")
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "expected ')' after catch binding"); err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.LCUR, "expected '{' to start catch body"); err != nil {
			return nil, err
		}
		catchBody, err := parser.block()
		if err != nil {
			return nil, err
		}
		catches = append(catches, ast.CatchClause{Name: name, Body: catchBody})
	}
	if len(catches) == 0 && !parser.checkType(token.FINALLY) {
		tok := parser.peek()
		return nil, CreateSyntaxError(tok.Line, tok.Column, "expected 'catch' or 'finally' after try block")
	}

	var finallyBody []ast.Stmt
	if parser.isMatch([]token.TokenType{token.FINALLY}) {
		if _, err := parser.consume(token.LCUR, "expected '{' after finally"); err != nil {
			return nil, err
		}
		finallyBody, err = parser.block()
		if err != nil {
			return nil, err
		}
	}

	return ast.TryStmt{Keyword: keyword, Body: body, Catches: catches, Finally: finallyBody}, nil
}

// importStatement parses 'import "path" [as alias];'.
func (parser *Parser) importStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	pathTok, err := parser.consume(token.STRING, "expected a module path string after import")
	if err != nil {
		return nil, err
	}
	alias := ""
	if parser.isMatch([]token.TokenType{token.IDENTIFIER}) && parser.previous().Lexeme == "as" {
		aliasTok, err := parser.consume(token.IDENTIFIER, "expected an identifier after 'as'")
		if err != nil {
			return nil, err
		}
		alias = aliasTok.Lexeme
	}
	parser.skipSemicolons()
	return ast.ImportStmt{Keyword: keyword, Path: pathTok.Literal.(string), Alias: alias}, nil
}

func (parser *Parser) block() ([]ast.Stmt, error) {
	var statements []ast.Stmt
	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	if _, err := parser.consume(token.RCUR, "expected '}' after block"); err != nil {
		return nil, err
	}
	return statements, nil
}

// expression is the entry point for parsing expressions: the assignment
// rule, which encompasses every lower-precedence rule.
func (parser *Parser) expression() (ast.Expression, error) {
	return parser.assignment()
}

func compoundOp(assignOp token.TokenType) token.TokenType {
	switch assignOp {
	case token.PLUS_ASSIGN:
		return token.ADD
	case token.MINUS_ASSIGN:
		return token.SUB
	case token.STAR_ASSIGN:
		return token.MULT
	case token.SLASH_ASSIGN:
		return token.DIV
	case token.PCT_ASSIGN:
		return token.PCT
	case token.FLOOR_ASSIGN:
		return token.FLOOR
	default:
		return assignOp
	}
}

// assignment parses "target = value" and its compound forms, desugaring
// compound assignment ("x += v") into "x = x + v" and member assignment
// ("m.a = v") into a SubscriptAssign keyed by the literal field name.
func (parser *Parser) assignment() (ast.Expression, error) {
	expr, err := parser.or()
	if err != nil {
		return nil, err
	}

	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		equalsToken := parser.previous()
		value, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		return makeAssignTarget(expr, value, equalsToken)
	}

	if parser.isMatch(compoundAssignTokenTypes) {
		opToken := parser.previous()
		rhs, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		desugaredOp := token.CreateToken(compoundOp(opToken.TokenType), opToken.Line, opToken.Column)
		value := ast.Expression(ast.Binary{Left: expr, Operator: desugaredOp, Right: rhs})
		return makeAssignTarget(expr, value, opToken)
	}

	return expr, nil
}

// makeAssignTarget builds the correct assignment AST node for the kind
// of lvalue expr names: a plain variable, a subscript, or a member access
// (desugared to a string-keyed subscript, per "m.a = v" == "m["a"] = v").
func makeAssignTarget(expr ast.Expression, value ast.Expression, at token.Token) (ast.Expression, error) {
	switch target := expr.(type) {
	case ast.Variable:
		return ast.Assign{Name: target.Name, Value: value}, nil
	case ast.Subscript:
		return ast.SubscriptAssign{Object: target.Object, Bracket: target.Bracket, Index: target.Index, Value: value}, nil
	case ast.Member:
		keyTok := token.CreateLiteralToken(token.STRING, target.Name.Lexeme, target.Name.Lexeme, target.Name.Line, target.Name.Column)
		return ast.SubscriptAssign{Object: target.Object, Bracket: target.Name, Index: ast.Literal{Value: keyTok.Literal}, Value: value}, nil
	default:
		return nil, CreateSyntaxError(at.Line, at.Column, "invalid assignment target")
	}
}

func (parser *Parser) or() (ast.Expression, error) {
	expr, err := parser.and()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.OR}) {
		op := parser.previous()
		right, err := parser.and()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) and() (ast.Expression, error) {
	expr, err := parser.bitwiseOr()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.AND}) {
		op := parser.previous()
		right, err := parser.bitwiseOr()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

// bitwiseOr sits where a "|" operator would in the precedence ladder;
// the grammar has no distinct bitwise-or token (AMP/CARET/TILDE cover
// and/xor/not), so this rule falls straight through to bitwiseXor.
func (parser *Parser) bitwiseOr() (ast.Expression, error) {
	return parser.bitwiseXor()
}

func (parser *Parser) bitwiseXor() (ast.Expression, error) {
	expr, err := parser.bitwiseAnd()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.CARET}) {
		op := parser.previous()
		right, err := parser.bitwiseAnd()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) bitwiseAnd() (ast.Expression, error) {
	expr, err := parser.shift()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.AMP}) {
		op := parser.previous()
		right, err := parser.shift()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) shift() (ast.Expression, error) {
	expr, err := parser.equality()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.SHL, token.SHR}) {
		op := parser.previous()
		right, err := parser.equality()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) equality() (ast.Expression, error) {
	expr, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(equalityTokenTypes) {
		op := parser.previous()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) comparison() (ast.Expression, error) {
	expr, err := parser.term()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(comparisonTokenTypes) {
		op := parser.previous()
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) term() (ast.Expression, error) {
	expr, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(termTokenTypes) {
		op := parser.previous()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) factor() (ast.Expression, error) {
	expr, err := parser.power()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(factorTokenTypes) {
		op := parser.previous()
		right, err := parser.power()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

// power parses "**", which is right-associative and binds tighter than
// the other arithmetic operators but looser than unary prefixes.
func (parser *Parser) power() (ast.Expression, error) {
	expr, err := parser.unary()
	if err != nil {
		return nil, err
	}
	if parser.isMatch([]token.TokenType{token.POW}) {
		op := parser.previous()
		right, err := parser.power()
		if err != nil {
			return nil, err
		}
		return ast.Binary{Left: expr, Operator: op, Right: right}, nil
	}
	return expr, nil
}

var unaryTokenTypes = []token.TokenType{token.BANG, token.SUB, token.NOT, token.TILDE, token.INCREMENT, token.DECREMENT}

func (parser *Parser) unary() (ast.Expression, error) {
	if parser.isMatch(unaryTokenTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Operator: operator, Right: right}, nil
	}
	return parser.postfix()
}

// postfix parses calls, subscripts, member access, method calls, and
// postfix "++"/"--", chained left to right off of a primary expression.
func (parser *Parser) postfix() (ast.Expression, error) {
	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case parser.isMatch([]token.TokenType{token.LPA}):
			expr, err = parser.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case parser.isMatch([]token.TokenType{token.LBRACKET}):
			bracket := parser.previous()
			index, err := parser.expression()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.RBRACKET, "expected ']' after subscript index"); err != nil {
				return nil, err
			}
			expr = ast.Subscript{Object: expr, Bracket: bracket, Index: index}
		case parser.isMatch([]token.TokenType{token.DOT}):
			name, err := parser.consume(token.IDENTIFIER, "expected a property name after '.'")
			if err != nil {
				return nil, err
			}
			if parser.checkType(token.LPA) {
				parser.advance()
				args, err := parser.finishArguments()
				if err != nil {
					return nil, err
				}
				expr = ast.MethodCall{Receiver: expr, Method: name, Arguments: args}
			} else {
				expr = ast.Member{Object: expr, Name: name}
			}
		case parser.isMatch([]token.TokenType{token.INCREMENT, token.DECREMENT}):
			expr = ast.Postfix{Target: expr, Operator: parser.previous()}
		default:
			return expr, nil
		}
	}
}

func (parser *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	args, err := parser.finishArguments()
	if err != nil {
		return nil, err
	}
	return ast.Call{Callee: callee, Paren: parser.previous(), Arguments: args}, nil
}

// finishArguments parses a comma-separated argument list up to and
// including the closing ')'; the opening '(' must already be consumed.
func (parser *Parser) finishArguments() ([]ast.Expression, error) {
	var args []ast.Expression
	if !parser.checkType(token.RPA) {
		for {
			arg, err := parser.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RPA, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

// primary parses the terminal productions of the expression grammar:
// literals, identifiers, grouping, array/map literals, interpolated
// strings, and the this/new/uninit keywords.
func (parser *Parser) primary() (ast.Expression, error) {
	switch {
	case parser.isMatch([]token.TokenType{token.FALSE}):
		return ast.Literal{Value: false}, nil
	case parser.isMatch([]token.TokenType{token.TRUE}):
		return ast.Literal{Value: true}, nil
	case parser.isMatch([]token.TokenType{token.SOL}):
		return ast.Literal{Value: nil}, nil
	case parser.isMatch([]token.TokenType{token.FLOAT, token.INT, token.UINT}):
		return ast.Literal{Value: parser.previous().Literal}, nil
	case parser.isMatch([]token.TokenType{token.STRING}):
		return parser.finishStringLiteral()
	case parser.isMatch([]token.TokenType{token.THIS}):
		return ast.This{Keyword: parser.previous()}, nil
	case parser.isMatch([]token.TokenType{token.UNINIT}):
		return ast.Uninit{Keyword: parser.previous()}, nil
	case parser.isMatch([]token.TokenType{token.NEW}):
		return parser.finishNew()
	case parser.isMatch([]token.TokenType{token.IDENTIFIER}):
		return ast.Variable{Name: parser.previous()}, nil
	case parser.isMatch([]token.TokenType{token.TYPE_INT, token.TYPE_UINT, token.TYPE_FLOAT, token.TYPE_STR, token.TYPE_BOOL}):
		// In an expression these type keywords name the conversion built-ins.
		return ast.Variable{Name: parser.previous()}, nil
	case parser.isMatch([]token.TokenType{token.LBRACKET}):
		return parser.finishArrayLiteral()
	case parser.isMatch([]token.TokenType{token.LCUR}):
		return parser.finishMapLiteral()
	case parser.isMatch([]token.TokenType{token.LPA}):
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "expected ')' to close grouping"); err != nil {
			return nil, err
		}
		return ast.Grouping{Expression: expr}, nil
	}

	currentToken := parser.peek()
	return nil, CreateSyntaxError(currentToken.Line, currentToken.Column, "unrecognised expression")
}

// finishStringLiteral builds a plain Literal when the preceding STRING
// token stands alone, or an InterpolatedString when it is immediately
// followed by one or more INTERP_START ... INTERP_END segments, per the
// lexer's "STRING (INTERP_START expr INTERP_END STRING)*" token shape.
func (parser *Parser) finishStringLiteral() (ast.Expression, error) {
	first := parser.previous()
	if !parser.checkType(token.INTERP_START) {
		return ast.Literal{Value: first.Literal}, nil
	}

	parts := []ast.InterpPart{{Text: first.Literal.(string)}}
	for parser.isMatch([]token.TokenType{token.INTERP_START}) {
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.INTERP_END, "expected end of string interpolation"); err != nil {
			return nil, err
		}
		textTok, err := parser.consume(token.STRING, "expected string text after interpolation")
		if err != nil {
			return nil, err
		}
		parts = append(parts, ast.InterpPart{Expr: expr})
		parts = append(parts, ast.InterpPart{Text: textTok.Literal.(string)})
	}
	return ast.InterpolatedString{Parts: parts}, nil
}

func (parser *Parser) finishArrayLiteral() (ast.Expression, error) {
	bracket := parser.previous()
	var elements []ast.Expression
	if !parser.checkType(token.RBRACKET) {
		for {
			elem, err := parser.expression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
			if parser.checkType(token.RBRACKET) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RBRACKET, "expected ']' to close array literal"); err != nil {
		return nil, err
	}
	return ast.ArrayLiteral{Bracket: bracket, Elements: elements}, nil
}

func (parser *Parser) finishMapLiteral() (ast.Expression, error) {
	brace := parser.previous()
	var entries []ast.MapEntry
	if !parser.checkType(token.RCUR) {
		for {
			key, err := parser.expression()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.COLON, "expected ':' after map key"); err != nil {
				return nil, err
			}
			value, err := parser.expression()
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.MapEntry{Key: key, Value: value})
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
			if parser.checkType(token.RCUR) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RCUR, "expected '}' to close map literal"); err != nil {
		return nil, err
	}
	return ast.MapLiteral{Brace: brace, Entries: entries}, nil
}

func (parser *Parser) finishNew() (ast.Expression, error) {
	keyword := parser.previous()
	typ, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if parser.isMatch([]token.TokenType{token.LPA}) {
		args, err = parser.finishArguments()
		if err != nil {
			return nil, err
		}
	}
	return ast.New{Keyword: keyword, Type: typ, Arguments: args}, nil
}

package parser

import (
	"linh/ast"
	"linh/token"
)

// parseType parses a type annotation per the structural type grammar:
// base names, sized int/float ("int<32>"), "str<N>", "map(K,V)" and
// "array(T)" compounds.
func (parser *Parser) parseType() (*ast.Type, error) {
	return parser.parseTypeAtom()
}

func (parser *Parser) parseTypeAtom() (*ast.Type, error) {
	tok := parser.peek()
	switch tok.TokenType {
	case token.TYPE_INT, token.TYPE_UINT:
		parser.advance()
		bits := 64
		if parser.isMatch([]token.TokenType{token.LESS}) {
			n, err := parser.consume(token.INT, "expected bit width")
			if err != nil {
				return nil, err
			}
			bits = int(n.Literal.(int64))
			if _, err := parser.consume(token.LARGER, "expected '>' to close sized type"); err != nil {
				return nil, err
			}
		}
		return &ast.Type{Kind: ast.TypeSizedInt, Signed: tok.TokenType == token.TYPE_INT, Bits: bits}, nil
	case token.TYPE_FLOAT:
		parser.advance()
		bits := 64
		if parser.isMatch([]token.TokenType{token.LESS}) {
			n, err := parser.consume(token.INT, "expected bit width")
			if err != nil {
				return nil, err
			}
			bits = int(n.Literal.(int64))
			if _, err := parser.consume(token.LARGER, "expected '>' to close sized type"); err != nil {
				return nil, err
			}
		}
		return &ast.Type{Kind: ast.TypeSizedFloat, Bits: bits}, nil
	case token.TYPE_STR:
		parser.advance()
		limit := -1
		if parser.isMatch([]token.TokenType{token.LESS}) {
			n, err := parser.consume(token.INT, "expected string length limit")
			if err != nil {
				return nil, err
			}
			limit = int(n.Literal.(int64))
			if _, err := parser.consume(token.LARGER, "expected '>' to close sized type"); err != nil {
				return nil, err
			}
		}
		return &ast.Type{Kind: ast.TypeStrLimit, Limit: limit}, nil
	case token.TYPE_BOOL:
		parser.advance()
		return &ast.Type{Kind: ast.TypeBase, Base: ast.BaseBool}, nil
	case token.TYPE_VOID:
		parser.advance()
		return &ast.Type{Kind: ast.TypeBase, Base: ast.BaseVoid}, nil
	case token.TYPE_ANY:
		parser.advance()
		return &ast.Type{Kind: ast.TypeBase, Base: ast.BaseAny}, nil
	case token.SOL:
		parser.advance()
		return &ast.Type{Kind: ast.TypeBase, Base: ast.BaseSol}, nil
	case token.IDENTIFIER:
		switch tok.Lexeme {
		case "map":
			parser.advance()
			if _, err := parser.consume(token.LPA, "expected '(' after map"); err != nil {
				return nil, err
			}
			key, err := parser.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.COMMA, "expected ',' between map key and value types"); err != nil {
				return nil, err
			}
			value, err := parser.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.RPA, "expected ')' to close map type"); err != nil {
				return nil, err
			}
			return &ast.Type{Kind: ast.TypeMap, Key: key, Value: value}, nil
		case "array":
			parser.advance()
			if _, err := parser.consume(token.LPA, "expected '(' after array"); err != nil {
				return nil, err
			}
			elem, err := parser.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.RPA, "expected ')' to close array type"); err != nil {
				return nil, err
			}
			return &ast.Type{Kind: ast.TypeArray, Element: elem}, nil
		}
	}
	return nil, CreateSyntaxError(tok.Line, tok.Column, "expected a type")
}

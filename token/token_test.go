package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		line      int32
		column    int
		wantLex   string
	}{
		{name: "ASSIGN token", tokenType: ASSIGN, line: 1, column: 3, wantLex: "="},
		{name: "MULT token", tokenType: MULT, line: 2, column: 0, wantLex: "*"},
		{name: "LPA token", tokenType: LPA, line: 5, column: 10, wantLex: "("},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.line, tt.column)
			if got.TokenType != tt.tokenType {
				t.Errorf("TokenType = %v, want %v", got.TokenType, tt.tokenType)
			}
			if got.Lexeme != tt.wantLex {
				t.Errorf("Lexeme = %q, want %q", got.Lexeme, tt.wantLex)
			}
			if got.Line != tt.line || got.Column != tt.column {
				t.Errorf("position = (%d,%d), want (%d,%d)", got.Line, got.Column, tt.line, tt.column)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	tok := CreateLiteralToken(INT, int64(42), "42", 3, 1)
	if tok.Literal != int64(42) {
		t.Errorf("Literal = %v, want 42", tok.Literal)
	}
	if tok.Lexeme != "42" {
		t.Errorf("Lexeme = %q, want %q", tok.Lexeme, "42")
	}
}

func TestDeclarationKeywordsAreRegistered(t *testing.T) {
	// "vas" and "let" must both resolve, as declaration keywords living
	// alongside "var"/"const" (see DESIGN.md's open-question resolution).
	for _, kw := range []string{"var", "vas", "let", "const"} {
		if _, ok := KeyWords[kw]; !ok {
			t.Errorf("expected %q to be a registered keyword", kw)
		}
	}
}

package lexer

import (
	"linh/token"
	"testing"
)

func scanTypes(t *testing.T, input string) []token.TokenType {
	t.Helper()
	toks, err := New(input).Scan()
	if err != nil {
		t.Fatalf("Scan(%q) returned error: %v", input, err)
	}
	var types []token.TokenType
	for _, tok := range toks {
		types = append(types, tok.TokenType)
	}
	return types
}

func assertTypes(t *testing.T, input string, want []token.TokenType) {
	t.Helper()
	got := scanTypes(t, input)
	if len(got) != len(want) {
		t.Fatalf("Scan(%q) produced %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scan(%q)[%d] = %v, want %v", input, i, got[i], want[i])
		}
	}
}

func TestOperators(t *testing.T) {
	assertTypes(t, "==/=*+>-<!=<=>=!", []token.TokenType{
		token.EQUAL_EQUAL, token.SLASH_ASSIGN, token.MULT, token.ADD,
		token.LARGER, token.SUB, token.LESS, token.NOT_EQUAL, token.LESS_EQUAL,
		token.LARGER_EQUAL, token.BANG, token.EOF,
	})
}

func TestCompoundAssignAndShift(t *testing.T) {
	assertTypes(t, "a += 1; b <<= 2", []token.TokenType{
		token.IDENTIFIER, token.PLUS_ASSIGN, token.INT, token.SEMICOLON,
		token.IDENTIFIER, token.SHL, token.ASSIGN, token.INT, token.EOF,
	})
}

func TestDelimiters(t *testing.T) {
	assertTypes(t, "(){}[]**;", []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR, token.LBRACKET,
		token.RBRACKET, token.POW, token.SEMICOLON, token.EOF,
	})
}

func TestPostfixAndFloorOps(t *testing.T) {
	assertTypes(t, "a++ b-- 7#2 x#=1", []token.TokenType{
		token.IDENTIFIER, token.INCREMENT, token.IDENTIFIER, token.DECREMENT,
		token.INT, token.FLOOR, token.INT, token.IDENTIFIER, token.FLOOR_ASSIGN, token.INT,
		token.EOF,
	})
}

func TestNumberLiterals(t *testing.T) {
	toks, err := New("42 3.14 7u").Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if toks[0].TokenType != token.INT || toks[0].Literal != int64(42) {
		t.Errorf("got %+v, want INT 42", toks[0])
	}
	if toks[1].TokenType != token.FLOAT || toks[1].Literal != float64(3.14) {
		t.Errorf("got %+v, want FLOAT 3.14", toks[1])
	}
	if toks[2].TokenType != token.UINT || toks[2].Literal != uint64(7) {
		t.Errorf("got %+v, want UINT 7", toks[2])
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	assertTypes(t, "var vas let const x1 fn", []token.TokenType{
		token.VAR, token.VAS, token.LET, token.CONST, token.IDENTIFIER, token.FUNC, token.EOF,
	})
}

func TestLineAndBlockComments(t *testing.T) {
	assertTypes(t, "1 // trailing comment\n2 /* block\nspanning */ 3", []token.TokenType{
		token.INT, token.INT, token.INT, token.EOF,
	})
}

func TestStringLiteralQuoteKinds(t *testing.T) {
	toks, err := New(`"double" 'single' ` + "`raw\nline`").Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if toks[0].Literal != "double" {
		t.Errorf("got %q, want %q", toks[0].Literal, "double")
	}
	if toks[1].Literal != "single" {
		t.Errorf("got %q, want %q", toks[1].Literal, "single")
	}
	if toks[2].Literal != "raw\nline" {
		t.Errorf("got %q, want %q", toks[2].Literal, "raw\nline")
	}
}

func TestStringEscapes(t *testing.T) {
	toks, err := New(`"a\nb\tc\"d"`).Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := "a\nb\tc\"d"
	if toks[0].Literal != want {
		t.Errorf("got %q, want %q", toks[0].Literal, want)
	}
}

func TestStringInterpolation(t *testing.T) {
	got := scanTypes(t, `"hi &{name}!"`)
	want := []token.TokenType{
		token.STRING, token.INTERP_START, token.IDENTIFIER, token.INTERP_END, token.STRING, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStringInterpolationWithNestedBraces(t *testing.T) {
	got := scanTypes(t, `"&{ {a: 1} }"`)
	// STRING(""), INTERP_START, LCUR, IDENTIFIER, COLON, INT, RCUR, INTERP_END, STRING(""), EOF
	want := []token.TokenType{
		token.STRING, token.INTERP_START, token.LCUR, token.IDENTIFIER, token.COLON,
		token.INT, token.RCUR, token.INTERP_END, token.STRING, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	_, err := New(`"never closed`).Scan()
	if err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestUnterminatedBlockCommentIsError(t *testing.T) {
	_, err := New("1 /* never closed").Scan()
	if err == nil {
		t.Fatal("expected an error for an unterminated block comment")
	}
}

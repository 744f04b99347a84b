package rift

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, src string) []Token {
	t.Helper()
	toks, errs := NewLexer(src).ScanTokens()
	require.Empty(t, errs, "unexpected lex errors for %q", src)
	return toks
}

func typesWithoutEOF(toks []Token) []Type {
	out := make([]Type, 0, len(toks))
	for _, tok := range toks {
		if tok.Type == EOF {
			continue
		}
		out = append(out, tok.Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []Type) []Token {
	t.Helper()
	got := scan(t, src)
	require.Equal(t, want, typesWithoutEOF(got), "source:\n%s", src)
	return got
}

func TestLexer_VarDecl(t *testing.T) {
	wantTypes(t, `var x = 1;`, []Type{VAR, IDENTIFIER, EQUAL, NUMBER, SEMICOLON})
}

func TestLexer_ConstIdentifier(t *testing.T) {
	toks := wantTypes(t, `const $k = 5;`, []Type{CONST, CONST_IDENTIFIER, EQUAL, NUMBER, SEMICOLON})
	require.Equal(t, "$k", toks[1].Lexeme)
}

func TestLexer_Operators(t *testing.T) {
	wantTypes(t, `a && b || c ?? d`, []Type{IDENTIFIER, AND, IDENTIFIER, OR, IDENTIFIER, NULLISH, IDENTIFIER})
}

func TestLexer_Comparisons(t *testing.T) {
	wantTypes(t, `a <= b >= c != d == e`,
		[]Type{IDENTIFIER, LESS_EQUAL, IDENTIFIER, GREATER_EQUAL, IDENTIFIER, BANG_EQUAL, IDENTIFIER, EQUAL_EQUAL, IDENTIFIER})
}

func TestLexer_LineComment(t *testing.T) {
	toks := scan(t, "var x = 1; // trailing comment\nvar y = 2;")
	require.Equal(t,
		[]Type{VAR, IDENTIFIER, EQUAL, NUMBER, SEMICOLON, VAR, IDENTIFIER, EQUAL, NUMBER, SEMICOLON},
		typesWithoutEOF(toks))
}

func TestLexer_StringEscapes(t *testing.T) {
	toks := scan(t, `"a\nb\tc\"d"`)
	require.Equal(t, "a\nb\tc\"d", toks[0].Literal)
}

func TestLexer_NumberLiteral(t *testing.T) {
	toks := scan(t, `3.14`)
	require.Equal(t, 3.14, toks[0].Literal)
}

func TestLexer_UnterminatedString(t *testing.T) {
	_, errs := NewLexer(`"unterminated`).ScanTokens()
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "unterminated string")
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	_, errs := NewLexer(`@`).ScanTokens()
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "unexpected character")
}

func TestLexer_KeywordsVsIdentifiers(t *testing.T) {
	wantTypes(t, `if elif else for while return fun print var const true false nil notakeyword`,
		[]Type{IF, ELIF, ELSE, FOR, WHILE, RETURN, FUN, PRINT, VAR, CONST, TRUE, FALSE, NIL, IDENTIFIER})
}

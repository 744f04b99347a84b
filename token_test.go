package rift

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToken_MatchesWildcardLexeme(t *testing.T) {
	tok := Token{Type: PLUS, Lexeme: "+"}
	require.True(t, tok.Matches(PLUS, ""))
	require.True(t, tok.Matches(PLUS, "+"))
	require.False(t, tok.Matches(PLUS, "-"))
	require.False(t, tok.Matches(MINUS, ""))
}

func TestToken_StringIncludesTypeAndLexeme(t *testing.T) {
	tok := Token{Type: IDENTIFIER, Lexeme: "foo"}
	require.Equal(t, `IDENTIFIER "foo"`, tok.String())
}

func TestType_StringFallsBackForUnknown(t *testing.T) {
	require.Equal(t, "Type(9999)", Type(9999).String())
}

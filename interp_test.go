package rift

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// runSrc lexes, parses and evaluates src against a fresh Environment,
// returning the rendered per-statement results and everything printed.
func runSrc(t *testing.T, src string) ([]string, string, error) {
	t.Helper()
	env := NewEnvironment()
	lex := NewLexer(src)
	toks, lexErrs := lex.ScanTokens()
	require.Empty(t, lexErrs, "unexpected lex errors")

	p := NewParser(toks, env)
	prog, report := p.Parse()
	if prog == nil {
		t.Fatalf("parse failed: %v", report.Errors())
	}

	var out bytes.Buffer
	in := NewInterpreter(env)
	in.Out = &out
	results, err := in.Run(prog)
	return results, out.String(), err
}

// parseErr lexes and parses src against a fresh Environment, returning
// the collected diagnostics without evaluating anything.
func parseErr(t *testing.T, src string) []error {
	t.Helper()
	env := NewEnvironment()
	toks, lexErrs := NewLexer(src).ScanTokens()
	require.Empty(t, lexErrs)
	_, report := NewParser(toks, env).Parse()
	return report.Errors()
}

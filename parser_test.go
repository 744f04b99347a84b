package rift

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParser_DuplicateDeclaration(t *testing.T) {
	errs := parseErr(t, `var x = 1; var x = 2;`)
	require.Len(t, errs, 1)
	pe, ok := errs[0].(*ParseError)
	require.True(t, ok)
	require.Equal(t, DuplicateDeclaration, pe.Kind)
}

func TestParser_UndefinedVariableAssignment(t *testing.T) {
	errs := parseErr(t, `y = 1;`)
	require.Len(t, errs, 1)
	pe, ok := errs[0].(*ParseError)
	require.True(t, ok)
	require.Equal(t, UndefinedVariable, pe.Kind)
}

func TestParser_UndefinedVariableReference(t *testing.T) {
	errs := parseErr(t, `print(y);`)
	require.Len(t, errs, 1)
	require.Equal(t, UndefinedVariable, errs[0].(*ParseError).Kind)
}

func TestParser_ConstRequiresInitializer(t *testing.T) {
	errs := parseErr(t, `const $k;`)
	require.Len(t, errs, 1)
	require.Equal(t, ParseErr, errs[0].(*ParseError).Kind)
}

func TestParser_ShadowingInNestedScopeIsFine(t *testing.T) {
	errs := parseErr(t, `var x = 1; { var x = 2; print(x); }`)
	require.Empty(t, errs)
}

func TestParser_FunctionParamsVisibleInBody(t *testing.T) {
	errs := parseErr(t, `fun add(a, b) { return a + b; }`)
	require.Empty(t, errs)
}

func TestParser_MultipleErrorsCollectedViaSynchronize(t *testing.T) {
	errs := parseErr(t, `var x = ; var y = 2;;`)
	require.NotEmpty(t, errs)
}

func TestParser_ForLoopVariableScopedToLoop(t *testing.T) {
	errs := parseErr(t, `for (var i = 0; i < 3; i = i + 1) { print(i); } print(i);`)
	require.Len(t, errs, 1)
	require.Equal(t, UndefinedVariable, errs[0].(*ParseError).Kind)
}

func TestParser_TernaryAndNullishParse(t *testing.T) {
	errs := parseErr(t, `var a = 1; var b = a ?? 2; var c = a > 0 ? "yes" : "no";`)
	require.Empty(t, errs)
}

package rift

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvironment_DeclareAndGet(t *testing.T) {
	env := NewEnvironment()
	env.SetDeclare("x", NumberVal(1), false)
	v, ok := env.Get("x")
	require.True(t, ok)
	require.Equal(t, NumberVal(1), v)
}

func TestEnvironment_UnresolvedNameIsNotOK(t *testing.T) {
	env := NewEnvironment()
	_, ok := env.Get("missing")
	require.False(t, ok)
}

func TestEnvironment_PushPopLeavesChainUnchanged(t *testing.T) {
	env := NewEnvironment()
	env.SetDeclare("x", NumberVal(1), false)
	before := env.top
	env.PushScope()
	env.SetDeclare("y", NumberVal(2), false)
	env.PopScope()
	require.Same(t, before, env.top)
	_, ok := env.Get("y")
	require.False(t, ok)
	v, ok := env.Get("x")
	require.True(t, ok)
	require.Equal(t, NumberVal(1), v)
}

func TestEnvironment_PoppingGlobalPanics(t *testing.T) {
	env := NewEnvironment()
	require.Panics(t, func() { env.PopScope() })
}

func TestEnvironment_ShadowingInNestedScope(t *testing.T) {
	env := NewEnvironment()
	env.SetDeclare("x", NumberVal(1), false)
	env.PushScope()
	env.SetDeclare("x", NumberVal(2), false)
	v, _ := env.Get("x")
	require.Equal(t, NumberVal(2), v)
	env.PopScope()
	v, _ = env.Get("x")
	require.Equal(t, NumberVal(1), v)
}

func TestEnvironment_SetAssignWalksOutward(t *testing.T) {
	env := NewEnvironment()
	env.SetDeclare("x", NumberVal(1), false)
	env.PushScope()
	err := env.SetAssign("x", NumberVal(9))
	require.NoError(t, err)
	env.PopScope()
	v, _ := env.Get("x")
	require.Equal(t, NumberVal(9), v)
}

func TestEnvironment_SetAssignUndefinedIsError(t *testing.T) {
	env := NewEnvironment()
	err := env.SetAssign("nope", NumberVal(1))
	require.Error(t, err)
	require.Equal(t, UndefinedVariable, err.(*RuntimeError).Kind)
}

func TestEnvironment_SetAssignToConstIsError(t *testing.T) {
	env := NewEnvironment()
	env.SetDeclare("k", NumberVal(1), true)
	err := env.SetAssign("k", NumberVal(2))
	require.Error(t, err)
	require.Equal(t, ConstReassignment, err.(*RuntimeError).Kind)
}

func TestEnvironment_DeclaredInCurrentScopeOnlyChecksInnermost(t *testing.T) {
	env := NewEnvironment()
	env.SetDeclare("x", NumberVal(1), false)
	env.PushScope()
	require.False(t, env.DeclaredInCurrentScope("x"))
	env.SetDeclare("x", NumberVal(2), false)
	require.True(t, env.DeclaredInCurrentScope("x"))
}

func TestEnvironment_GlobalIgnoresPushedScopes(t *testing.T) {
	env := NewEnvironment()
	env.SetDeclare("x", NumberVal(1), false)
	env.PushScope()
	env.SetDeclare("y", NumberVal(2), false)

	g := env.Global()
	_, ok := g.Get("y")
	require.False(t, ok, "global view should not see the pushed frame's bindings")
	v, ok := g.Get("x")
	require.True(t, ok)
	require.Equal(t, NumberVal(1), v)
}

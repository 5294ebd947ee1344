package gosymdiff_test

import (
	"testing"

	"github.com/njchilds90/gosymdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupOperator(t *testing.T) {
	x, y := gosymdiff.Var("x"), gosymdiff.Var("y")
	for tok, want := range map[string]gosymdiff.Kind{
		"+": gosymdiff.KindAdd,
		"-": gosymdiff.KindSub,
		"*": gosymdiff.KindMul,
		"/": gosymdiff.KindDiv,
		"^": gosymdiff.KindPow,
	} {
		f, err := gosymdiff.LookupOperator(tok)
		require.NoError(t, err, tok)
		assert.Equal(t, want, f(x, y).Kind(), tok)
	}

	_, err := gosymdiff.LookupOperator("%")
	assert.ErrorIs(t, err, gosymdiff.ErrUnsupportedOperator)
	assert.Contains(t, err.Error(), "%")
}

func TestLookupUnary(t *testing.T) {
	f, err := gosymdiff.LookupUnary("-")
	require.NoError(t, err)
	assert.Equal(t, gosymdiff.KindNeg, f(gosymdiff.Var("x")).Kind())

	_, err = gosymdiff.LookupUnary("+")
	assert.ErrorIs(t, err, gosymdiff.ErrUnsupportedOperator)
}

func TestLookupFunction(t *testing.T) {
	x := gosymdiff.Var("x")
	for _, name := range gosymdiff.FunctionNames() {
		f, err := gosymdiff.LookupFunction(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f(x), name)
	}

	f, err := gosymdiff.LookupFunction("sqrt")
	require.NoError(t, err)
	assert.Equal(t, "(x ^ 0.5)", f(x).String())

	_, err = gosymdiff.LookupFunction("sinh")
	assert.ErrorIs(t, err, gosymdiff.ErrUnsupportedFunction)
	_, err = gosymdiff.LookupFunction("sign")
	assert.ErrorIs(t, err, gosymdiff.ErrUnsupportedFunction, "sign is built directly, not by name")
}

func TestFunctionNames(t *testing.T) {
	assert.Equal(t, []string{"abs", "cos", "exp", "log", "sin", "sqrt", "tan"}, gosymdiff.FunctionNames())
}

// ============================================================
// Scope tests
// ============================================================

func TestScope(t *testing.T) {
	s := gosymdiff.NewScope()
	_, ok := s.Lookup("x")
	assert.False(t, ok)

	x := s.Var("x")
	assert.Same(t, x, s.Var("x"))
	got, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Same(t, x, got)

	s.Var("b")
	s.Var("a")
	assert.Equal(t, []string{"a", "b", "x"}, s.Names())

	other := gosymdiff.NewScope()
	assert.NotSame(t, x, other.Var("x"))
}

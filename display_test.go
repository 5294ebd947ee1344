package gosymdiff_test

import (
	"math"
	"strings"
	"testing"

	"github.com/njchilds90/gosymdiff"
	"github.com/stretchr/testify/assert"
	"gotest.tools/v3/golden"
)

func TestString_Forms(t *testing.T) {
	s := gosymdiff.NewScope()
	x, y := s.Var("x"), s.Var("y")
	cases := []struct {
		expr *gosymdiff.Node
		want string
	}{
		{gosymdiff.Const(2.5), "2.5"},
		{gosymdiff.Const(-3), "-3"},
		{gosymdiff.Const(1e21), "1e+21"},
		{gosymdiff.Const(math.Inf(1)), "+Inf"},
		{gosymdiff.Neg(gosymdiff.Add(x, y)), "(-(x + y))"},
		{gosymdiff.Sub(x, gosymdiff.Sub(y, x)), "(x - (y - x))"},
		{gosymdiff.Div(gosymdiff.Sign(x), gosymdiff.Abs(y)), "(sign(x) / abs(y))"},
		{gosymdiff.Pow(gosymdiff.Exp(x), gosymdiff.Log(y)), "(exp(x) ^ log(y))"},
		{gosymdiff.Tan(gosymdiff.Mul(x, gosymdiff.Const(2))), "tan((x * 2))"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.expr.String())
	}
}

func TestLaTeX(t *testing.T) {
	s := gosymdiff.NewScope()
	x, y, z := s.Var("x"), s.Var("y"), s.Var("z")
	one := gosymdiff.Const(1)
	cases := []struct {
		expr *gosymdiff.Node
		want string
	}{
		{gosymdiff.Add(x, gosymdiff.Mul(gosymdiff.Const(2), y)), `x + 2 \cdot y`},
		{gosymdiff.Div(gosymdiff.Sin(x), y), `\frac{\sin\left(x\right)}{y}`},
		{gosymdiff.Pow(gosymdiff.Add(x, one), gosymdiff.Const(2)), `\left(x + 1\right)^{2}`},
		{gosymdiff.Neg(gosymdiff.Add(x, y)), `-\left(x + y\right)`},
		{gosymdiff.Sub(x, gosymdiff.Sub(y, z)), `x - \left(y - z\right)`},
		{gosymdiff.Mul(gosymdiff.Add(x, y), z), `\left(x + y\right) \cdot z`},
		{gosymdiff.Log(x), `\ln\left(x\right)`},
		{gosymdiff.Abs(x), `\left|x\right|`},
		{gosymdiff.Sign(x), `\operatorname{sign}\left(x\right)`},
		{gosymdiff.Exp(x), `\exp\left(x\right)`},
		{gosymdiff.Cos(x), `\cos\left(x\right)`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.expr.LaTeX())
	}
}

func TestDerivativeStrings_Golden(t *testing.T) {
	f, a, b := scenarioExpr()
	lines := []string{
		"f    = " + f.String(),
		"d/da = " + gosymdiff.Derivative(f, a).String(),
		"d/db = " + gosymdiff.Derivative(f, b).String(),
	}
	golden.Assert(t, strings.Join(lines, "\n")+"\n", "derivatives.golden")
}

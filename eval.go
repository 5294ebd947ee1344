package gosymdiff

import (
	"maps"
	"math"

	"github.com/pkg/errors"
)

// Bindings maps variable names to values for evaluation.
type Bindings map[string]float64

// Equal reports whether both binding sets hold exactly the same names with
// bit-identical values: 0 and -0 differ, and a NaN equals the same NaN.
func (b Bindings) Equal(other Bindings) bool { return maps.EqualFunc(b, other, sameBits) }

func sameBits(x, y float64) bool { return math.Float64bits(x) == math.Float64bits(y) }

func (b Bindings) Clone() Bindings {
	if b == nil {
		return Bindings{}
	}
	return maps.Clone(b)
}

type evalFunc func(n *Node, b Bindings) (float64, error)

// Eval evaluates n without any caching. Domain errors (division by zero,
// log of a negative number, ...) are not errors: they produce Inf or NaN
// exactly as the float64 arithmetic does.
func (n *Node) Eval(b Bindings) (float64, error) {
	return n.evalWith(b, (*Node).Eval)
}

// Eval evaluates n with a scratch table that lives for this call only, so a
// sub-expression shared by several parents is computed once. Nothing is
// retained between calls.
func Eval(n *Node, b Bindings) (float64, error) {
	scratch := make(map[uint64]float64)
	var eval evalFunc
	eval = func(n *Node, b Bindings) (float64, error) {
		if v, ok := scratch[n.id]; ok {
			return v, nil
		}
		v, err := n.evalWith(b, eval)
		if err != nil {
			return 0, err
		}
		scratch[n.id] = v
		return v, nil
	}
	return eval(n, b)
}

// evalWith applies n's own arithmetic, evaluating operands through child.
func (n *Node) evalWith(b Bindings, child evalFunc) (float64, error) {
	switch n.kind {
	case KindConst:
		return n.value, nil
	case KindVar:
		v, ok := b[n.name]
		if !ok {
			return 0, errors.Wrapf(ErrUndefinedVariable, "evaluate %s", n.name)
		}
		return v, nil
	}

	x, err := child(n.a, b)
	if err != nil {
		return 0, err
	}
	if n.kind.Arity() == 1 {
		return unary(n.kind, x), nil
	}
	y, err := child(n.b, b)
	if err != nil {
		return 0, err
	}
	return binary(n.kind, x, y), nil
}

func unary(k Kind, x float64) float64 {
	switch k {
	case KindNeg:
		return -x
	case KindSin:
		return math.Sin(x)
	case KindCos:
		return math.Cos(x)
	case KindTan:
		return math.Tan(x)
	case KindLog:
		return math.Log(x)
	case KindExp:
		return math.Exp(x)
	case KindSign:
		return sign(x)
	case KindAbs:
		return math.Abs(x)
	}
	panic("gosymdiff: not a unary kind: " + k.String())
}

func binary(k Kind, x, y float64) float64 {
	switch k {
	case KindAdd:
		return x + y
	case KindSub:
		return x - y
	case KindMul:
		return x * y
	case KindDiv:
		return x / y
	case KindPow:
		return math.Pow(x, y)
	}
	panic("gosymdiff: not a binary kind: " + k.String())
}

// sign returns -1, 0 or 1; zero (of either sign) and NaN pass through.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

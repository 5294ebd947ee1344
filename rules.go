package gosymdiff

import "fmt"

// Rule maps the upstream gradient g flowing into a node to the chain-rule
// contribution for one of its operands.
type Rule func(g *Node) *Node

// Rules returns one Rule per operand, in the same order as Operands.
func (n *Node) Rules() []Rule {
	rules := make([]Rule, n.kind.Arity())
	for i := range rules {
		rules[i] = func(g *Node) *Node { return n.localGradient(i, g) }
	}
	return rules
}

// localGradient is the contribution expression for operand i given the
// upstream gradient g. Every call builds fresh nodes; a and b are reused as
// shared operands, never copied.
func (n *Node) localGradient(i int, g *Node) *Node {
	a, b := n.a, n.b
	switch n.kind {
	case KindAdd:
		return g
	case KindSub:
		if i == 0 {
			return g
		}
		return Neg(g)
	case KindMul:
		if i == 0 {
			return Mul(b, g)
		}
		return Mul(a, g)
	case KindDiv:
		if i == 0 {
			return Div(g, b)
		}
		return Mul(Div(Neg(a), Pow(b, Const(2))), g)
	case KindPow:
		if i == 0 {
			return Mul(Mul(b, Pow(a, Sub(b, Const(1)))), g)
		}
		return Mul(Mul(Pow(a, b), Log(a)), g)
	case KindSin:
		return Mul(Cos(a), g)
	case KindCos:
		return Mul(Neg(Sin(a)), g)
	case KindTan:
		return Div(g, Pow(Cos(a), Const(2)))
	case KindLog:
		return Div(g, a)
	case KindNeg:
		return Neg(g)
	case KindExp:
		// d/da e^a is the node itself.
		return Mul(n, g)
	case KindSign:
		// Zero everywhere by convention, including the undefined point at 0.
		return Const(0)
	case KindAbs:
		return Mul(Sign(a), g)
	}
	panic(fmt.Sprintf("gosymdiff: %s has no operand %d", n.kind, i))
}

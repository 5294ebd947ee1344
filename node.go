// Package gosymdiff provides reverse-mode symbolic differentiation for Go.
//
// Design goals:
//   - Expressions are an immutable DAG of scalar nodes with stable identities
//   - Derivatives are ordinary nodes: differentiate them again, evaluate or print them
//   - Shared sub-expressions accumulate one contribution per path (multivariable chain rule)
//   - Evaluation caching lives outside the nodes, in a swappable Evaluator
//   - AI/LLM friendly: JSON tree and tape forms, tool-call API
package gosymdiff

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ============================================================
// Kind: closed set of node variants
// ============================================================

type Kind uint8

const (
	KindConst Kind = iota
	KindVar
	KindNeg
	KindSin
	KindCos
	KindTan
	KindLog
	KindExp
	KindSign
	KindAbs
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPow

	numKinds
)

var kindNames = [numKinds]string{
	KindConst: "const",
	KindVar:   "var",
	KindNeg:   "neg",
	KindSin:   "sin",
	KindCos:   "cos",
	KindTan:   "tan",
	KindLog:   "log",
	KindExp:   "exp",
	KindSign:  "sign",
	KindAbs:   "abs",
	KindAdd:   "add",
	KindSub:   "sub",
	KindMul:   "mul",
	KindDiv:   "div",
	KindPow:   "pow",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Arity is the number of operands a node of this kind carries.
func (k Kind) Arity() int {
	switch {
	case k <= KindVar:
		return 0
	case k <= KindAbs:
		return 1
	case k < numKinds:
		return 2
	}
	panic(fmt.Sprintf("gosymdiff: unknown kind %d", uint8(k)))
}

// ParseKind maps a canonical kind name ("add", "sin", ...) back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// ============================================================
// Node
// ============================================================

// Node is one vertex of an expression graph. Nodes are immutable once built
// and may be shared as operands by any number of parents. Each node gets a
// process-unique ID at construction; gradient accumulation and evaluation
// caching are keyed on that ID, never on structure.
type Node struct {
	id    uint64
	kind  Kind
	value float64
	name  string
	a, b  *Node
}

var lastID atomic.Uint64

func newNode(kind Kind, a, b *Node) *Node {
	if kind.Arity() >= 1 && a == nil || kind.Arity() == 2 && b == nil {
		panic("gosymdiff: nil operand for " + kind.String())
	}
	return &Node{id: lastID.Add(1), kind: kind, a: a, b: b}
}

func Const(v float64) *Node {
	n := newNode(KindConst, nil, nil)
	n.value = v
	return n
}

func Var(name string) *Node {
	n := newNode(KindVar, nil, nil)
	n.name = name
	return n
}

func Neg(a *Node) *Node  { return newNode(KindNeg, a, nil) }
func Sin(a *Node) *Node  { return newNode(KindSin, a, nil) }
func Cos(a *Node) *Node  { return newNode(KindCos, a, nil) }
func Tan(a *Node) *Node  { return newNode(KindTan, a, nil) }
func Log(a *Node) *Node  { return newNode(KindLog, a, nil) }
func Exp(a *Node) *Node  { return newNode(KindExp, a, nil) }
func Sign(a *Node) *Node { return newNode(KindSign, a, nil) }
func Abs(a *Node) *Node  { return newNode(KindAbs, a, nil) }

func Add(a, b *Node) *Node { return newNode(KindAdd, a, b) }
func Sub(a, b *Node) *Node { return newNode(KindSub, a, b) }
func Mul(a, b *Node) *Node { return newNode(KindMul, a, b) }
func Div(a, b *Node) *Node { return newNode(KindDiv, a, b) }
func Pow(a, b *Node) *Node { return newNode(KindPow, a, b) }

// Sqrt is Pow(a, 0.5); there is no dedicated square-root kind.
func Sqrt(a *Node) *Node { return Pow(a, Const(0.5)) }

// NewUnary builds a one-operand node of the given kind.
func NewUnary(kind Kind, a *Node) (*Node, error) {
	if kind >= numKinds || kind.Arity() != 1 {
		return nil, errors.Wrapf(ErrUnsupportedOperator, "%s is not a unary kind", kind)
	}
	return newNode(kind, a, nil), nil
}

// NewBinary builds a two-operand node of the given kind.
func NewBinary(kind Kind, a, b *Node) (*Node, error) {
	if kind >= numKinds || kind.Arity() != 2 {
		return nil, errors.Wrapf(ErrUnsupportedOperator, "%s is not a binary kind", kind)
	}
	return newNode(kind, a, b), nil
}

func (n *Node) ID() uint64 { return n.id }
func (n *Node) Kind() Kind { return n.kind }

// Value is the constant's value; zero for every other kind.
func (n *Node) Value() float64 { return n.value }

// Name is the variable's name; empty for every other kind.
func (n *Node) Name() string { return n.name }

func (n *Node) IsConst() bool { return n.kind == KindConst }
func (n *Node) IsVar() bool   { return n.kind == KindVar }

// Operands returns the node's children in semantic order (a, then b).
func (n *Node) Operands() []*Node {
	switch n.kind.Arity() {
	case 1:
		return []*Node{n.a}
	case 2:
		return []*Node{n.a, n.b}
	}
	return nil
}

package gosymdiff

import (
	"slices"

	"github.com/pkg/errors"
)

// ============================================================
// Token table for graph builders
// ============================================================

type UnaryFunc func(a *Node) *Node
type BinaryFunc func(a, b *Node) *Node

var binaryOperators = map[string]BinaryFunc{
	"+": Add,
	"-": Sub,
	"*": Mul,
	"/": Div,
	"^": Pow,
}

var unaryOperators = map[string]UnaryFunc{
	"-": Neg,
}

var functions = map[string]UnaryFunc{
	"sin":  Sin,
	"cos":  Cos,
	"tan":  Tan,
	"log":  Log,
	"sqrt": Sqrt,
	"exp":  Exp,
	"abs":  Abs,
}

// LookupOperator returns the constructor for a binary operator token.
func LookupOperator(tok string) (BinaryFunc, error) {
	if f, ok := binaryOperators[tok]; ok {
		return f, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedOperator, "binary %q", tok)
}

// LookupUnary returns the constructor for a prefix operator token.
func LookupUnary(tok string) (UnaryFunc, error) {
	if f, ok := unaryOperators[tok]; ok {
		return f, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedOperator, "unary %q", tok)
}

// LookupFunction returns the constructor for a named function.
func LookupFunction(name string) (UnaryFunc, error) {
	if f, ok := functions[name]; ok {
		return f, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFunction, "%q", name)
}

// FunctionNames lists the supported function names, sorted.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ============================================================
// Scope: variable interning
// ============================================================

// Scope hands out one Variable node per name. Accumulation matches by node
// identity, so every occurrence of a variable in a graph must be the same
// node for its contributions to be summed; building through a Scope
// guarantees that.
type Scope struct {
	vars map[string]*Node
}

func NewScope() *Scope { return &Scope{vars: make(map[string]*Node)} }

// Var returns the scope's node for name, creating it on first use.
func (s *Scope) Var(name string) *Node {
	if v, ok := s.vars[name]; ok {
		return v
	}
	v := Var(name)
	s.vars[name] = v
	return v
}

// Lookup returns the node for name if the scope has created one.
func (s *Scope) Lookup(name string) (*Node, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Names lists the scope's variable names, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

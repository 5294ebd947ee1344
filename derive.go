package gosymdiff

import (
	"iter"
	"log/slog"
)

// ============================================================
// Reverse-mode differentiation
// ============================================================

// Pair is one chain-rule contribution: the gradient expression reaching
// Node along a single root-to-node path.
type Pair struct {
	Node         *Node
	Contribution *Node
}

// Pairs walks every path from root to the leaves, propagating seed through
// each node's local rules. It yields (root, seed) first, then all pairs
// under operand a, then all pairs under operand b. A node reachable along k
// paths is yielded k times, each with its own path's contribution; summing
// them gives the total derivative. The number of pairs is CountPaths(root),
// which can grow exponentially with depth when sub-expressions are heavily
// shared.
//
// Each range over the returned sequence starts a fresh walk. The walk uses
// an explicit stack, so graph depth is not limited by the goroutine stack.
func Pairs(root, seed *Node) iter.Seq2[*Node, *Node] {
	return func(yield func(*Node, *Node) bool) {
		stack := []Pair{{Node: root, Contribution: seed}}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(p.Node, p.Contribution) {
				return
			}
			n, g := p.Node, p.Contribution
			switch n.kind.Arity() {
			case 1:
				stack = append(stack, Pair{Node: n.a, Contribution: n.localGradient(0, g)})
			case 2:
				// b is pushed first so the whole a subtree is yielded before it.
				stack = append(stack,
					Pair{Node: n.b, Contribution: n.localGradient(1, g)},
					Pair{Node: n.a, Contribution: n.localGradient(0, g)},
				)
			}
		}
	}
}

// CollectPairs is Pairs gathered into a slice, same order and multiplicity.
func CollectPairs(root, seed *Node) []Pair {
	var out []Pair
	for n, g := range Pairs(root, seed) {
		out = append(out, Pair{Node: n, Contribution: g})
	}
	return out
}

// All adapts a slice of pairs back into a sequence for DerivativeOf.
func All(pairs []Pair) iter.Seq2[*Node, *Node] {
	return func(yield func(*Node, *Node) bool) {
		for _, p := range pairs {
			if !yield(p.Node, p.Contribution) {
				return
			}
		}
	}
}

// ============================================================
// Accumulation
// ============================================================

// DerivativeOf sums every contribution addressed to target, matching by node
// identity. The sum is built left to right in sequence order:
// Add(Add(c1, c2), c3). A target that never appears yields Const(0).
func DerivativeOf(target *Node, pairs iter.Seq2[*Node, *Node]) *Node {
	var sum *Node
	for n, g := range pairs {
		if n.id != target.id {
			continue
		}
		sum = accumulate(sum, g)
	}
	if sum == nil {
		return Const(0)
	}
	return sum
}

func accumulate(sum, g *Node) *Node {
	if sum == nil {
		return g
	}
	return Add(sum, g)
}

// Derivative is d(root)/d(target), seeded with Const(1).
func Derivative(root, target *Node) *Node {
	return DerivativeOf(target, Pairs(root, Const(1)))
}

// Gradient differentiates root with respect to every target in a single
// walk. Result i has the same shape as Derivative(root, targets[i]).
func Gradient(root *Node, targets ...*Node) []*Node {
	index := make(map[uint64][]int, len(targets))
	for i, t := range targets {
		index[t.id] = append(index[t.id], i)
	}
	sums := make([]*Node, len(targets))
	pairs := 0
	for n, g := range Pairs(root, Const(1)) {
		pairs++
		for _, i := range index[n.id] {
			sums[i] = accumulate(sums[i], g)
		}
	}
	for i, s := range sums {
		if s == nil {
			sums[i] = Const(0)
		}
	}
	slog.Debug("gradient accumulated", "targets", len(targets), "pairs", pairs)
	return sums
}

// GradientByName differentiates root with respect to each of its variables.
func GradientByName(root *Node) map[string]*Node {
	vars := Variables(root)
	names := make([]string, 0, len(vars))
	targets := make([]*Node, 0, len(vars))
	for name, v := range vars {
		names = append(names, name)
		targets = append(targets, v)
	}
	grads := Gradient(root, targets...)
	out := make(map[string]*Node, len(names))
	for i, name := range names {
		out[name] = grads[i]
	}
	return out
}

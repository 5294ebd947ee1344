package gosymdiff

import (
	"iter"
	"math/big"
)

// ============================================================
// Whole-graph walks
// ============================================================

// Walk calls visit once for every node reachable from root, operand a
// before operand b. Nodes reachable along several paths are visited once.
// Returning false from visit stops the walk.
func Walk(root *Node, visit func(*Node) bool) {
	seen := make(map[uint64]struct{})
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[n.id]; ok {
			continue
		}
		seen[n.id] = struct{}{}
		if !visit(n) {
			return
		}
		if n.b != nil {
			stack = append(stack, n.b)
		}
		if n.a != nil {
			stack = append(stack, n.a)
		}
	}
}

// Nodes is Walk as an iterator.
func Nodes(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) { Walk(root, yield) }
}

// Variables maps each variable name under root to a Variable node. If two
// distinct nodes share a name, the one visited last is kept; build graphs
// through a Scope when variable identity matters.
func Variables(root *Node) map[string]*Node {
	vars := make(map[string]*Node)
	for n := range Nodes(root) {
		if n.kind == KindVar {
			vars[n.name] = n
		}
	}
	return vars
}

// Size is the number of distinct nodes reachable from root.
func Size(root *Node) int {
	count := 0
	for range Nodes(root) {
		count++
	}
	return count
}

// postorder lists every reachable node once, operands before the nodes
// that use them.
func postorder(root *Node) []*Node {
	type frame struct {
		n    *Node
		done bool
	}
	var order []*Node
	seen := make(map[uint64]struct{})
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.done {
			order = append(order, f.n)
			continue
		}
		if _, ok := seen[f.n.id]; ok {
			continue
		}
		seen[f.n.id] = struct{}{}
		stack = append(stack, frame{n: f.n, done: true})
		if f.n.b != nil {
			stack = append(stack, frame{n: f.n.b})
		}
		if f.n.a != nil {
			stack = append(stack, frame{n: f.n.a})
		}
	}
	return order
}

// CountPaths returns how many pairs Pairs(root, seed) will emit: the number
// of distinct root-to-node paths, summed over all nodes. It runs in time
// linear in the graph size, so callers can bound the cost of a
// differentiation before paying it.
func CountPaths(root *Node) *big.Int {
	order := postorder(root)
	paths := make(map[uint64]*big.Int, len(order))
	paths[root.id] = big.NewInt(1)
	total := new(big.Int)
	// Reverse postorder visits every parent before its operands.
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		p := paths[n.id]
		total.Add(total, p)
		for _, op := range n.Operands() {
			acc, ok := paths[op.id]
			if !ok {
				acc = new(big.Int)
				paths[op.id] = acc
			}
			acc.Add(acc, p)
		}
	}
	return total
}

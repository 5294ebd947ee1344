package gosymdiff

import (
	"log/slog"

	"github.com/pkg/errors"
)

// ============================================================
// Tape: flat, sharing-preserving form
// ============================================================

// Instr is one tape entry. Args index earlier entries of the same tape.
// Value is set for const entries only, so -0 is written like any other value.
type Instr struct {
	Op    string `json:"op"`
	Value *Float `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
	Args  []int  `json:"args,omitempty"`
}

// Tape lists every distinct node of a graph once, operands before their
// users, with Root indexing the result. Each node appears exactly once no
// matter how many parents share it, so a derivative graph serializes in
// size linear in its node count. The format is purely structural (kind and
// operand indices) and is the input contract for compiled evaluators.
type Tape struct {
	Instrs []Instr `json:"instrs"`
	Root   int     `json:"root"`
}

// Flatten encodes the graph under root as a Tape.
func Flatten(root *Node) *Tape {
	order := postorder(root)
	index := make(map[uint64]int, len(order))
	t := &Tape{Instrs: make([]Instr, 0, len(order))}
	for i, n := range order {
		index[n.id] = i
		in := Instr{Op: n.kind.String()}
		switch n.kind {
		case KindConst:
			v := Float(n.value)
			in.Value = &v
		case KindVar:
			in.Name = n.name
		default:
			for _, op := range n.Operands() {
				in.Args = append(in.Args, index[op.id])
			}
		}
		t.Instrs = append(t.Instrs, in)
	}
	t.Root = index[root.id]
	slog.Debug("flattened expression", "instrs", len(t.Instrs))
	return t
}

// Len is the number of instructions.
func (t *Tape) Len() int { return len(t.Instrs) }

// Build decodes the tape back into nodes, reproducing its sharing.
// Variables are interned by name in a fresh Scope.
func (t *Tape) Build() (*Node, error) {
	return t.BuildScope(NewScope())
}

// BuildScope is Build taking variables from scope.
func (t *Tape) BuildScope(scope *Scope) (*Node, error) {
	if len(t.Instrs) == 0 {
		return nil, errors.Wrap(ErrMalformedExpression, "empty tape")
	}
	if t.Root < 0 || t.Root >= len(t.Instrs) {
		return nil, errors.Wrapf(ErrMalformedExpression, "root %d out of range", t.Root)
	}
	nodes := make([]*Node, len(t.Instrs))
	for i, in := range t.Instrs {
		kind, ok := ParseKind(in.Op)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedOperator, "instr %d: op %q", i, in.Op)
		}
		if len(in.Args) != kind.Arity() {
			return nil, errors.Wrapf(ErrMalformedExpression, "instr %d: %s takes %d args, got %d", i, in.Op, kind.Arity(), len(in.Args))
		}
		args := make([]*Node, len(in.Args))
		for j, ref := range in.Args {
			if ref < 0 || ref >= i {
				return nil, errors.Wrapf(ErrMalformedExpression, "instr %d: arg %d refers to %d", i, j, ref)
			}
			args[j] = nodes[ref]
		}
		switch kind.Arity() {
		case 0:
			if kind == KindVar {
				if in.Name == "" {
					return nil, errors.Wrapf(ErrMalformedExpression, "instr %d: var without name", i)
				}
				nodes[i] = scope.Var(in.Name)
			} else {
				if in.Value == nil {
					return nil, errors.Wrapf(ErrMalformedExpression, "instr %d: const without value", i)
				}
				nodes[i] = Const(float64(*in.Value))
			}
		case 1:
			nodes[i] = newNode(kind, args[0], nil)
		case 2:
			nodes[i] = newNode(kind, args[0], args[1])
		}
	}
	return nodes[t.Root], nil
}

package gosymdiff

import (
	"strconv"
	"strings"
)

// ============================================================
// Display
// ============================================================

// String renders n fully parenthesized: "(a + b)", "(-a)", "sin(a)".
// Shared sub-expressions are printed at every occurrence, so the output of
// a large derivative can be much bigger than the graph. Use it for
// debugging and tests, not for re-parsing.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeString(&sb)
	return sb.String()
}

var infix = map[Kind]string{
	KindAdd: " + ",
	KindSub: " - ",
	KindMul: " * ",
	KindDiv: " / ",
	KindPow: " ^ ",
}

func (n *Node) writeString(sb *strings.Builder) {
	switch n.kind {
	case KindConst:
		sb.WriteString(formatFloat(n.value))
	case KindVar:
		sb.WriteString(n.name)
	case KindNeg:
		sb.WriteString("(-")
		n.a.writeString(sb)
		sb.WriteByte(')')
	case KindAdd, KindSub, KindMul, KindDiv, KindPow:
		sb.WriteByte('(')
		n.a.writeString(sb)
		sb.WriteString(infix[n.kind])
		n.b.writeString(sb)
		sb.WriteByte(')')
	default:
		sb.WriteString(n.kind.String())
		sb.WriteByte('(')
		n.a.writeString(sb)
		sb.WriteByte(')')
	}
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// LaTeX renders n as LaTeX math, parenthesizing every compound operand.
func (n *Node) LaTeX() string {
	switch n.kind {
	case KindConst:
		return formatFloat(n.value)
	case KindVar:
		return n.name
	case KindNeg:
		return "-" + latexOperand(n.a)
	case KindAdd:
		return n.a.LaTeX() + " + " + n.b.LaTeX()
	case KindSub:
		return n.a.LaTeX() + " - " + latexOperand(n.b)
	case KindMul:
		return latexOperand(n.a) + " \\cdot " + latexOperand(n.b)
	case KindDiv:
		return "\\frac{" + n.a.LaTeX() + "}{" + n.b.LaTeX() + "}"
	case KindPow:
		return latexOperand(n.a) + "^{" + n.b.LaTeX() + "}"
	case KindLog:
		return "\\ln\\left(" + n.a.LaTeX() + "\\right)"
	case KindAbs:
		return "\\left|" + n.a.LaTeX() + "\\right|"
	case KindSign:
		return "\\operatorname{sign}\\left(" + n.a.LaTeX() + "\\right)"
	}
	return "\\" + n.kind.String() + "\\left(" + n.a.LaTeX() + "\\right)"
}

func latexOperand(n *Node) string {
	switch n.kind {
	case KindAdd, KindSub, KindMul, KindNeg, KindPow:
		return "\\left(" + n.LaTeX() + "\\right)"
	}
	return n.LaTeX()
}

package lam

import (
	"strconv"
	"strings"

	"github.com/vk/phasegrid/internal/quantity"
)

// Namer resolves a quantity ID to a display name. Returning "" falls back to
// the ID's own string form.
type Namer func(quantity.ID) string

var binarySymbols = map[BinaryOp]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
}

var unaryNames = map[UnaryOp]string{
	OpSin: "sin",
	OpCos: "cos",
	OpTan: "tan",
}

// String renders e in a fully parenthesized infix form.
func String(e Expr, name Namer) string {
	var sb strings.Builder
	write(&sb, e, name)
	return sb.String()
}

func refName(id quantity.ID, name Namer) string {
	if name != nil {
		if s := name(id); s != "" {
			return s
		}
	}
	return id.String()
}

func write(sb *strings.Builder, e Expr, name Namer) {
	switch n := e.(type) {
	case Const:
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case Ref:
		sb.WriteString(refName(n.ID, name))
	case Binary:
		sb.WriteRune('(')
		write(sb, n.L, name)
		sb.WriteString(" " + binarySymbols[n.Op] + " ")
		write(sb, n.R, name)
		sb.WriteRune(')')
	case Unary:
		if n.Op == OpNeg {
			sb.WriteRune('-')
			write(sb, n.X, name)
			return
		}
		sb.WriteString(unaryNames[n.Op])
		sb.WriteRune('(')
		write(sb, n.X, name)
		sb.WriteRune(')')
	case Sum:
		sb.WriteString("sum(")
		for i, id := range n.Refs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(refName(id, name))
		}
		sb.WriteRune(')')
	default:
		sb.WriteString("?")
	}
}

package lam

import (
	"math"

	"github.com/vk/phasegrid/internal/quantity"
)

// Evaluate computes the value of e. Division and modulo by zero follow
// IEEE-754 and yield Inf or NaN. A nil expression evaluates to NaN.
func Evaluate(e Expr, lookup Lookup) float64 {
	switch n := e.(type) {
	case Const:
		return n.Value
	case Ref:
		return lookup(n.ID)
	case Binary:
		l, r := Evaluate(n.L, lookup), Evaluate(n.R, lookup)
		switch n.Op {
		case OpAdd:
			return l + r
		case OpSub:
			return l - r
		case OpMul:
			return l * r
		case OpDiv:
			return l / r
		case OpMod:
			return math.Mod(l, r)
		}
	case Unary:
		x := Evaluate(n.X, lookup)
		switch n.Op {
		case OpSin:
			return math.Sin(x)
		case OpCos:
			return math.Cos(x)
		case OpTan:
			return math.Tan(x)
		case OpNeg:
			return -x
		}
	case Sum:
		total := 0.0
		for _, id := range n.Refs {
			total += lookup(id)
		}
		return total
	}
	return math.NaN()
}

// Dependencies returns the quantities e reads directly, without duplicates,
// in order of first appearance.
func Dependencies(e Expr) []quantity.ID {
	seen := make(map[quantity.ID]struct{})
	var out []quantity.ID
	add := func(id quantity.ID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case Ref:
			add(n.ID)
		case Binary:
			walk(n.L)
			walk(n.R)
		case Unary:
			walk(n.X)
		case Sum:
			for _, id := range n.Refs {
				add(id)
			}
		}
	}
	walk(e)
	return out
}

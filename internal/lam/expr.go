// Package lam implements the expression language used by dependent
// quantities: a closed set of pure nodes that read other quantities through a
// lookup function and combine them with arithmetic and trigonometry.
package lam

import "github.com/vk/phasegrid/internal/quantity"

// Expr is a node of an expression tree. The set of node types is closed:
// only the types in this package implement it.
type Expr interface {
	expr()
}

// Lookup returns the current value of a quantity.
type Lookup func(quantity.ID) float64

// BinaryOp enumerates the two-operand operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota // l + r
	OpSub                 // l - r
	OpMul                 // l * r
	OpDiv                 // l / r, IEEE 754 so division by zero yields Inf or NaN
	OpMod                 // math.Mod(l, r), the result takes the sign of l
)

// UnaryOp enumerates the single-operand operators.
type UnaryOp int

const (
	OpSin UnaryOp = iota // sin(x), x in radians
	OpCos                // cos(x), x in radians
	OpTan                // tan(x), x in radians
	OpNeg                // -x
)

// Const is a literal number.
type Const struct {
	Value float64
}

// Ref reads the current value of another quantity.
type Ref struct {
	ID quantity.ID
}

// Binary combines two subexpressions.
type Binary struct {
	Op   BinaryOp
	L, R Expr
}

// Unary applies a function to one subexpression.
type Unary struct {
	Op UnaryOp
	X  Expr
}

// Sum adds the values of a list of quantities. An empty Sum is 0.
type Sum struct {
	Refs []quantity.ID
}

func (Const) expr()  {}
func (Ref) expr()    {}
func (Binary) expr() {}
func (Unary) expr()  {}
func (Sum) expr()    {}

// Constructors for building trees at scene setup.
func Num(v float64) Expr      { return Const{Value: v} }
func Var(id quantity.ID) Expr { return Ref{ID: id} }
func Add(l, r Expr) Expr      { return Binary{Op: OpAdd, L: l, R: r} }
func Sub(l, r Expr) Expr      { return Binary{Op: OpSub, L: l, R: r} }
func Mul(l, r Expr) Expr      { return Binary{Op: OpMul, L: l, R: r} }
func Div(l, r Expr) Expr      { return Binary{Op: OpDiv, L: l, R: r} }
func Mod(l, r Expr) Expr      { return Binary{Op: OpMod, L: l, R: r} }
func Sin(x Expr) Expr         { return Unary{Op: OpSin, X: x} }
func Cos(x Expr) Expr         { return Unary{Op: OpCos, X: x} }
func Tan(x Expr) Expr         { return Unary{Op: OpTan, X: x} }
func Neg(x Expr) Expr         { return Unary{Op: OpNeg, X: x} }

// SumOf builds a Sum node. The slice is copied so the node stays immutable.
func SumOf(ids ...quantity.ID) Expr {
	refs := make([]quantity.ID, len(ids))
	copy(refs, ids)
	return Sum{Refs: refs}
}

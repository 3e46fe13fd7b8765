// Package scene declares quantity graphs in HCL files.
//
// A scene file holds two kinds of blocks, both labeled with a group and a
// name:
//
//	independent "global" "time" {
//	  value = 0
//	  roles = ["time"]
//	}
//
//	dependent "page1" "theta" {
//	  expr  = (time * freq + phase) % tau
//	  roles = ["theta"]
//	}
//
// The value of an independent is a constant expression; pi and tau are
// available. The expression of a dependent is translated from the HCL syntax
// tree into a lam expression and may use numbers, pi, tau, + - * / %,
// unary minus, parentheses, sin, cos, tan and sum. A bare name resolves in
// the block's own group first and then in "global"; group.name addresses any
// group. Blocks may reference quantities declared later or in other files.
package scene

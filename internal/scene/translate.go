package scene

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
	"github.com/vk/phasegrid/internal/varstore"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var binaryOps = map[*hclsyntax.Operation]func(l, r lam.Expr) lam.Expr{
	hclsyntax.OpAdd:      lam.Add,
	hclsyntax.OpSubtract: lam.Sub,
	hclsyntax.OpMultiply: lam.Mul,
	hclsyntax.OpDivide:   lam.Div,
	hclsyntax.OpModulo:   lam.Mod,
}

var unaryFuncs = map[string]func(x lam.Expr) lam.Expr{
	"sin": lam.Sin,
	"cos": lam.Cos,
	"tan": lam.Tan,
}

// resolver maps names used in expressions to quantities. With a nil ids map
// it only validates, returning zero ids.
type resolver struct {
	sc  *sceneIndex
	ids map[quantity.Address]quantity.ID
}

func (sc *sceneIndex) resolver(ids map[quantity.Address]quantity.ID) resolver {
	return resolver{sc: sc, ids: ids}
}

func (r resolver) lookup(addr quantity.Address) (quantity.ID, bool) {
	if _, ok := r.sc.declared[addr]; !ok {
		return quantity.ID{}, false
	}
	return r.ids[addr], true
}

// namesIn returns the declared names of the given groups.
func (r resolver) namesIn(groups ...quantity.Group) []string {
	var out []string
	for addr := range r.sc.declared {
		for _, g := range groups {
			if addr.Group == g {
				out = append(out, addr.Name)
			}
		}
	}
	return out
}

// translate converts an HCL syntax tree into a lam expression. group is the
// group of the block the expression belongs to.
func translate(expr hclsyntax.Expression, group quantity.Group, r resolver) (lam.Expr, hcl.Diagnostics) {
	rng := expr.Range()
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return literal(e.Val, rng)

	case *hclsyntax.ParenthesesExpr:
		return translate(e.Expression, group, r)

	case *hclsyntax.ScopeTraversalExpr:
		return reference(e.Traversal, group, r, rng)

	case *hclsyntax.BinaryOpExpr:
		build, ok := binaryOps[e.Op]
		if !ok {
			return nil, unsupported(rng, "Only the arithmetic operators + - * / % are supported.")
		}
		lhs, diags := translate(e.LHS, group, r)
		rhs, more := translate(e.RHS, group, r)
		diags = append(diags, more...)
		if diags.HasErrors() {
			return nil, diags
		}
		return build(lhs, rhs), diags

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return nil, unsupported(rng, "Only unary minus is supported.")
		}
		x, diags := translate(e.Val, group, r)
		if diags.HasErrors() {
			return nil, diags
		}
		return lam.Neg(x), diags

	case *hclsyntax.FunctionCallExpr:
		return call(e, group, r)
	}
	return nil, unsupported(rng, fmt.Sprintf("Expressions of type %T cannot be used in a quantity.", expr))
}

func literal(v cty.Value, rng hcl.Range) (lam.Expr, hcl.Diagnostics) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid literal",
			Detail:   fmt.Sprintf("Quantities are numeric; got a %s.", v.Type().FriendlyName()),
			Subject:  rng.Ptr(),
		}}
	}
	var f float64
	if err := gocty.FromCtyValue(v, &f); err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid number",
			Detail:   err.Error(),
			Subject:  rng.Ptr(),
		}}
	}
	return lam.Num(f), nil
}

func reference(t hcl.Traversal, group quantity.Group, r resolver, rng hcl.Range) (lam.Expr, hcl.Diagnostics) {
	root := t.RootName()
	switch len(t) {
	case 1:
		for _, g := range []quantity.Group{group, quantity.Global} {
			if id, ok := r.lookup(quantity.NewAddress(g, root)); ok {
				return lam.Var(id), nil
			}
		}
		if v, ok := constants[root]; ok {
			return lam.Num(v), nil
		}
		candidates := append(r.namesIn(group, quantity.Global), "pi", "tau")
		return nil, unknownName(root, fmt.Sprintf("in group %q or %q", group, quantity.Global), candidates, rng)

	case 2:
		attr, ok := t[1].(hcl.TraverseAttr)
		if !ok {
			break
		}
		addr := quantity.NewAddress(quantity.Group(root), attr.Name)
		if id, ok := r.lookup(addr); ok {
			return lam.Var(id), nil
		}
		return nil, unknownName(attr.Name, fmt.Sprintf("in group %q", root), r.namesIn(quantity.Group(root)), rng)
	}
	return nil, unsupported(rng, "References must be a bare name or group.name.")
}

func call(e *hclsyntax.FunctionCallExpr, group quantity.Group, r resolver) (lam.Expr, hcl.Diagnostics) {
	rng := e.Range()
	if e.ExpandFinal {
		return nil, unsupported(rng, "Argument expansion is not supported.")
	}

	var diags hcl.Diagnostics
	args := make([]lam.Expr, 0, len(e.Args))
	for _, a := range e.Args {
		x, more := translate(a, group, r)
		diags = append(diags, more...)
		args = append(args, x)
	}
	if diags.HasErrors() {
		return nil, diags
	}

	if fn, ok := unaryFuncs[e.Name]; ok {
		if len(args) != 1 {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Wrong number of arguments",
				Detail:   fmt.Sprintf("Function %q takes exactly one argument.", e.Name),
				Subject:  rng.Ptr(),
			}}
		}
		return fn(args[0]), nil
	}

	if e.Name == "sum" {
		if len(args) == 0 {
			return lam.Num(0), nil
		}
		refs := make([]quantity.ID, 0, len(args))
		for _, a := range args {
			ref, ok := a.(lam.Ref)
			if !ok {
				refs = nil
				break
			}
			refs = append(refs, ref.ID)
		}
		if refs != nil {
			return lam.SumOf(refs...), nil
		}
		out := args[0]
		for _, a := range args[1:] {
			out = lam.Add(out, a)
		}
		return out, nil
	}

	known := []string{"cos", "sin", "sum", "tan"}
	return nil, unknownName(e.Name, "among functions", known, e.NameRange)
}

func unsupported(rng hcl.Range, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Unsupported expression",
		Detail:   detail,
		Subject:  rng.Ptr(),
	}}
}

func unknownName(name, where string, candidates []string, rng hcl.Range) hcl.Diagnostics {
	detail := fmt.Sprintf("There is no %q %s.", name, where)
	if s := varstore.NameSuggestion(name, candidates); s != "" {
		detail += fmt.Sprintf(" Did you mean %q?", s)
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Unknown name",
		Detail:   detail,
		Subject:  rng.Ptr(),
	}}
}

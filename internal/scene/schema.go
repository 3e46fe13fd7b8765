package scene

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all top-level blocks of a scene file. Any
// other block or attribute is an error.
type fileRoot struct {
	Independents []*independentBlock `hcl:"independent,block"`
	Dependents   []*dependentBlock   `hcl:"dependent,block"`
}

type independentBlock struct {
	Group string   `hcl:"group,label"`
	Name  string   `hcl:"name,label"`
	Value float64  `hcl:"value,optional"`
	Roles []string `hcl:"roles,optional"`
}

type dependentBlock struct {
	Group string         `hcl:"group,label"`
	Name  string         `hcl:"name,label"`
	Expr  hcl.Expression `hcl:"expr"`
	Roles []string       `hcl:"roles,optional"`
}

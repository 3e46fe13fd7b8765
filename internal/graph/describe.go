package graph

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
	"github.com/xlab/treeprint"
)

// Describe writes every group, its quantities with their current values,
// and for each dependent its expression and the quantities it reads.
func (m *Manager) Describe(w io.Writer) error {
	tree := treeprint.NewWithRoot(fmt.Sprintf("graph (tick %d)", m.tick))
	for _, g := range m.store.Groups() {
		branch := tree.AddBranch(string(g))
		for _, id := range m.store.InGroup(g) {
			info, err := m.store.Info(id)
			if err != nil {
				continue
			}
			label := info.Name + " = " + strconv.FormatFloat(info.Value, 'g', 6, 64)
			if len(info.Roles) > 0 {
				roles := make([]string, len(info.Roles))
				for i, r := range info.Roles {
					roles[i] = string(r)
				}
				label += " (" + strings.Join(roles, ", ") + ")"
			}

			if info.Kind == quantity.Independent {
				branch.AddMetaNode(info.Kind.String(), label)
				continue
			}

			meta := info.Kind.String()
			if !info.Ready {
				meta += ", not ready"
			}
			q := branch.AddMetaBranch(meta, label)
			q.AddNode("= " + lam.String(info.Expr, m.name))
			if len(info.Deps) > 0 {
				reads := q.AddBranch("reads")
				for _, dep := range info.Deps {
					reads.AddNode(m.name(dep))
				}
			}
		}
	}
	_, err := io.WriteString(w, tree.String())
	return err
}

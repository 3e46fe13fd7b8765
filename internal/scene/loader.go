package scene

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/fsutil"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
	"github.com/zclconf/go-cty/cty"
)

// ErrNoSceneFiles is returned when none of the given paths holds a .hcl file.
var ErrNoSceneFiles = errors.New("no scene files found")

// constants are the names usable in every value and expression.
var constants = map[string]float64{
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
}

// Target receives the quantities declared by a scene. *graph.Manager
// implements it.
type Target interface {
	Independent(group quantity.Group, name string, v float64, roles ...quantity.Role) quantity.ID
	Dependent(group quantity.Group, name string, expr lam.Expr, roles ...quantity.Role) quantity.ID
	Redefine(id quantity.ID, expr lam.Expr) error
}

// Scene records what a load declared.
type Scene struct {
	Files []string
	// Order lists every declared address, independents first, each kind in
	// file order.
	Order []quantity.Address
	IDs   map[quantity.Address]quantity.ID

	independents int
}

// ID returns the quantity declared at addr.
func (s *Scene) ID(addr quantity.Address) (quantity.ID, bool) {
	id, ok := s.IDs[addr]
	return id, ok
}

// Dependents returns the ids of the declared dependents in declaration order.
func (s *Scene) Dependents() []quantity.ID {
	var out []quantity.ID
	for _, addr := range s.Order[s.independents:] {
		out = append(out, s.IDs[addr])
	}
	return out
}

// Loader reads scene files from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader over fs. Pass afero.NewOsFs() for the real
// filesystem.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// parsed is one decoded file.
type parsed struct {
	file string
	root fileRoot
}

// Load parses every .hcl file under paths and declares its quantities in
// target. Nothing is declared unless every file parses and every expression
// resolves; all problems found are returned together.
func (l *Loader) Load(ctx context.Context, target Target, paths ...string) (*Scene, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Scene loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(l.fs, ".hcl", paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %v", ErrNoSceneFiles, paths)
	}
	logger.Debug("Discovered scene files.", "count", len(files))

	var result *multierror.Error
	parser := hclparse.NewParser()
	evalCtx := evalContext()
	var docs []parsed
	for _, file := range files {
		src, err := afero.ReadFile(l.fs, file)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("reading scene file %s: %w", file, err))
			continue
		}
		hclFile, diags := parser.ParseHCL(src, file)
		if diags.HasErrors() {
			result = multierror.Append(result, fmt.Errorf("failed to parse scene file %s: %w", file, diags))
			continue
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			result = multierror.Append(result, fmt.Errorf("failed to decode scene file %s: %w", file, diags))
			continue
		}
		docs = append(docs, parsed{file: file, root: root})
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	sc, decls, err := index(files, docs)
	if err != nil {
		return nil, err
	}

	// Resolve everything against placeholder ids before touching target.
	var diags hcl.Diagnostics
	for _, d := range decls {
		_, more := translate(d.expr, d.group, sc.resolver(nil))
		diags = append(diags, more...)
	}
	if diags.HasErrors() {
		return nil, diags
	}

	for _, addr := range sc.Order[:sc.independents] {
		b := sc.indeps[addr]
		sc.IDs[addr] = target.Independent(addr.Group, addr.Name, b.Value, roles(b.Roles)...)
	}
	for _, d := range decls {
		sc.IDs[d.addr] = target.Dependent(d.addr.Group, d.addr.Name, lam.Num(0), roles(d.roles)...)
	}
	for _, d := range decls {
		expr, _ := translate(d.expr, d.group, sc.resolver(sc.IDs))
		if err := target.Redefine(sc.IDs[d.addr], expr); err != nil {
			return nil, fmt.Errorf("defining %s: %w", d.addr, err)
		}
	}

	logger.Debug("Scene loading complete.", "independents", sc.independents, "dependents", len(decls))
	return &sc.Scene, nil
}

// decl is a dependent waiting for translation.
type decl struct {
	addr  quantity.Address
	group quantity.Group
	expr  hclsyntax.Expression
	roles []string
}

// sceneIndex is a Scene plus the bookkeeping needed while loading.
type sceneIndex struct {
	Scene
	indeps   map[quantity.Address]*independentBlock
	declared map[quantity.Address]struct{}
}

// index collects the addresses of every block and rejects duplicates.
func index(files []string, docs []parsed) (*sceneIndex, []decl, error) {
	sc := &sceneIndex{
		Scene: Scene{
			Files: files,
			IDs:   make(map[quantity.Address]quantity.ID),
		},
		indeps:   make(map[quantity.Address]*independentBlock),
		declared: make(map[quantity.Address]struct{}),
	}
	var result *multierror.Error
	claim := func(file string, addr quantity.Address) bool {
		if _, dup := sc.declared[addr]; dup {
			result = multierror.Append(result, fmt.Errorf("%s: quantity %s is declared more than once", file, addr))
			return false
		}
		sc.declared[addr] = struct{}{}
		return true
	}

	for _, doc := range docs {
		for _, b := range doc.root.Independents {
			addr := quantity.NewAddress(quantity.Group(b.Group), b.Name)
			if err := validLabels(doc.file, addr); err != nil {
				result = multierror.Append(result, err)
				continue
			}
			if claim(doc.file, addr) {
				sc.indeps[addr] = b
				sc.Order = append(sc.Order, addr)
			}
		}
	}
	sc.independents = len(sc.Order)

	var decls []decl
	for _, doc := range docs {
		for _, b := range doc.root.Dependents {
			addr := quantity.NewAddress(quantity.Group(b.Group), b.Name)
			if err := validLabels(doc.file, addr); err != nil {
				result = multierror.Append(result, err)
				continue
			}
			if !claim(doc.file, addr) {
				continue
			}
			syn, ok := b.Expr.(hclsyntax.Expression)
			if !ok {
				result = multierror.Append(result, fmt.Errorf("%s: expression of %s is not native HCL syntax", doc.file, addr))
				continue
			}
			sc.Order = append(sc.Order, addr)
			decls = append(decls, decl{addr: addr, group: addr.Group, expr: syn, roles: b.Roles})
		}
	}
	return sc, decls, result.ErrorOrNil()
}

func validLabels(file string, addr quantity.Address) error {
	parsed, err := quantity.ParseAddress(addr.String(), "")
	if err != nil || parsed != addr {
		return fmt.Errorf("%s: invalid quantity address %q", file, addr)
	}
	return nil
}

func roles(in []string) []quantity.Role {
	out := make([]quantity.Role, len(in))
	for i, r := range in {
		out[i] = quantity.Role(r)
	}
	return out
}

func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(constants))
	for name, v := range constants {
		vars[name] = cty.NumberFloatVal(v)
	}
	return &hcl.EvalContext{Variables: vars}
}

// internal/quantity/types.go
package quantity

import "fmt"

// ID is a stable handle to one quantity in a store.
// The zero ID is never issued and is always invalid.
type ID struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether the ID is the unset zero value.
func (id ID) IsZero() bool {
	return id.Gen == 0
}

// String renders the ID as `q<index>/<gen>` for logs and errors.
func (id ID) String() string {
	return fmt.Sprintf("q%d/%d", id.Index, id.Gen)
}

// Group is an opaque namespace tag. Groups never nest.
type Group string

// Global is the group for quantities shared by every page, such as time.
const Global Group = "global"

// Role marks what a quantity means inside its group (e.g. "amp"),
// independently of how it is evaluated.
type Role string

// Kind distinguishes the two quantity variants.
type Kind int

const (
	// Independent quantities are written by external drivers.
	Independent Kind = iota
	// Dependent quantities are computed from an expression each tick.
	Dependent
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Independent:
		return "independent"
	case Dependent:
		return "dependent"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// internal/quantity/address.go
package quantity

// Address is the human-readable `group.name` form of a quantity.
// It is used by scene files, the stream protocol and the CLI; the graph
// itself only deals in IDs.
type Address struct {
	Group Group
	Name  string
}

// NewAddress builds an address from its parts.
func NewAddress(group Group, name string) Address {
	return Address{Group: group, Name: name}
}

// String serializes the Address into its canonical `group.name` form.
func (a Address) String() string {
	if a.Group == "" {
		return a.Name
	}
	return string(a.Group) + "." + a.Name
}

package varstore

import (
	"slices"

	"github.com/vk/phasegrid/internal/quantity"
)

// Tag attaches roles to id. Re-tagging with a role it already carries is a
// no-op.
func (s *Store) Tag(id quantity.ID, roles ...quantity.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if !slices.Contains(r.roles, role) {
			r.roles = append(r.roles, role)
		}
	}
	return nil
}

// InGroup returns the live quantities of group in arena order.
func (s *Store) InGroup(group quantity.Group) []quantity.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []quantity.ID
	for i := range s.slots {
		r := &s.slots[i]
		if r.alive && r.group == group {
			out = append(out, quantity.ID{Index: uint32(i), Gen: r.gen})
		}
	}
	return out
}

// Find returns the single quantity of group tagged with role.
func (s *Store) Find(group quantity.Group, role quantity.Role) (quantity.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []quantity.ID
	var known []string
	for i := range s.slots {
		r := &s.slots[i]
		if !r.alive || r.group != group {
			continue
		}
		for _, have := range r.roles {
			if have == role {
				matches = append(matches, quantity.ID{Index: uint32(i), Gen: r.gen})
			}
			known = append(known, string(have))
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	err := &MatchError{Group: group, Field: "role", Key: string(role), Matches: matches}
	if len(matches) == 0 {
		err.Suggestion = NameSuggestion(string(role), known)
	}
	return quantity.ID{}, err
}

// Lookup returns the single quantity of group with the given display name.
func (s *Store) Lookup(group quantity.Group, name string) (quantity.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []quantity.ID
	var known []string
	for i := range s.slots {
		r := &s.slots[i]
		if !r.alive || r.group != group {
			continue
		}
		if r.name == name {
			matches = append(matches, quantity.ID{Index: uint32(i), Gen: r.gen})
		}
		known = append(known, r.name)
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	err := &MatchError{Group: group, Field: "name", Key: name, Matches: matches}
	if len(matches) == 0 {
		err.Suggestion = NameSuggestion(name, known)
	}
	return quantity.ID{}, err
}

// Resolve looks up an address, returning the quantity it names.
func (s *Store) Resolve(addr quantity.Address) (quantity.ID, error) {
	return s.Lookup(addr.Group, addr.Name)
}

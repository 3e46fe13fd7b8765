package varstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
)

// record is one arena slot. A slot is live while alive is true; its gen is
// bumped on removal so handles issued for the previous occupant go stale.
type record struct {
	gen   uint32
	alive bool

	kind  quantity.Kind
	value float64
	ready bool
	expr  lam.Expr
	deps  []quantity.ID

	group quantity.Group
	name  string
	roles []quantity.Role
}

// Store is the arena of quantities.
//
// A single RWMutex guards the arena. Reads during a wave (dependency
// lookups) take the read lock; Complete and the setup/teardown operations
// take the write lock.
type Store struct {
	mu    sync.RWMutex
	slots []record
	free  []uint32
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// CreateIndependent adds an independent quantity with initial value v.
func (s *Store) CreateIndependent(group quantity.Group, name string, v float64) quantity.ID {
	return s.create(record{
		kind:  quantity.Independent,
		value: v,
		group: group,
		name:  name,
	})
}

// CreateDependent adds a dependent quantity computed by expr. Its value is
// 0 and it is not ready until the scheduler first evaluates it.
func (s *Store) CreateDependent(group quantity.Group, name string, expr lam.Expr) quantity.ID {
	return s.create(record{
		kind:  quantity.Dependent,
		expr:  expr,
		deps:  lam.Dependencies(expr),
		group: group,
		name:  name,
	})
}

func (s *Store) create(r record) quantity.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
		r.gen = s.slots[idx].gen
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, record{})
		r.gen = 1
	}
	r.alive = true
	s.slots[idx] = r
	return quantity.ID{Index: idx, Gen: r.gen}
}

// get returns the live record for id. Callers hold s.mu.
func (s *Store) get(id quantity.ID) (*record, error) {
	if id.IsZero() || int(id.Index) >= len(s.slots) {
		return nil, &UnknownQuantityError{ID: id}
	}
	r := &s.slots[id.Index]
	if !r.alive || r.gen != id.Gen {
		return nil, &UnknownQuantityError{ID: id}
	}
	return r, nil
}

// Contains reports whether id refers to a live quantity.
func (s *Store) Contains(id quantity.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.get(id)
	return err == nil
}

// Len returns the number of live quantities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots) - len(s.free)
}

// Value returns the current value of id. For a dependent that has not been
// evaluated yet this is the 0 sentinel.
func (s *Store) Value(id quantity.ID) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.get(id)
	if err != nil {
		return 0, err
	}
	return r.value, nil
}

// SetValue overwrites the value of an independent quantity.
func (s *Store) SetValue(id quantity.ID, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return err
	}
	if r.kind == quantity.Dependent {
		return fmt.Errorf("set %s: %w", id, ErrDependentWrite)
	}
	r.value = v
	return nil
}

// IsReady reports whether id holds a value for the current tick.
// Independent quantities are always ready.
func (s *Store) IsReady(id quantity.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.get(id)
	if err != nil {
		return false, err
	}
	return r.kind == quantity.Independent || r.ready, nil
}

// MarkAllNotReady clears the ready flag of every dependent. Values are kept.
func (s *Store) MarkAllNotReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		s.slots[i].ready = false
	}
}

// Kind returns the variant of id.
func (s *Store) Kind(id quantity.ID) (quantity.Kind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.get(id)
	if err != nil {
		return 0, err
	}
	return r.kind, nil
}

// Expr returns the expression of a dependent.
func (s *Store) Expr(id quantity.ID) (lam.Expr, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if r.kind != quantity.Dependent {
		return nil, fmt.Errorf("expr of %s: %w", id, ErrNotDependent)
	}
	return r.expr, nil
}

// Deps returns the distinct quantities read by the expression of a
// dependent, in first-reference order. Independents have none.
func (s *Store) Deps(id quantity.ID) ([]quantity.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return append([]quantity.ID(nil), r.deps...), nil
}

// Dependents returns every live dependent in arena order.
func (s *Store) Dependents() []quantity.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []quantity.ID
	for i := range s.slots {
		r := &s.slots[i]
		if r.alive && r.kind == quantity.Dependent {
			out = append(out, quantity.ID{Index: uint32(i), Gen: r.gen})
		}
	}
	return out
}

// Complete stores the evaluated value of a dependent and marks it ready.
// Value and flag change together under the write lock.
func (s *Store) Complete(id quantity.ID, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return err
	}
	if r.kind != quantity.Dependent {
		return fmt.Errorf("complete %s: %w", id, ErrNotDependent)
	}
	r.value = v
	r.ready = true
	return nil
}

// Redefine replaces the whole expression of a dependent, keeping its
// identity, tags and last value.
func (s *Store) Redefine(id quantity.ID, expr lam.Expr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return err
	}
	if r.kind != quantity.Dependent {
		return fmt.Errorf("redefine %s: %w", id, ErrNotDependent)
	}
	r.expr = expr
	r.deps = lam.Dependencies(expr)
	r.ready = false
	return nil
}

// Remove deletes a single quantity. Dependents that still reference it will
// never become ready again and are reported as unresolved by the scheduler.
func (s *Store) Remove(id quantity.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(id); err != nil {
		return err
	}
	s.release(id.Index)
	return nil
}

// RemoveGroup deletes every quantity of group as a unit and returns the
// removed handles in arena order.
func (s *Store) RemoveGroup(group quantity.Group) []quantity.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []quantity.ID
	for i := range s.slots {
		r := &s.slots[i]
		if r.alive && r.group == group {
			removed = append(removed, quantity.ID{Index: uint32(i), Gen: r.gen})
			s.release(uint32(i))
		}
	}
	return removed
}

// release frees slot idx and bumps its generation. Callers hold the write lock.
func (s *Store) release(idx uint32) {
	gen := s.slots[idx].gen + 1
	if gen == 0 {
		gen = 1
	}
	s.slots[idx] = record{gen: gen}
	s.free = append(s.free, idx)
}

// Info is a read-only description of a quantity.
type Info struct {
	ID    quantity.ID
	Kind  quantity.Kind
	Group quantity.Group
	Name  string
	Roles []quantity.Role
	Value float64
	Ready bool
	Expr  lam.Expr
	Deps  []quantity.ID
}

// Address returns the "group.name" address of the quantity.
func (i Info) Address() quantity.Address {
	return quantity.NewAddress(i.Group, i.Name)
}

// Info returns a copy of everything the store knows about id.
func (s *Store) Info(id quantity.ID) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.get(id)
	if err != nil {
		return Info{}, err
	}
	return Info{
		ID:    id,
		Kind:  r.kind,
		Group: r.group,
		Name:  r.name,
		Roles: append([]quantity.Role(nil), r.roles...),
		Value: r.value,
		Ready: r.kind == quantity.Independent || r.ready,
		Expr:  r.expr,
		Deps:  append([]quantity.ID(nil), r.deps...),
	}, nil
}

// Name returns the display name of id, or "" for unknown handles.
func (s *Store) Name(id quantity.ID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.get(id)
	if err != nil {
		return ""
	}
	return r.name
}

// Groups returns the distinct groups of live quantities, sorted.
func (s *Store) Groups() []quantity.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[quantity.Group]struct{})
	var out []quantity.Group
	for i := range s.slots {
		r := &s.slots[i]
		if !r.alive {
			continue
		}
		if _, ok := seen[r.group]; ok {
			continue
		}
		seen[r.group] = struct{}{}
		out = append(out, r.group)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

package graph

import (
	"fmt"

	"github.com/vk/phasegrid/internal/quantity"
)

// Input is a pending write to an independent quantity, addressed either by
// role or by name within a group. Role wins when both are set.
type Input struct {
	Group quantity.Group `json:"group"`
	Role  quantity.Role  `json:"role,omitempty"`
	Name  string         `json:"name,omitempty"`
	Value float64        `json:"value"`
}

func (in Input) String() string {
	if in.Role != "" {
		return fmt.Sprintf("%s[role=%s]=%g", in.Group, in.Role, in.Value)
	}
	return fmt.Sprintf("%s=%g", quantity.NewAddress(in.Group, in.Name), in.Value)
}

// Enqueue schedules in for the next tick.
func (m *Manager) Enqueue(in Input) {
	m.inputMu.Lock()
	m.inputs = append(m.inputs, in)
	m.inputMu.Unlock()
}

func (m *Manager) drainInputs() []Input {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	in := m.inputs
	m.inputs = nil
	return in
}

// apply resolves and writes a single input.
func (m *Manager) apply(in Input) error {
	var (
		id  quantity.ID
		err error
	)
	if in.Role != "" {
		id, err = m.store.Find(in.Group, in.Role)
	} else {
		id, err = m.store.Lookup(in.Group, in.Name)
	}
	if err != nil {
		return fmt.Errorf("input %s: %w", in, err)
	}
	if err := m.store.SetValue(id, in.Value); err != nil {
		return fmt.Errorf("input %s: %w", in, err)
	}
	return nil
}

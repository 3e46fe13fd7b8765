package pages

import (
	"fmt"
	"math"

	"github.com/vk/phasegrid/internal/quantity"
)

// Range bounds an inspector control.
type Range struct {
	Min, Max float64
}

// InspectorRanges are the slider bounds of the adjustable roles.
var InspectorRanges = map[quantity.Role]Range{
	RoleFreq:  {Min: 1, Max: 30},
	RoleAmp:   {Min: 0.5, Max: 100},
	RolePhase: {Min: 0, Max: 2 * math.Pi},
}

// ParamStore is the part of the store SetParam needs.
type ParamStore interface {
	Find(group quantity.Group, role quantity.Role) (quantity.ID, error)
	SetValue(id quantity.ID, v float64) error
}

// SetParam writes v, clamped to the role's inspector range if it has one,
// to the quantity of group tagged with role. It returns the value written.
func SetParam(s ParamStore, group quantity.Group, role quantity.Role, v float64) (float64, error) {
	id, err := s.Find(group, role)
	if err != nil {
		return 0, fmt.Errorf("set %s of %s: %w", role, group, err)
	}
	if r, ok := InspectorRanges[role]; ok {
		v = math.Max(r.Min, math.Min(r.Max, v))
	}
	if err := s.SetValue(id, v); err != nil {
		return 0, fmt.Errorf("set %s of %s: %w", role, group, err)
	}
	return v, nil
}

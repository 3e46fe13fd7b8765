package pages

import (
	"github.com/vk/phasegrid/internal/drawing"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
)

const (
	UpperGroup quantity.Group = "upper"
	LowerGroup quantity.Group = "lower"
)

// NewCombination declares two phasors framed 200 apart and the trace of
// their sum, sum = upper.sin_theta + lower.sin_theta - 200.
func NewCombination(m *graph.Manager) (Page, error) {
	b := &builder{m: m}
	upper := declarePhasor(m, UpperGroup, phasorParams{Freq: 2, Amp: 30, CircleX: -200, PointRad: 10, ShiftY: shift(200)})
	lower := declarePhasor(m, LowerGroup, phasorParams{Freq: 2, Amp: 30, CircleX: -200, PointRad: 10, ShiftY: shift(0)})
	upper.draw(b, 3)
	lower.draw(b, 3)

	sum := m.Dependent(quantity.Global, "sum",
		lam.Add(lam.Add(lam.Var(upper.sinTheta), lam.Var(lower.sinTheta)), lam.Num(-200)))
	b.add(drawing.NewTracker(b.bind(sum), TrackerLength))

	if b.err != nil {
		return nil, b.err
	}
	return &static{name: CombinationName, drawables: b.drawables}, nil
}

package pages

import (
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/quantity"
)

// SimpleGroup is the group of the single phasor page.
const SimpleGroup quantity.Group = "simple"

// NewSimple declares one phasor circling at x = -200 with its sine traced
// to the right.
func NewSimple(m *graph.Manager) (Page, error) {
	b := &builder{m: m}
	ph := declarePhasor(m, SimpleGroup, phasorParams{Freq: 2, Amp: 30, CircleX: -200, PointRad: 10})
	ph.draw(b, 2)
	if b.err != nil {
		return nil, b.err
	}
	return &static{name: SimpleName, drawables: b.drawables}, nil
}

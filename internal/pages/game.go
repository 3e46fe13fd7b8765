package pages

import (
	"fmt"
	"math"

	"github.com/vk/phasegrid/internal/drawing"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/quantity"
)

const (
	KnownGroup   quantity.Group = "known"
	UnknownGroup quantity.Group = "unknown"
)

// Match tolerances between the player's wave and the target.
const (
	FreqTolerance  = 0.1
	AmpTolerance   = 0.1
	PhaseTolerance = 0.11
)

// Game shows a player-controlled wave next to a target wave 200 below it.
// The player wins by matching frequency, amplitude and phase.
type Game struct {
	static
	m        *graph.Manager
	equation drawing.Equation
}

// NewGame declares both waves. The target starts at phase 1.2, frequency 3
// and amplitude 45.
func NewGame(m *graph.Manager) (*Game, error) {
	b := &builder{m: m}
	known := declarePhasor(m, KnownGroup, phasorParams{Freq: 2, Amp: 30, CircleX: -200, PointRad: 10})
	unknown := declarePhasor(m, UnknownGroup, phasorParams{Phase: 1.2, Freq: 3, Amp: 45, CircleX: -200, PointRad: 10, ShiftY: shift(-200)})
	known.draw(b, 2)
	unknown.draw(b, 2)

	eq := drawing.Equation{Template: "$sin($x + $)"}
	for _, id := range []quantity.ID{known.amp, known.freq, known.phase} {
		eq.Values = append(eq.Values, b.bind(id))
	}
	if b.err != nil {
		return nil, b.err
	}
	return &Game{
		static:   static{name: GameName, drawables: b.drawables},
		m:        m,
		equation: eq,
	}, nil
}

// Equation renders the player's wave as amp sin(freq x + phase).
func (g *Game) Equation() string {
	return g.equation.String()
}

// Won reports whether the player's parameters are within tolerance of the
// target's.
func (g *Game) Won() (bool, error) {
	checks := []struct {
		role quantity.Role
		tol  float64
	}{
		{RoleFreq, FreqTolerance},
		{RoleAmp, AmpTolerance},
		{RolePhase, PhaseTolerance},
	}
	for _, c := range checks {
		mine, err := g.param(KnownGroup, c.role)
		if err != nil {
			return false, err
		}
		target, err := g.param(UnknownGroup, c.role)
		if err != nil {
			return false, err
		}
		if math.Abs(mine-target) >= c.tol {
			return false, nil
		}
	}
	return true, nil
}

func (g *Game) param(group quantity.Group, role quantity.Role) (float64, error) {
	s := g.m.Store()
	id, err := s.Find(group, role)
	if err != nil {
		return 0, fmt.Errorf("game: %w", err)
	}
	return s.Value(id)
}

package pages

import (
	"math"

	"github.com/vk/phasegrid/internal/drawing"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
)

// TrackerLength is how many samples every tracker keeps.
const TrackerLength = 300

// phasorParams are the initial values of one rotating phasor.
type phasorParams struct {
	Phase, Freq, Amp float64
	CircleX          float64
	// ShiftY moves the circle vertically. When set, circle_sin holds the
	// shifted sine, otherwise the point is drawn at sin_theta.
	ShiftY   *float64
	PointRad float64
}

// phasor holds the quantities of one phasor group.
type phasor struct {
	group quantity.Group

	phase, freq, amp          quantity.ID
	circleX, pointRad, zero   quantity.ID
	shiftY                    quantity.ID
	theta, cosTheta, sinTheta quantity.ID
	circleCos, circleSin      quantity.ID

	// pointY is the y of the rotating point, circleY the y of the outline.
	pointY, circleY quantity.ID
}

// declarePhasor creates:
//
//	theta      = (phase + time * freq) % 2pi
//	cos_theta  = amp * cos(theta)
//	sin_theta  = amp * sin(theta)
//	circle_cos = circle_x + cos_theta
//	circle_sin = shift_y + sin_theta   (only with ShiftY)
func declarePhasor(m *graph.Manager, group quantity.Group, p phasorParams) phasor {
	clock := m.Clock()
	ph := phasor{group: group}
	ph.phase = m.Independent(group, "phase", p.Phase, RolePhase)
	ph.freq = m.Independent(group, "freq", p.Freq, RoleFreq)
	ph.amp = m.Independent(group, "amp", p.Amp, RoleAmp)
	ph.circleX = m.Independent(group, "circle_x", p.CircleX)
	ph.pointRad = m.Independent(group, "point_rad", p.PointRad)
	ph.zero = m.Independent(group, "zero", 0)

	ph.theta = m.Dependent(group, "theta",
		lam.Mod(lam.Add(lam.Var(ph.phase), lam.Mul(lam.Var(clock), lam.Var(ph.freq))), lam.Num(2*math.Pi)))
	ph.cosTheta = m.Dependent(group, "cos_theta", lam.Mul(lam.Var(ph.amp), lam.Cos(lam.Var(ph.theta))))
	ph.sinTheta = m.Dependent(group, "sin_theta", lam.Mul(lam.Var(ph.amp), lam.Sin(lam.Var(ph.theta))), RoleSinOutput)
	ph.circleCos = m.Dependent(group, "circle_cos", lam.Add(lam.Var(ph.circleX), lam.Var(ph.cosTheta)))

	ph.pointY, ph.circleY = ph.sinTheta, ph.zero
	if p.ShiftY != nil {
		ph.shiftY = m.Independent(group, "shift_y", *p.ShiftY, RoleShiftY)
		ph.circleSin = m.Dependent(group, "circle_sin", lam.Add(lam.Var(ph.shiftY), lam.Var(ph.sinTheta)))
		ph.pointY, ph.circleY = ph.circleSin, ph.shiftY
	}
	return ph
}

// draw adds the outline circle, the rotating point, the tracker and the
// horizontal line from the point to the tracker origin.
func (ph phasor) draw(b *builder, outlineWidth float64) {
	b.add(
		&drawing.Circle{
			Center: b.point(ph.circleX, ph.circleY),
			Radius: b.bind(ph.amp),
			Color:  drawing.White,
			Width:  outlineWidth,
		},
		&drawing.Circle{
			Center: b.point(ph.circleCos, ph.pointY),
			Radius: b.bind(ph.pointRad),
			Color:  drawing.Red,
			Width:  3,
		},
		drawing.NewTracker(b.bind(ph.pointY), TrackerLength),
		&drawing.Line{
			From:  b.point(ph.circleCos, ph.pointY),
			To:    b.point(ph.zero, ph.pointY),
			Color: drawing.White,
			Width: 2,
		},
	)
}

func shift(v float64) *float64 { return &v }

package pages

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/drawing"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
)

// ErrUnknownRow is returned by DeleteRow for groups that are not rows.
var ErrUnknownRow = errors.New("unknown row")

const (
	firstRowID    = 8
	firstRowShift = 200.0
	rowSpacing    = 75.0
	sumOffset     = 300.0
)

// RowParams are the initial values of a Fourier row.
type RowParams struct {
	Phase float64
	Freq  float64
	Amp   float64
}

// RandomRow draws row parameters on the same grid the inspector offers new
// rows: phase in tenths up to 20, freq in thirds up to 30, amp 5 to 25.
func RandomRow(rng *rand.Rand) RowParams {
	return RowParams{
		Phase: float64(1+rng.IntN(200)) / 10,
		Freq:  float64(1+rng.IntN(90)) / 3,
		Amp:   float64(5 + rng.IntN(21)),
	}
}

type row struct {
	id       int
	group    quantity.Group
	shiftY   float64
	sinTheta quantity.ID
	tracker  *drawing.Tracker
}

// Fourier sums a dynamic set of sine rows. Each row is its own group; the
// global sum is redefined whenever rows come and go.
type Fourier struct {
	m         *graph.Manager
	sum       quantity.ID
	sumOffset quantity.ID
	sumTrace  *drawing.Tracker
	rows      []*row
}

// NewFourier declares the empty sum and its trace, drawn 300 above the
// rows.
func NewFourier(ctx context.Context, m *graph.Manager) (*Fourier, error) {
	m.Clock()
	f := &Fourier{m: m}
	f.sum = m.Dependent(quantity.Global, "sum", lam.SumOf())
	f.sumOffset = m.Dependent(quantity.Global, "sum_offset", lam.Add(lam.Num(sumOffset), lam.Var(f.sum)))
	b, err := m.Bind(f.sumOffset)
	if err != nil {
		return nil, err
	}
	f.sumTrace = drawing.NewTracker(b, TrackerLength)
	ctxlog.FromContext(ctx).Debug("Fourier page ready.")
	return f, nil
}

func (f *Fourier) Name() string { return FourierName }

// Drawables returns the sum trace followed by one trace per row.
func (f *Fourier) Drawables() []drawing.Drawable {
	out := []drawing.Drawable{f.sumTrace}
	for _, r := range f.rows {
		out = append(out, r.tracker)
	}
	return out
}

// Rows returns the row groups in creation order.
func (f *Fourier) Rows() []quantity.Group {
	out := make([]quantity.Group, len(f.rows))
	for i, r := range f.rows {
		out[i] = r.group
	}
	return out
}

// Sum returns the global sum quantity.
func (f *Fourier) Sum() quantity.ID {
	return f.sum
}

// AddRow declares a new row group with the lowest free id from 8 and the
// highest free vertical slot from 200 downwards in steps of 75:
//
//	theta      = (phase + time * freq) % 2pi
//	sin_theta  = amp * sin(theta)
//	circle_sin = shift_y + sin_theta
func (f *Fourier) AddRow(ctx context.Context, p RowParams) (quantity.Group, error) {
	r := &row{id: f.nextID(), shiftY: f.nextShift()}
	r.group = quantity.Group(fmt.Sprintf("row%d", r.id))

	m := f.m
	clock := m.Clock()
	phase := m.Independent(r.group, "phase", p.Phase, RolePhase)
	freq := m.Independent(r.group, "freq", p.Freq, RoleFreq)
	amp := m.Independent(r.group, "amp", p.Amp, RoleAmp)
	shiftY := m.Independent(r.group, "shift_y", r.shiftY, RoleShiftY)
	theta := m.Dependent(r.group, "theta",
		lam.Mod(lam.Add(lam.Var(phase), lam.Mul(lam.Var(clock), lam.Var(freq))), lam.Num(2*math.Pi)))
	r.sinTheta = m.Dependent(r.group, "sin_theta", lam.Mul(lam.Var(amp), lam.Sin(lam.Var(theta))), RoleSinOutput)
	circleSin := m.Dependent(r.group, "circle_sin", lam.Add(lam.Var(shiftY), lam.Var(r.sinTheta)))

	b, err := m.Bind(circleSin)
	if err != nil {
		m.RemoveGroup(ctx, r.group)
		return "", err
	}
	r.tracker = drawing.NewTracker(b, TrackerLength)

	rows := append(f.rows[:len(f.rows):len(f.rows)], r)
	if err := f.redefineSum(rows); err != nil {
		m.RemoveGroup(ctx, r.group)
		return "", err
	}
	f.rows = rows
	ctxlog.FromContext(ctx).Info("Row added.", "group", r.group, "shiftY", r.shiftY)
	return r.group, nil
}

// DeleteRow removes every quantity of the row as a unit, releases its
// bindings and drops it from the sum.
func (f *Fourier) DeleteRow(ctx context.Context, group quantity.Group) error {
	idx := -1
	for i, r := range f.rows {
		if r.group == group {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w %q", ErrUnknownRow, group)
	}
	rows := make([]*row, 0, len(f.rows)-1)
	rows = append(rows, f.rows[:idx]...)
	rows = append(rows, f.rows[idx+1:]...)
	if err := f.redefineSum(rows); err != nil {
		return err
	}
	f.rows = rows
	f.m.RemoveGroup(ctx, group)
	ctxlog.FromContext(ctx).Info("Row deleted.", "group", group)
	return nil
}

// redefineSum points the sum at rows. The caller commits rows only on
// success.
func (f *Fourier) redefineSum(rows []*row) error {
	ids := make([]quantity.ID, len(rows))
	for i, r := range rows {
		ids[i] = r.sinTheta
	}
	return f.m.Redefine(f.sum, lam.SumOf(ids...))
}

func (f *Fourier) nextID() int {
	used := make(map[quantity.Group]struct{})
	for _, g := range f.m.Store().Groups() {
		used[g] = struct{}{}
	}
	id := firstRowID
	for {
		if _, taken := used[quantity.Group(fmt.Sprintf("row%d", id))]; !taken {
			return id
		}
		id++
	}
}

func (f *Fourier) nextShift() float64 {
	shift := firstRowShift
	for {
		free := true
		for _, r := range f.rows {
			if math.Abs(r.shiftY-shift) < 1 {
				free = false
				break
			}
		}
		if free {
			return shift
		}
		shift -= rowSpacing
	}
}

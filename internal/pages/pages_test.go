package pages

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/phasegrid/internal/drawing"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/quantity"
	"github.com/vk/phasegrid/internal/scheduler"
	"github.com/vk/phasegrid/internal/varstore"
)

func lookup(t *testing.T, m *graph.Manager, group quantity.Group, name string) float64 {
	t.Helper()
	id, err := m.Store().Lookup(group, name)
	require.NoError(t, err)
	v, err := m.Store().Value(id)
	require.NoError(t, err)
	return v
}

func tick(t *testing.T, m *graph.Manager) graph.Report {
	t.Helper()
	report, err := m.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, scheduler.Done, report.Result.State)
	return report
}

func TestBuildEveryPage(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			m := graph.New(graph.Options{})
			p, err := Build(context.Background(), name, m)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())
			assert.NotEmpty(t, p.Drawables())

			tick(t, m)
			drawing.SampleAll(p.Drawables())
			assert.NotPanics(t, func() { drawing.Render(64, 64, p.Drawables()) })
		})
	}
}

func TestBuildUnknownPage(t *testing.T) {
	_, err := Build(context.Background(), "page5", graph.New(graph.Options{}))
	assert.ErrorIs(t, err, ErrUnknownPage)
	assert.Contains(t, err.Error(), "simple, combination, game, fourier")
}

func TestSimpleValues(t *testing.T) {
	m := graph.New(graph.Options{TimeStep: 0.5})
	_, err := NewSimple(m)
	require.NoError(t, err)
	tick(t, m)

	assert.InDelta(t, 1.0, lookup(t, m, SimpleGroup, "theta"), 1e-12)
	assert.InDelta(t, 25.244, lookup(t, m, SimpleGroup, "sin_theta"), 1e-3)
	assert.InDelta(t, -200+30*math.Cos(1), lookup(t, m, SimpleGroup, "circle_cos"), 1e-9)
}

func TestCombinationSum(t *testing.T) {
	m := graph.New(graph.Options{TimeStep: 0.5})
	_, err := NewCombination(m)
	require.NoError(t, err)
	_, err = SetParam(m.Store(), LowerGroup, RoleAmp, 10)
	require.NoError(t, err)
	tick(t, m)

	upper := 30 * math.Sin(1)
	lower := 10 * math.Sin(1)
	assert.InDelta(t, upper, lookup(t, m, UpperGroup, "sin_theta"), 1e-9)
	assert.InDelta(t, 200+upper, lookup(t, m, UpperGroup, "circle_sin"), 1e-9)
	assert.InDelta(t, lower, lookup(t, m, LowerGroup, "circle_sin"), 1e-9)
	assert.InDelta(t, upper+lower-200, lookup(t, m, quantity.Global, "sum"), 1e-9)
}

func TestGame(t *testing.T) {
	m := graph.New(graph.Options{})
	g, err := NewGame(m)
	require.NoError(t, err)
	tick(t, m)

	won, err := g.Won()
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, "30.00sin(2.00x + 0.00)", g.Equation())

	s := m.Store()
	for role, v := range map[quantity.Role]float64{RoleFreq: 3.05, RoleAmp: 45, RolePhase: 1.15} {
		_, err := SetParam(s, KnownGroup, role, v)
		require.NoError(t, err)
	}
	won, err = g.Won()
	require.NoError(t, err)
	assert.True(t, won)

	_, err = SetParam(s, KnownGroup, RoleAmp, 44.8)
	require.NoError(t, err)
	won, err = g.Won()
	require.NoError(t, err)
	assert.False(t, won, "amplitude is off by more than the tolerance")

	tick(t, m)
	assert.Equal(t, "44.80sin(3.05x + 1.15)", g.Equation())
	assert.InDelta(t, -200+45*math.Sin(1.2+3*graph.DefaultTimeStep*2), lookup(t, m, UnknownGroup, "circle_sin"), 1e-9)
}

func TestSetParam(t *testing.T) {
	m := graph.New(graph.Options{})
	_, err := NewSimple(m)
	require.NoError(t, err)
	s := m.Store()

	tests := []struct {
		role quantity.Role
		in   float64
		want float64
	}{
		{RoleFreq, 100, 30},
		{RoleFreq, 4, 4},
		{RoleAmp, 0, 0.5},
		{RolePhase, -1, 0},
		{RolePhase, 7, 2 * math.Pi},
	}
	for _, tc := range tests {
		got, err := SetParam(s, SimpleGroup, tc.role, tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, tc.want, lookup(t, m, SimpleGroup, string(tc.role)))
	}

	_, err = SetParam(s, SimpleGroup, "frequency", 3)
	assert.ErrorIs(t, err, varstore.ErrAmbiguousOrMissingRole)

	_, err = SetParam(s, SimpleGroup, RoleSinOutput, 3)
	assert.ErrorIs(t, err, varstore.ErrDependentWrite)
}

func TestFourierRows(t *testing.T) {
	ctx := context.Background()
	m := graph.New(graph.Options{TimeStep: 0.5})
	f, err := NewFourier(ctx, m)
	require.NoError(t, err)

	tick(t, m)
	assert.Equal(t, 0.0, lookup(t, m, quantity.Global, "sum"))
	assert.Equal(t, 300.0, lookup(t, m, quantity.Global, "sum_offset"))

	g8, err := f.AddRow(ctx, RowParams{Phase: 0, Freq: 2, Amp: 10})
	require.NoError(t, err)
	g9, err := f.AddRow(ctx, RowParams{Phase: 1, Freq: 1, Amp: 5})
	require.NoError(t, err)
	g10, err := f.AddRow(ctx, RowParams{Phase: 0, Freq: 0, Amp: 1})
	require.NoError(t, err)
	assert.Equal(t, []quantity.Group{"row8", "row9", "row10"}, f.Rows())
	assert.Len(t, f.Drawables(), 4)
	assert.Equal(t, 200.0, lookup(t, m, g8, "shift_y"))
	assert.Equal(t, 125.0, lookup(t, m, g9, "shift_y"))
	assert.Equal(t, 50.0, lookup(t, m, g10, "shift_y"))

	tick(t, m) // time = 1
	row8 := 10 * math.Sin(2)
	row9 := 5 * math.Sin(2)
	assert.InDelta(t, row8+row9, lookup(t, m, quantity.Global, "sum"), 1e-9)
	assert.InDelta(t, 300+row8+row9, lookup(t, m, quantity.Global, "sum_offset"), 1e-9)
	assert.InDelta(t, 125+row9, lookup(t, m, g9, "circle_sin"), 1e-9)

	bindingsBefore := m.Bindings().Len()
	require.NoError(t, f.DeleteRow(ctx, g9))
	assert.Equal(t, bindingsBefore-1, m.Bindings().Len())
	assert.Empty(t, m.Store().InGroup(g9))
	assert.Equal(t, []quantity.Group{"row8", "row10"}, f.Rows())

	tick(t, m) // time = 1.5, must not be stuck on the deleted row
	assert.InDelta(t, 10*math.Sin(3), lookup(t, m, quantity.Global, "sum"), 1e-9)

	again, err := f.AddRow(ctx, RowParams{Freq: 1, Amp: 1})
	require.NoError(t, err)
	assert.Equal(t, g9, again, "freed row id is reused")
	assert.Equal(t, 125.0, lookup(t, m, again, "shift_y"), "freed slot is reused")

	assert.ErrorIs(t, f.DeleteRow(ctx, "row42"), ErrUnknownRow)
}

func TestFourierRowChangesAreAtomic(t *testing.T) {
	ctx := context.Background()
	m := graph.New(graph.Options{})
	f, err := NewFourier(ctx, m)
	require.NoError(t, err)
	g8, err := f.AddRow(ctx, RowParams{Freq: 1, Amp: 1})
	require.NoError(t, err)

	// Without the sum quantity no row change can be committed.
	require.NoError(t, m.Store().Remove(f.Sum()))
	bindings := m.Bindings().Len()

	_, err = f.AddRow(ctx, RowParams{Freq: 2, Amp: 2})
	require.Error(t, err)
	assert.Equal(t, []quantity.Group{g8}, f.Rows())
	assert.Len(t, f.Drawables(), 2)
	assert.Empty(t, m.Store().InGroup("row9"))
	assert.Equal(t, bindings, m.Bindings().Len())

	require.Error(t, f.DeleteRow(ctx, g8))
	assert.Equal(t, []quantity.Group{g8}, f.Rows())
	assert.NotEmpty(t, m.Store().InGroup(g8))
	assert.Equal(t, bindings, m.Bindings().Len())
}

func TestRandomRowStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		p := RandomRow(rng)
		assert.GreaterOrEqual(t, p.Phase, 0.1)
		assert.LessOrEqual(t, p.Phase, 20.0)
		assert.GreaterOrEqual(t, p.Freq, 1.0/3)
		assert.LessOrEqual(t, p.Freq, 30.0)
		assert.GreaterOrEqual(t, p.Amp, 5.0)
		assert.LessOrEqual(t, p.Amp, 25.0)
	}
	assert.Equal(t, RandomRow(rand.New(rand.NewPCG(7, 7))), RandomRow(rand.New(rand.NewPCG(7, 7))))
}

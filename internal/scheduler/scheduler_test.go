package scheduler

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
	"github.com/vk/phasegrid/internal/varstore"
)

type phasor struct {
	time, freq, amp, theta, sinTheta quantity.ID
}

func newPhasor(s *varstore.Store) phasor {
	p := phasor{
		time: s.CreateIndependent(quantity.Global, "time", 0),
		freq: s.CreateIndependent("page", "freq", 2),
		amp:  s.CreateIndependent("page", "amp", 30),
	}
	// Declared out of dependency order on purpose.
	p.sinTheta = s.CreateDependent("page", "sin_theta", lam.Num(0))
	p.theta = s.CreateDependent("page", "theta", lam.Mod(lam.Mul(lam.Var(p.time), lam.Var(p.freq)), lam.Num(2*math.Pi)))
	if err := s.Redefine(p.sinTheta, lam.Mul(lam.Var(p.amp), lam.Sin(lam.Var(p.theta)))); err != nil {
		panic(err)
	}
	return p
}

func value(t *testing.T, s *varstore.Store, id quantity.ID) float64 {
	t.Helper()
	v, err := s.Value(id)
	require.NoError(t, err)
	return v
}

func TestRunPhasorScenario(t *testing.T) {
	s := varstore.New()
	p := newPhasor(s)
	sched := New(Options{})

	res, err := sched.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, Done, res.State)
	assert.Equal(t, 2, res.Waves)
	assert.Equal(t, 2, res.Evaluated)
	assert.Equal(t, 0.0, value(t, s, p.theta))
	assert.Equal(t, 0.0, value(t, s, p.sinTheta))

	require.NoError(t, s.SetValue(p.time, 0.5))
	res, err = sched.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, Done, res.State)
	assert.InDelta(t, 1.0, value(t, s, p.theta), 1e-12)
	assert.InDelta(t, 25.244, value(t, s, p.sinTheta), 1e-3)

	for _, id := range s.Dependents() {
		ready, err := s.IsReady(id)
		require.NoError(t, err)
		assert.True(t, ready, "%s should be ready after a done run", id)
	}
}

func TestRunLeavesIndependentsUnchanged(t *testing.T) {
	s := varstore.New()
	p := newPhasor(s)
	require.NoError(t, s.SetValue(p.time, 1.25))

	_, err := New(Options{}).Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 1.25, value(t, s, p.time))
	assert.Equal(t, 2.0, value(t, s, p.freq))
	assert.Equal(t, 30.0, value(t, s, p.amp))
}

func TestRunIsDeterministic(t *testing.T) {
	s := varstore.New()
	p := newPhasor(s)
	require.NoError(t, s.SetValue(p.time, 3.7))
	sched := New(Options{})

	_, err := sched.Run(context.Background(), s)
	require.NoError(t, err)
	first := []float64{value(t, s, p.theta), value(t, s, p.sinTheta)}

	_, err = sched.Run(context.Background(), s)
	require.NoError(t, err)
	second := []float64{value(t, s, p.theta), value(t, s, p.sinTheta)}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("consecutive runs differ (-first +second):\n%s", diff)
	}
}

func TestRunGroupIsolation(t *testing.T) {
	s := varstore.New()
	amp1 := s.CreateIndependent("g1", "amp", 30)
	amp2 := s.CreateIndependent("g2", "amp", 10)
	out1 := s.CreateDependent("g1", "out", lam.Mul(lam.Var(amp1), lam.Num(2)))
	out2 := s.CreateDependent("g2", "out", lam.Mul(lam.Var(amp2), lam.Num(2)))
	sched := New(Options{})

	_, err := sched.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 60.0, value(t, s, out1))
	assert.Equal(t, 20.0, value(t, s, out2))

	require.NoError(t, s.SetValue(amp2, 11))
	_, err = sched.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 60.0, value(t, s, out1), "g1 must not see changes made in g2")
	assert.Equal(t, 22.0, value(t, s, out2))
}

func TestRunChainIsBoundedByDependentCount(t *testing.T) {
	s := varstore.New()
	prev := s.CreateIndependent("chain", "seed", 1)
	const n = 25
	var last quantity.ID
	for i := 0; i < n; i++ {
		last = s.CreateDependent("chain", "link", lam.Add(lam.Var(prev), lam.Num(1)))
		prev = last
	}

	res, err := New(Options{}).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, Done, res.State)
	assert.Equal(t, n, res.Waves)
	assert.LessOrEqual(t, res.Waves, len(s.Dependents()))
	assert.Equal(t, float64(n+1), value(t, s, last))
}

func TestRunCycleIsStuck(t *testing.T) {
	s := varstore.New()
	a := s.CreateDependent("g", "a", lam.Num(0))
	b := s.CreateDependent("g", "b", lam.Add(lam.Var(a), lam.Num(1)))
	require.NoError(t, s.Redefine(a, lam.Add(lam.Var(b), lam.Num(1))))
	free := s.CreateDependent("g", "free", lam.Num(4))

	res, err := New(Options{}).Run(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedDependencies)

	var ue *UnresolvedError
	require.True(t, errors.As(err, &ue))
	assert.ElementsMatch(t, []quantity.ID{a, b}, ue.IDs)

	assert.Equal(t, Stuck, res.State)
	assert.Equal(t, 1, res.Evaluated)
	assert.Equal(t, ue.IDs, res.Unresolved)
	assert.Equal(t, 4.0, value(t, s, free))
	assert.Equal(t, 0.0, value(t, s, a), "stuck quantities keep their previous value")

	ready, err := s.IsReady(a)
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestRunSelfReferenceIsStuck(t *testing.T) {
	s := varstore.New()
	a := s.CreateDependent("g", "a", lam.Num(0))
	require.NoError(t, s.Redefine(a, lam.Var(a)))

	res, err := New(Options{}).Run(context.Background(), s)
	assert.ErrorIs(t, err, ErrUnresolvedDependencies)
	assert.Equal(t, []quantity.ID{a}, res.Unresolved)
	assert.Equal(t, 0, res.Waves)
}

func TestRunRemovedDependencyIsStuck(t *testing.T) {
	s := varstore.New()
	amp := s.CreateIndependent("row", "amp", 3)
	out := s.CreateDependent("sum", "out", lam.Var(amp))
	sched := New(Options{})

	_, err := sched.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 3.0, value(t, s, out))

	s.RemoveGroup("row")
	res, err := sched.Run(context.Background(), s)
	assert.ErrorIs(t, err, ErrUnresolvedDependencies)
	assert.Equal(t, []quantity.ID{out}, res.Unresolved)
	assert.Equal(t, 3.0, value(t, s, out))
}

func TestRunEmptyStore(t *testing.T) {
	res, err := New(Options{}).Run(context.Background(), varstore.New())
	require.NoError(t, err)
	assert.Equal(t, Result{State: Done}, res)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	build := func() (*varstore.Store, []quantity.ID) {
		s := varstore.New()
		x := s.CreateIndependent("g", "x", 0.3)
		var outs []quantity.ID
		for i := 0; i < 64; i++ {
			mid := s.CreateDependent("g", "mid", lam.Mul(lam.Var(x), lam.Num(float64(i))))
			outs = append(outs, s.CreateDependent("g", "out", lam.Cos(lam.Var(mid))))
		}
		outs = append(outs, s.CreateDependent("g", "total", lam.SumOf(outs...)))
		return s, outs
	}

	seqStore, seqOuts := build()
	seqRes, err := New(Options{}).Run(context.Background(), seqStore)
	require.NoError(t, err)

	parStore, parOuts := build()
	parRes, err := New(Options{Workers: 8}).Run(context.Background(), parStore)
	require.NoError(t, err)

	assert.Equal(t, seqRes, parRes)
	assert.Equal(t, 3, parRes.Waves)
	for i := range seqOuts {
		assert.Equal(t, value(t, seqStore, seqOuts[i]), value(t, parStore, parOuts[i]))
	}
}

func TestRunCanceledContext(t *testing.T) {
	s := varstore.New()
	newPhasor(s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(Options{}).Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Converging, res.State)
	assert.Equal(t, 0, res.Waves)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "reset", Reset.String())
	assert.Equal(t, "converging", Converging.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "stuck", Stuck.String())
	assert.Equal(t, "state(9)", State(9).String())
}

package binding

import (
	"errors"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
	"github.com/vk/phasegrid/internal/varstore"
)

func TestBindBeforeFirstEvaluation(t *testing.T) {
	s := varstore.New()
	x := s.CreateIndependent("g", "x", 4)
	y := s.CreateDependent("g", "y", lam.Mul(lam.Var(x), lam.Num(2)))
	l := NewLayer()

	b, err := l.Bind(s, y)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.Value(), "unevaluated dependent reads the sentinel")
	assert.Equal(t, y, b.Target())

	require.NoError(t, s.Complete(y, 8))
	assert.Equal(t, 0.0, b.Value(), "bindings only change on refresh")

	require.NoError(t, l.Refresh(s))
	assert.Equal(t, 8.0, b.Value())
	assert.False(t, b.Stale())
}

func TestBindUnknownQuantity(t *testing.T) {
	l := NewLayer()
	_, err := l.Bind(varstore.New(), quantity.ID{Index: 3, Gen: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, varstore.ErrUnknownQuantity)
	assert.Equal(t, 0, l.Len())
}

func TestRefreshMarksRemovedTargetsStale(t *testing.T) {
	s := varstore.New()
	keep := s.CreateIndependent("keep", "a", 1)
	gone1 := s.CreateIndependent("row", "a", 2)
	gone2 := s.CreateIndependent("row", "b", 3)
	l := NewLayer()

	bKeep, err := l.Bind(s, keep)
	require.NoError(t, err)
	b1, err := l.Bind(s, gone1)
	require.NoError(t, err)
	b2, err := l.Bind(s, gone2)
	require.NoError(t, err)

	s.RemoveGroup("row")
	require.NoError(t, s.SetValue(keep, 10))

	err = l.Refresh(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, varstore.ErrUnknownQuantity)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)

	assert.Equal(t, 10.0, bKeep.Value())
	assert.True(t, b1.Stale())
	assert.True(t, b2.Stale())
	assert.Equal(t, 2.0, b1.Value(), "stale bindings keep their last value")

	assert.NoError(t, l.Refresh(s), "already stale bindings are reported once")
}

func TestRelease(t *testing.T) {
	s := varstore.New()
	a := s.CreateIndependent("g", "a", 1)
	b := s.CreateIndependent("g", "b", 2)
	l := NewLayer()

	ba, err := l.Bind(s, a)
	require.NoError(t, err)
	_, err = l.Bind(s, b)
	require.NoError(t, err)
	_, err = l.Bind(s, b)
	require.NoError(t, err)

	l.Release(ba)
	assert.Equal(t, 2, l.Len())

	assert.Equal(t, 2, l.ReleaseTarget(b))
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, l.ReleaseTarget(b))
}

func TestSnapshot(t *testing.T) {
	s := varstore.New()
	a := s.CreateIndependent("g", "a", 1.5)
	b := s.CreateIndependent("g", "b", -2)
	l := NewLayer()
	_, err := l.Bind(s, a)
	require.NoError(t, err)
	_, err = l.Bind(s, b)
	require.NoError(t, err)

	assert.Equal(t, []Reading{
		{Target: a, Value: 1.5},
		{Target: b, Value: -2},
	}, l.Snapshot())
}

func TestConcurrentReadsDuringRefresh(t *testing.T) {
	s := varstore.New()
	x := s.CreateIndependent("g", "x", 0)
	l := NewLayer()
	b, err := l.Bind(s, x)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := b.Value()
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}()
	for i := 1; i <= 100; i++ {
		require.NoError(t, s.SetValue(x, float64(i)))
		require.NoError(t, l.Refresh(s))
	}
	wg.Wait()
	assert.Equal(t, 100.0, b.Value())
}

package varstore

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
)

func TestCreateIndependent(t *testing.T) {
	s := New()
	id := s.CreateIndependent("page", "freq", 2)
	require.False(t, id.IsZero())

	v, err := s.Value(id)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	ready, err := s.IsReady(id)
	require.NoError(t, err)
	assert.True(t, ready, "independents are always ready")

	kind, err := s.Kind(id)
	require.NoError(t, err)
	assert.Equal(t, quantity.Independent, kind)
}

func TestCreateDependent(t *testing.T) {
	s := New()
	freq := s.CreateIndependent("page", "freq", 2)
	id := s.CreateDependent("page", "double", lam.Mul(lam.Num(2), lam.Var(freq)))

	v, err := s.Value(id)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "unevaluated dependents read the zero sentinel")

	ready, err := s.IsReady(id)
	require.NoError(t, err)
	assert.False(t, ready)

	deps, err := s.Deps(id)
	require.NoError(t, err)
	assert.Equal(t, []quantity.ID{freq}, deps)

	assert.Equal(t, []quantity.ID{id}, s.Dependents())
	assert.Equal(t, 2, s.Len())
}

func TestSetValue(t *testing.T) {
	s := New()
	indep := s.CreateIndependent("g", "a", 1)
	dep := s.CreateDependent("g", "b", lam.Var(indep))

	require.NoError(t, s.SetValue(indep, 5))
	v, err := s.Value(indep)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	err = s.SetValue(dep, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDependentWrite)

	v, err = s.Value(dep)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "rejected write must not change the value")
}

func TestCompleteAndMarkAllNotReady(t *testing.T) {
	s := New()
	indep := s.CreateIndependent("g", "a", 1)
	dep := s.CreateDependent("g", "b", lam.Var(indep))

	require.NoError(t, s.Complete(dep, 7))
	ready, err := s.IsReady(dep)
	require.NoError(t, err)
	assert.True(t, ready)

	s.MarkAllNotReady()

	ready, err = s.IsReady(dep)
	require.NoError(t, err)
	assert.False(t, ready)
	v, err := s.Value(dep)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v, "devaluation keeps the previous value")

	ready, err = s.IsReady(indep)
	require.NoError(t, err)
	assert.True(t, ready)

	assert.ErrorIs(t, s.Complete(indep, 1), ErrNotDependent)
}

func TestUnknownQuantity(t *testing.T) {
	s := New()
	tests := []struct {
		name string
		id   quantity.ID
	}{
		{name: "zero id", id: quantity.ID{}},
		{name: "never issued", id: quantity.ID{Index: 42, Gen: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Value(tc.id)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownQuantity)

			var uqe *UnknownQuantityError
			require.True(t, errors.As(err, &uqe))
			assert.Equal(t, tc.id, uqe.ID)

			assert.ErrorIs(t, s.SetValue(tc.id, 1), ErrUnknownQuantity)
			assert.False(t, s.Contains(tc.id))
		})
	}
}

func TestRemoveBumpsGeneration(t *testing.T) {
	s := New()
	old := s.CreateIndependent("g", "a", 1)
	require.NoError(t, s.Remove(old))

	_, err := s.Value(old)
	assert.ErrorIs(t, err, ErrUnknownQuantity)
	assert.ErrorIs(t, s.Remove(old), ErrUnknownQuantity)

	fresh := s.CreateIndependent("g", "b", 2)
	assert.Equal(t, old.Index, fresh.Index, "slot is reused")
	assert.NotEqual(t, old, fresh, "but the handle is not")

	_, err = s.Value(old)
	assert.ErrorIs(t, err, ErrUnknownQuantity, "stale handle must not read the new occupant")
	v, err := s.Value(fresh)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestRemoveGroup(t *testing.T) {
	s := New()
	keep := s.CreateIndependent("keep", "a", 1)
	a := s.CreateIndependent("row", "a", 1)
	b := s.CreateDependent("row", "b", lam.Var(a))

	removed := s.RemoveGroup("row")
	assert.Equal(t, []quantity.ID{a, b}, removed)
	assert.Empty(t, s.InGroup("row"))
	assert.Equal(t, []quantity.ID{keep}, s.InGroup("keep"))
	assert.Empty(t, s.Dependents())
	assert.Equal(t, []quantity.Group{"keep"}, s.Groups())
	assert.Empty(t, s.RemoveGroup("row"))
}

func TestRedefine(t *testing.T) {
	s := New()
	a := s.CreateIndependent("g", "a", 1)
	b := s.CreateIndependent("g", "b", 2)
	sum := s.CreateDependent("g", "sum", lam.SumOf(a))
	require.NoError(t, s.Complete(sum, 1))

	require.NoError(t, s.Redefine(sum, lam.SumOf(a, b)))

	deps, err := s.Deps(sum)
	require.NoError(t, err)
	assert.Equal(t, []quantity.ID{a, b}, deps)

	ready, err := s.IsReady(sum)
	require.NoError(t, err)
	assert.False(t, ready)

	assert.ErrorIs(t, s.Redefine(a, lam.Num(1)), ErrNotDependent)
}

func TestFind(t *testing.T) {
	s := New()
	amp1 := s.CreateIndependent("g1", "amp", 30)
	amp2 := s.CreateIndependent("g2", "amp", 10)
	require.NoError(t, s.Tag(amp1, "amp"))
	require.NoError(t, s.Tag(amp2, "amp", "amp"))

	t.Run("exactly one match per group", func(t *testing.T) {
		id, err := s.Find("g1", "amp")
		require.NoError(t, err)
		assert.Equal(t, amp1, id)

		id, err = s.Find("g2", "amp")
		require.NoError(t, err)
		assert.Equal(t, amp2, id)
	})

	t.Run("missing role suggests a close one", func(t *testing.T) {
		_, err := s.Find("g1", "ampl")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAmbiguousOrMissingRole)

		var me *MatchError
		require.True(t, errors.As(err, &me))
		assert.Empty(t, me.Matches)
		assert.Equal(t, "amp", me.Suggestion)
		assert.Contains(t, err.Error(), `did you mean "amp"?`)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := s.Find("nope", "amp")
		assert.ErrorIs(t, err, ErrAmbiguousOrMissingRole)
	})

	t.Run("ambiguous", func(t *testing.T) {
		other := s.CreateIndependent("g1", "amp_copy", 1)
		require.NoError(t, s.Tag(other, "amp"))
		defer func() { require.NoError(t, s.Remove(other)) }()

		_, err := s.Find("g1", "amp")
		require.Error(t, err)
		var me *MatchError
		require.True(t, errors.As(err, &me))
		if diff := cmp.Diff([]quantity.ID{amp1, other}, me.Matches); diff != "" {
			t.Errorf("matches mismatch (-want +got):\n%s", diff)
		}
		assert.Contains(t, err.Error(), "matches 2 quantities")
	})
}

func TestLookup(t *testing.T) {
	s := New()
	id := s.CreateIndependent("page", "phase", 0)

	got, err := s.Resolve(quantity.NewAddress("page", "phase"))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = s.Lookup("page", "phse")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousOrMissingName)
	assert.NotErrorIs(t, err, ErrAmbiguousOrMissingRole)
	var me *MatchError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "phase", me.Suggestion)
}

func TestNameSuggestion(t *testing.T) {
	tests := []struct {
		name       string
		given      string
		candidates []string
		want       string
	}{
		{name: "one typo", given: "phse", candidates: []string{"amp", "phase"}, want: "phase"},
		{name: "closest wins", given: "ampl", candidates: []string{"amplitude", "amp"}, want: "amp"},
		{name: "tie breaks alphabetically", given: "ab", candidates: []string{"ac", "aa"}, want: "aa"},
		{name: "too far", given: "frequency", candidates: []string{"amp"}, want: ""},
		{name: "no candidates", given: "x", candidates: nil, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NameSuggestion(tc.given, tc.candidates))
		})
	}
}

func TestInfo(t *testing.T) {
	s := New()
	a := s.CreateIndependent("page", "a", 3)
	require.NoError(t, s.Tag(a, "amp"))
	b := s.CreateDependent("page", "b", lam.Neg(lam.Var(a)))

	info, err := s.Info(b)
	require.NoError(t, err)
	assert.Equal(t, quantity.Dependent, info.Kind)
	assert.Equal(t, "page.b", info.Address().String())
	assert.Equal(t, []quantity.ID{a}, info.Deps)
	assert.False(t, info.Ready)

	info, err = s.Info(a)
	require.NoError(t, err)
	assert.Equal(t, []quantity.Role{"amp"}, info.Roles)
	assert.Equal(t, 3.0, info.Value)
	assert.Equal(t, "a", s.Name(a))
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ids := make([]quantity.ID, 50)
	for i := range ids {
		ids[i] = s.CreateDependent("g", "d", lam.Num(float64(i)))
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(2)
		go func(id quantity.ID, v float64) {
			defer wg.Done()
			assert.NoError(t, s.Complete(id, v))
		}(id, float64(i))
		go func(id quantity.ID) {
			defer wg.Done()
			_, err := s.Value(id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	for i, id := range ids {
		v, err := s.Value(id)
		require.NoError(t, err)
		assert.Equal(t, float64(i), v)
	}
}

package binding

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/phasegrid/internal/quantity"
)

// Source is what bindings read from. *varstore.Store implements it.
type Source interface {
	Value(id quantity.ID) (float64, error)
}

// Binding is a read-only view of one quantity's last refreshed value.
type Binding struct {
	target quantity.ID
	bits   atomic.Uint64
	stale  atomic.Bool
}

// Value returns the value copied by the most recent refresh.
func (b *Binding) Value() float64 {
	return math.Float64frombits(b.bits.Load())
}

// Target returns the quantity the binding follows.
func (b *Binding) Target() quantity.ID {
	return b.target
}

// Stale reports whether the target disappeared. A stale binding keeps the
// last value it saw.
func (b *Binding) Stale() bool {
	return b.stale.Load()
}

func (b *Binding) set(v float64) {
	b.bits.Store(math.Float64bits(v))
}

// Layer owns all bindings and refreshes them in bulk.
type Layer struct {
	mu       sync.Mutex
	bindings []*Binding
}

// NewLayer creates an empty binding layer.
func NewLayer() *Layer {
	return &Layer{}
}

// Bind creates a binding to id, initialized with the quantity's current
// value. Before the first evaluation that is the 0 sentinel of a dependent.
func (l *Layer) Bind(src Source, id quantity.ID) (*Binding, error) {
	v, err := src.Value(id)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", id, err)
	}
	b := &Binding{target: id}
	b.set(v)

	l.mu.Lock()
	l.bindings = append(l.bindings, b)
	l.mu.Unlock()
	return b, nil
}

// Refresh copies the current value of every target into its binding.
// Targets that no longer exist mark their binding stale; the bindings that
// went stale during this refresh are returned together as one error.
func (l *Layer) Refresh(src Source) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result *multierror.Error
	for _, b := range l.bindings {
		v, err := src.Value(b.target)
		if err != nil {
			if !b.stale.Swap(true) {
				result = multierror.Append(result, fmt.Errorf("refresh binding to %s: %w", b.target, err))
			}
			continue
		}
		b.stale.Store(false)
		b.set(v)
	}
	return result.ErrorOrNil()
}

// Release stops refreshing b.
func (l *Layer) Release(b *Binding) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, have := range l.bindings {
		if have == b {
			l.bindings = append(l.bindings[:i], l.bindings[i+1:]...)
			return
		}
	}
}

// ReleaseTarget drops every binding that follows one of ids and returns how
// many were released.
func (l *Layer) ReleaseTarget(ids ...quantity.ID) int {
	drop := make(map[quantity.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.bindings[:0]
	for _, b := range l.bindings {
		if _, ok := drop[b.target]; !ok {
			kept = append(kept, b)
		}
	}
	n := len(l.bindings) - len(kept)
	for i := len(kept); i < len(l.bindings); i++ {
		l.bindings[i] = nil
	}
	l.bindings = kept
	return n
}

// Len returns the number of live bindings.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bindings)
}

// Snapshot returns the target and current value of every binding, in
// creation order.
func (l *Layer) Snapshot() []Reading {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Reading, len(l.bindings))
	for i, b := range l.bindings {
		out[i] = Reading{Target: b.target, Value: b.Value(), Stale: b.Stale()}
	}
	return out
}

// Reading is one entry of a Snapshot.
type Reading struct {
	Target quantity.ID
	Value  float64
	Stale  bool
}

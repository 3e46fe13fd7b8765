package scheduler

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
	"golang.org/x/sync/errgroup"
)

// State is the phase of an evaluation run.
type State int

const (
	Reset State = iota
	Converging
	Done
	Stuck
)

func (s State) String() string {
	switch s {
	case Reset:
		return "reset"
	case Converging:
		return "converging"
	case Done:
		return "done"
	case Stuck:
		return "stuck"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Scheduler.
type Options struct {
	// Workers bounds how many dependents of one wave are evaluated
	// concurrently. Values below 2 evaluate sequentially.
	Workers int
}

// Scheduler runs the per-tick evaluation. It holds no per-run state and may
// be reused across ticks.
type Scheduler struct {
	workers int
}

// New creates a scheduler.
func New(opts Options) *Scheduler {
	return &Scheduler{workers: opts.Workers}
}

// Result summarizes a run.
type Result struct {
	State State
	// Waves is the number of waves evaluated.
	Waves int
	// Evaluated is the number of dependents that became ready.
	Evaluated int
	// Unresolved lists the dependents left not ready when State is Stuck.
	Unresolved []quantity.ID
}

// Run devaluates every dependent and then evaluates them in waves until all
// are ready or no further progress is possible. A stuck run returns its
// Result together with an *UnresolvedError; the context is checked between
// waves.
func (s *Scheduler) Run(ctx context.Context, store Store) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	res := Result{State: Reset}

	store.MarkAllNotReady()

	deps := store.Dependents()
	pending := make(map[quantity.ID]int, len(deps))
	for _, id := range deps {
		pending[id] = 0
	}

	// readers maps a dependent to the dependents whose expressions read it.
	readers := make(map[quantity.ID][]quantity.ID)
	for _, id := range deps {
		inputs, err := store.Deps(id)
		if err != nil {
			return res, fmt.Errorf("reading dependencies of %s: %w", id, err)
		}
		for _, in := range inputs {
			if _, isDependent := pending[in]; isDependent {
				pending[id]++
				readers[in] = append(readers[in], id)
				continue
			}
			if !store.Contains(in) {
				// Never becomes ready.
				logger.Debug("Dependent reads a missing quantity.", "quantityID", id, "missingID", in)
				pending[id]++
			}
		}
	}

	var wave []quantity.ID
	for _, id := range deps {
		if pending[id] == 0 {
			wave = append(wave, id)
		}
	}

	res.State = Converging
	for len(wave) > 0 && res.Waves < len(deps) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Waves++
		logger.Debug("Evaluating wave.", "wave", res.Waves, "size", len(wave))

		if err := s.evaluateWave(ctx, store, wave); err != nil {
			return res, fmt.Errorf("wave %d: %w", res.Waves, err)
		}
		res.Evaluated += len(wave)

		var next []quantity.ID
		for _, id := range wave {
			delete(pending, id)
			for _, r := range readers[id] {
				pending[r]--
				if pending[r] == 0 {
					next = append(next, r)
				}
			}
		}
		wave = next
	}

	if len(pending) == 0 {
		res.State = Done
		return res, nil
	}

	res.State = Stuck
	for _, id := range deps {
		if _, ok := pending[id]; ok {
			res.Unresolved = append(res.Unresolved, id)
		}
	}
	return res, &UnresolvedError{IDs: res.Unresolved}
}

func (s *Scheduler) evaluateWave(ctx context.Context, store Store, wave []quantity.ID) error {
	if s.workers < 2 || len(wave) < 2 {
		for _, id := range wave {
			if err := evaluate(store, id); err != nil {
				return err
			}
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, id := range wave {
		g.Go(func() error {
			return evaluate(store, id)
		})
	}
	return g.Wait()
}

// evaluate computes one dependent from the current values of its inputs and
// completes it. Every input is ready by construction of the wave.
func evaluate(store Store, id quantity.ID) error {
	expr, err := store.Expr(id)
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", id, err)
	}
	v := lam.Evaluate(expr, func(in quantity.ID) float64 {
		v, err := store.Value(in)
		if err != nil {
			return math.NaN()
		}
		return v
	})
	if err := store.Complete(id, v); err != nil {
		return fmt.Errorf("completing %s: %w", id, err)
	}
	return nil
}

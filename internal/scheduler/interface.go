package scheduler

import (
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
)

// Store is the part of the variable store the scheduler drives.
//
// The scheduler is responsible for:
//   - **Devaluation:** MarkAllNotReady before the first wave
//   - **Wave Detection:** counting each dependent's unready inputs via Deps
//   - **Evaluation:** reading Expr and input Values, then Complete
//
// A dependency that is not Contained (removed, or never declared) is never
// ready, so the dependent waiting on it ends the run Stuck.
//
// # Thread-Safety
//
// With more than one worker, Value, Expr and Complete are called from
// several goroutines within a wave. Complete is only ever called for
// distinct ids in the same wave, and never for an id whose Value is being
// read in that wave.
type Store interface {
	MarkAllNotReady()
	// Dependents returns every dependent in a stable order; the run
	// reports unresolved ids in this order.
	Dependents() []quantity.ID
	Deps(id quantity.ID) ([]quantity.ID, error)
	Expr(id quantity.ID) (lam.Expr, error)
	Value(id quantity.ID) (float64, error)
	Contains(id quantity.ID) bool
	// Complete stores the evaluated value and marks id ready.
	Complete(id quantity.ID, v float64) error
}

package graph

import (
	"context"
	"io"
)

// Graph is the surface the run loop and the CLI need from a quantity graph.
type Graph interface {
	// Enqueue schedules an input for the next tick. Safe to call from any
	// goroutine.
	Enqueue(in Input)

	// Tick applies pending inputs, advances the clock, evaluates every
	// dependent and refreshes bindings.
	//
	// Unresolved dependencies are reported in the returned Report, not as an
	// error; errors are reserved for cancellation and store failures.
	Tick(ctx context.Context) (Report, error)

	// Readings returns the bound values keyed by "group.name", as of the
	// last tick.
	Readings() map[string]float64

	// Describe writes the groups, quantities and dependency trees.
	Describe(w io.Writer) error
}

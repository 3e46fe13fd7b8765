// Package scheduler evaluates every dependent quantity of a store once per
// tick.
//
// A run moves through Reset (all dependents marked not ready), Converging
// (wave after wave of dependents whose inputs are all ready) and ends in
// Done or Stuck. Waves are computed Kahn-style from per-dependent counts of
// unready inputs, so a run never takes more waves than there are dependents
// and a cycle or a reference to a removed quantity ends the run as Stuck
// instead of looping.
package scheduler

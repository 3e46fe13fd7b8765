// Package graph provides a unified facade over the quantity store, the
// evaluation scheduler and the binding layer, and drives them once per tick.
//
// # Why Graph Package Exists
//
// Pages, the live stream and the run loop all need the same three things:
// declare quantities, push external inputs, and read evaluated values. The
// Manager owns the store, scheduler and binding layer so those consumers never
// coordinate the per-tick ordering themselves.
//
// # Tick Ordering
//
// Every call to Tick performs, in order:
//
//  1. Apply queued inputs (stream "set" events, inspector changes) to
//     independent quantities.
//  2. Advance the shared clock: the quantity of group "global" tagged with
//     role "time", if one exists, grows by the configured time step.
//  3. Run the scheduler: Reset, then Converging waves, ending Done or Stuck.
//  4. Refresh every binding from the store.
//
// A Stuck run is not fatal. The unresolved quantities are logged at warn
// level, keep their previous values, and bindings are still refreshed.
//
// # Thread-Safety
//
// Enqueue may be called from any goroutine. Tick, Describe and the
// setup methods belong to the tick goroutine; binding values may be read
// from anywhere.
package graph

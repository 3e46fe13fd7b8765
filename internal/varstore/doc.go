// Package varstore holds every quantity of the graph in a generational
// arena.
//
// # Why the Store Exists
//
// Every page, drawable and input driver talks about quantities by handle.
// The store is the single owner of their records: the variant
// (independent or dependent), the per-tick ready flag, the current value,
// the expression of a dependent, and the group, name and role tags used by
// bulk lookups. Nothing else keeps pointers into it.
//
// # Handles
//
// A quantity.ID is an arena index plus a generation. Removing a quantity
// bumps the generation of its slot, so an old handle returns
// ErrUnknownQuantity instead of reading whatever was allocated next.
//
// # Writers
//
// Independent quantities are written by external drivers (time advance,
// inspector inputs) through SetValue, which refuses dependents.
// Dependent quantities are written only by the scheduler through Complete.
// All methods are safe for concurrent use; the per-tick contract of one
// writer per quantity is what keeps values meaningful.
package varstore

// internal/quantity/doc.go

/*
Package quantity provides the identifiers shared by every part of the
quantity graph: the generational handle of a quantity, the flat group tag
that namespaces instances of the same equation template, role tags used for
group-scoped lookups, and the human-readable `group.name` address.

An ID is an arena index plus a generation. A slot whose quantity is removed
gets a new generation, so IDs held by stale callers stop resolving instead of
silently pointing at a different quantity.
*/
package quantity

// Package pages builds the demo graphs: a single phasor, two combined
// phasors, a matching game and a Fourier-style sum of dynamic rows.
//
// Each builder declares its quantities in a graph.Manager, tags the
// adjustable ones with roles so inspectors and stream clients can address
// them with Find, and returns shapes bound to the quantities it draws.
package pages

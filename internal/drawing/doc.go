// Package drawing holds the shapes whose geometry is bound to quantities and
// renders them into PNG snapshots.
//
// Shapes never read the store. Every coordinate and radius comes from a
// binding, so a frame always shows the values of one completed tick.
// World coordinates put the origin at the center of the image with y
// growing upwards.
package drawing

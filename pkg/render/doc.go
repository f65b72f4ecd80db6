// Package render prints generated Go source from builder specs and
// violation catalogs.
//
// Rendering is a straightforward templated text emitter: the hard decisions
// (what slots exist, what the finisher does, which violation variants are
// declared) were all made upstream by pkg/builder and pkg/violations; this
// package only turns them into text. Shapes render independently and in
// parallel; output is staged through the generator's two-phase writable
// registry so files assemble in stable order regardless of render timing.
package render

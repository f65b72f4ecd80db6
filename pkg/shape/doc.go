// Package shape defines the schema graph model consumed by the ratchet
// compilation pipeline.
//
// # Overview
//
// A schema is a graph of named shape definitions (structures, lists, maps,
// unions, scalars) connected by member edges. Edges carry presence metadata
// (required flag, optional default); before normalization they may also carry
// value-constraint traits that override the traits of their target shape.
//
// The graph is arena-backed: nodes live in a flat slice and edges refer to
// their targets by NodeID index. This keeps cyclic and self-referential
// schemas representable without reference cycles, and makes structural
// equality and deep copying cheap.
//
// Graphs are logically immutable once built. Pipeline stages that rewrite the
// graph (see pkg/normalize) produce a new Graph value rather than mutating in
// place.
//
// # Related Packages
//
//   - pkg/normalize: lifts edge constraints onto synthetic shapes
//   - pkg/analysis: fallibility classification
//   - pkg/builder: validated builder synthesis
package shape

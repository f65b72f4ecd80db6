// Package normalize rewrites edge-level constraint overrides into standalone
// synthetic shapes.
//
// # Overview
//
// The target representation cannot express constraints per member edge, so
// every edge that overrides its target's constraints is retargeted at a
// synthetic shape that hosts the merged constraint set. After normalization
// every member edge carries only presence metadata (required flag, default)
// and all value constraints live on shapes.
//
// Normalization walks only the edges reachable from the graph's boundary
// roots; unreachable shapes pass through unchanged. The rewrite is atomic:
// synthesized shapes and retargets are collected during the walk and applied
// in one step, producing a new graph value. Edges are processed in sorted
// fully-qualified member order so synthetic names are reproducible across
// runs on the same input.
//
// Normalization is idempotent: a normalized graph has no overriding edges
// left, so a second pass returns a structurally equal graph.
package normalize

// Package analysis classifies shapes of a normalized graph as fallible or
// infallible to construct.
//
// A shape is fallible when building an instance of it can be rejected: it
// carries value constraints of its own, it has a required member without a
// default, or it is boundary-reachable and some member path leads to a
// constrained shape (externally supplied data must always be validated).
//
// The classification drives the synthesized finisher shape: fallible types
// finish into a success-or-violation outcome, infallible types always
// produce a value.
package analysis

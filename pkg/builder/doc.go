// Package builder synthesizes the staged construction API for each
// structural shape: an accumulator with one slot per member and a finisher
// that produces either a valid instance or the first violation encountered.
//
// # Overview
//
// Each slot is Unset or Set. Members whose target requires validation store
// a tagged value that is either raw unvalidated input or already validated
// output; deserializers populate fields in wire order, before the target's
// invariants may have been checked, while the finisher still guarantees
// exactly one validation pass per member. Unconstrained members store the
// final representation directly.
//
// The finisher walks members strictly in declaration order: substitute a
// rendered default, fail fast on a missing required member, run the target's
// own finisher over raw input (wrapping failures in the member's nested
// violation variant), or take validated values as-is. Infallible shapes get
// a finisher that never aborts but still substitutes defaults and unboxes
// recursive slots.
//
// Specs are memoized per generation run and reference-stable under repeated
// lookup.
package builder

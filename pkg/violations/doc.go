// Package violations enumerates the failure variants a fallible shape's
// finisher can produce.
//
// A catalog lists one variant per failure cause: a missing required member,
// a nested failure forwarded from a member's own fallible target, or a
// constraint carried by the shape itself. Catalogs are computed lazily,
// memoized per generation run and reference-stable across repeated lookups;
// downstream consumers compare catalog identity to decide whether supporting
// code needs regenerating.
//
// A catalog never aggregates simultaneous failures: the synthesized finisher
// reports the first violation in declaration order and stops. Multi-field
// error reports are assembled by external collaborators.
package violations

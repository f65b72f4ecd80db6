// Package constraint is the runtime consumed by generated code to evaluate
// value constraints.
//
// The compiler itself never evaluates a constraint against a real value; it
// only decides what checking code must exist. Generated finishers call the
// helpers in this package and map failures onto their shape's violation
// variants.
package constraint

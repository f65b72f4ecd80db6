package normalize

import "errors"

var (
	// ErrNamespaceExhausted is returned when no collision-free synthetic
	// shape name could be found within the probing bound
	ErrNamespaceExhausted = errors.New("synthetic name space exhausted")

	// ErrCannotHostConstraint is returned when an edge override lifts a
	// constraint onto a target that cannot carry it
	ErrCannotHostConstraint = errors.New("target shape cannot host constraint")
)

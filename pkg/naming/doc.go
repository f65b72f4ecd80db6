// Package naming maps shape and member identities to target-language
// identifiers.
//
// The compilation core only ever calls the Namer interface to obtain display
// names; casing rules and reserved-word escaping live entirely behind it, so
// alternate target conventions can be swapped in without touching the
// pipeline.
package naming

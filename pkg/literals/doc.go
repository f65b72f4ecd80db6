// Package literals renders member default values into target-language
// literal syntax for substitution inside synthesized finishers.
package literals

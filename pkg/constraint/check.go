package constraint

import (
	"fmt"
	"regexp"

	"github.com/platinummonkey/ratchet/pkg/shape"
)

// Failure represents a single constraint check failure
type Failure struct {
	Kind    shape.ConstraintKind
	Message string
}

// Error returns the failure message
func (f *Failure) Error() string {
	return fmt.Sprintf("%s constraint violated: %s", f.Kind, f.Message)
}

// CheckRange checks a numeric value against an inclusive range
func CheckRange(c shape.RangeConstraint, v float64) error {
	if c.Min != nil && v < *c.Min {
		return &Failure{
			Kind:    shape.ConstraintRange,
			Message: fmt.Sprintf("value %v is less than minimum %v", v, *c.Min),
		}
	}
	if c.Max != nil && v > *c.Max {
		return &Failure{
			Kind:    shape.ConstraintRange,
			Message: fmt.Sprintf("value %v is greater than maximum %v", v, *c.Max),
		}
	}
	return nil
}

// CheckLength checks an element or byte count against a length bound
func CheckLength(c shape.LengthConstraint, n int) error {
	if c.Min != nil && int64(n) < *c.Min {
		return &Failure{
			Kind:    shape.ConstraintLength,
			Message: fmt.Sprintf("length %d is less than minimum %d", n, *c.Min),
		}
	}
	if c.Max != nil && int64(n) > *c.Max {
		return &Failure{
			Kind:    shape.ConstraintLength,
			Message: fmt.Sprintf("length %d is greater than maximum %d", n, *c.Max),
		}
	}
	return nil
}

// Pattern is a compiled pattern constraint. Generated code compiles each
// pattern once at package initialization.
type Pattern struct {
	re *regexp.Regexp
}

// CompilePattern compiles a pattern constraint's regular expression
func CompilePattern(c shape.PatternConstraint) (*Pattern, error) {
	re, err := regexp.Compile(c.Expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", c.Expr, err)
	}
	return &Pattern{re: re}, nil
}

// MustCompilePattern compiles a pattern or panics; for generated package
// initializers whose patterns were already vetted at generation time.
func MustCompilePattern(c shape.PatternConstraint) *Pattern {
	p, err := CompilePattern(c)
	if err != nil {
		panic(err)
	}
	return p
}

// Check checks a string value against the pattern
func (p *Pattern) Check(v string) error {
	if !p.re.MatchString(v) {
		return &Failure{
			Kind:    shape.ConstraintPattern,
			Message: fmt.Sprintf("value %q does not match pattern %q", v, p.re.String()),
		}
	}
	return nil
}

// CheckEnum checks a string value against a closed value set
func CheckEnum(c shape.EnumConstraint, v string) error {
	for _, allowed := range c.Values {
		if v == allowed {
			return nil
		}
	}
	return &Failure{
		Kind:    shape.ConstraintEnum,
		Message: fmt.Sprintf("value %q is not one of the allowed values", v),
	}
}

// CheckUniqueItems checks that list items are pairwise distinct
func CheckUniqueItems[T comparable](items []T) error {
	seen := make(map[T]int, len(items))
	for i, item := range items {
		if first, dup := seen[item]; dup {
			return &Failure{
				Kind:    shape.ConstraintUniqueItems,
				Message: fmt.Sprintf("items %d and %d are duplicates", first, i),
			}
		}
		seen[item] = i
	}
	return nil
}

package shape

import "sort"

// ConstraintKind represents the kind of a value-constraint trait
type ConstraintKind int

const (
	ConstraintRange ConstraintKind = iota
	ConstraintLength
	ConstraintPattern
	ConstraintUniqueItems
	ConstraintEnum
)

// String returns the lowercase name of the constraint kind
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintRange:
		return "range"
	case ConstraintLength:
		return "length"
	case ConstraintPattern:
		return "pattern"
	case ConstraintUniqueItems:
		return "uniqueItems"
	case ConstraintEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Constraint is a value-constraint trait. Exactly one concrete type exists
// per ConstraintKind; override and union logic switches exhaustively on Kind.
type Constraint interface {
	ConstraintKind() ConstraintKind
	equal(Constraint) bool
}

// RangeConstraint restricts a numeric value to an inclusive interval.
// A nil bound is unbounded on that side.
type RangeConstraint struct {
	Min *float64
	Max *float64
}

// ConstraintKind returns ConstraintRange
func (c RangeConstraint) ConstraintKind() ConstraintKind { return ConstraintRange }

func (c RangeConstraint) equal(o Constraint) bool {
	other, ok := o.(RangeConstraint)
	return ok && floatPtrEqual(c.Min, other.Min) && floatPtrEqual(c.Max, other.Max)
}

// LengthConstraint restricts the length of a string, blob, list or map.
// A nil bound is unbounded on that side.
type LengthConstraint struct {
	Min *int64
	Max *int64
}

// ConstraintKind returns ConstraintLength
func (c LengthConstraint) ConstraintKind() ConstraintKind { return ConstraintLength }

func (c LengthConstraint) equal(o Constraint) bool {
	other, ok := o.(LengthConstraint)
	return ok && intPtrEqual(c.Min, other.Min) && intPtrEqual(c.Max, other.Max)
}

// PatternConstraint restricts a string value to a regular expression
type PatternConstraint struct {
	Expr string
}

// ConstraintKind returns ConstraintPattern
func (c PatternConstraint) ConstraintKind() ConstraintKind { return ConstraintPattern }

func (c PatternConstraint) equal(o Constraint) bool {
	other, ok := o.(PatternConstraint)
	return ok && c.Expr == other.Expr
}

// UniqueItemsConstraint requires list elements to be pairwise distinct
type UniqueItemsConstraint struct{}

// ConstraintKind returns ConstraintUniqueItems
func (c UniqueItemsConstraint) ConstraintKind() ConstraintKind { return ConstraintUniqueItems }

func (c UniqueItemsConstraint) equal(o Constraint) bool {
	_, ok := o.(UniqueItemsConstraint)
	return ok
}

// EnumConstraint restricts a string value to a closed set
type EnumConstraint struct {
	Values []string
}

// ConstraintKind returns ConstraintEnum
func (c EnumConstraint) ConstraintKind() ConstraintKind { return ConstraintEnum }

func (c EnumConstraint) equal(o Constraint) bool {
	other, ok := o.(EnumConstraint)
	if !ok || len(c.Values) != len(other.Values) {
		return false
	}
	for i, v := range c.Values {
		if other.Values[i] != v {
			return false
		}
	}
	return true
}

// ConstraintSet holds at most one constraint per kind
type ConstraintSet struct {
	byKind map[ConstraintKind]Constraint
}

// NewConstraintSet builds a set from the given constraints. A later
// constraint of the same kind replaces an earlier one.
func NewConstraintSet(constraints ...Constraint) ConstraintSet {
	var s ConstraintSet
	for _, c := range constraints {
		s = s.With(c)
	}
	return s
}

// Empty reports whether the set holds no constraints
func (s ConstraintSet) Empty() bool {
	return len(s.byKind) == 0
}

// Len returns the number of constraints in the set
func (s ConstraintSet) Len() int {
	return len(s.byKind)
}

// Get returns the constraint of the given kind, if present
func (s ConstraintSet) Get(kind ConstraintKind) (Constraint, bool) {
	c, ok := s.byKind[kind]
	return c, ok
}

// Has reports whether a constraint of the given kind is present
func (s ConstraintSet) Has(kind ConstraintKind) bool {
	_, ok := s.byKind[kind]
	return ok
}

// With returns a copy of the set with the constraint added, replacing any
// existing constraint of the same kind. The receiver is unchanged.
func (s ConstraintSet) With(c Constraint) ConstraintSet {
	out := make(map[ConstraintKind]Constraint, len(s.byKind)+1)
	for k, v := range s.byKind {
		out[k] = v
	}
	out[c.ConstraintKind()] = c
	return ConstraintSet{byKind: out}
}

// Kinds returns the constraint kinds present, in ascending kind order
func (s ConstraintSet) Kinds() []ConstraintKind {
	kinds := make([]ConstraintKind, 0, len(s.byKind))
	for k := range s.byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// All returns the constraints in ascending kind order
func (s ConstraintSet) All() []Constraint {
	kinds := s.Kinds()
	out := make([]Constraint, len(kinds))
	for i, k := range kinds {
		out[i] = s.byKind[k]
	}
	return out
}

// Merge returns override ∪ (base \ kinds(override)): every constraint from
// override, plus the base constraints whose kind the override does not carry.
func Merge(override, base ConstraintSet) ConstraintSet {
	out := make(map[ConstraintKind]Constraint, len(override.byKind)+len(base.byKind))
	for k, v := range base.byKind {
		out[k] = v
	}
	for k, v := range override.byKind {
		out[k] = v
	}
	return ConstraintSet{byKind: out}
}

// Equal reports whether two sets hold identical constraints
func (s ConstraintSet) Equal(o ConstraintSet) bool {
	if len(s.byKind) != len(o.byKind) {
		return false
	}
	for k, v := range s.byKind {
		ov, ok := o.byKind[k]
		if !ok || !v.equal(ov) {
			return false
		}
	}
	return true
}

// CanHost reports whether a shape of the given kind (and scalar type, for
// scalars) can carry a constraint of the given constraint kind.
func CanHost(kind Kind, scalar ScalarType, c ConstraintKind) bool {
	switch c {
	case ConstraintRange:
		return kind == KindScalar && scalar.Numeric()
	case ConstraintLength:
		if kind == KindList || kind == KindMap {
			return true
		}
		return kind == KindScalar && (scalar == ScalarString || scalar == ScalarBlob)
	case ConstraintPattern, ConstraintEnum:
		return kind == KindScalar && scalar == ScalarString
	case ConstraintUniqueItems:
		return kind == KindList
	default:
		return false
	}
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

package violations

import (
	"errors"
	"unicode"

	"github.com/platinummonkey/ratchet/pkg/analysis"
	"github.com/platinummonkey/ratchet/pkg/shape"
)

// ErrInfallibleShape is returned when a catalog is requested for a shape
// whose construction cannot fail
var ErrInfallibleShape = errors.New("shape is infallible")

// Cause represents why a violation variant fires
type Cause int

const (
	// CauseMissing fires when a required member without a default is unset
	CauseMissing Cause = iota
	// CauseNested forwards a violation from a member's own fallible target
	CauseNested
	// CauseConstraint fires when a value breaks a constraint the shape
	// itself carries
	CauseConstraint
)

// String returns the lowercase name of the cause
func (c Cause) String() string {
	switch c {
	case CauseMissing:
		return "missing"
	case CauseNested:
		return "nested"
	case CauseConstraint:
		return "constraint"
	default:
		return "unknown"
	}
}

// Variant represents one failure variant of a shape's violation type
type Variant struct {
	// Name is the variant identifier, e.g. "MissingAge" or "Age".
	Name string
	// Member is the member the variant is tagged by; empty for
	// constraint-cause variants, which describe the shape's own value.
	Member string
	Cause  Cause

	// Constraint is set for CauseConstraint variants.
	Constraint shape.ConstraintKind

	// NestedTarget is set for CauseNested variants: the member's target
	// shape, whose own violation type the variant wraps.
	NestedTarget shape.NodeID
	// Boxed marks nested variants whose wrapped violation sits behind
	// heap indirection because the member's target can reach itself.
	Boxed bool
}

// FieldPath renders the field path addressed by this variant. For nested
// variants the wrapped violation's own path is passed in and prefixed.
func (v *Variant) FieldPath(nested string) string {
	switch v.Cause {
	case CauseNested:
		if nested == "" {
			return v.Member
		}
		return v.Member + "/" + nested
	case CauseMissing:
		return v.Member
	default:
		// A constraint variant addresses the shape's own value.
		return ""
	}
}

// Catalog represents the ordered violation variant list of one fallible shape
type Catalog struct {
	Node     shape.NodeID
	Variants []Variant
}

// Variant returns the variant with the given name, or nil
func (c *Catalog) Variant(name string) *Variant {
	for i := range c.Variants {
		if c.Variants[i].Name == name {
			return &c.Variants[i]
		}
	}
	return nil
}

// Builder computes violation catalogs over an analyzed graph. Catalogs are
// memoized: repeated requests for the same shape return the identical value.
type Builder struct {
	analyzer *analysis.Analyzer
	catalogs map[shape.NodeID]*Catalog
}

// NewBuilder creates a catalog builder backed by the given analyzer
func NewBuilder(analyzer *analysis.Analyzer) *Builder {
	return &Builder{
		analyzer: analyzer,
		catalogs: make(map[shape.NodeID]*Catalog),
	}
}

// Catalog returns the violation catalog for a fallible shape. Requesting a
// catalog for an infallible shape returns ErrInfallibleShape.
func (b *Builder) Catalog(id shape.NodeID) (*Catalog, error) {
	if cached, ok := b.catalogs[id]; ok {
		return cached, nil
	}
	if !b.analyzer.IsFallible(id) {
		return nil, ErrInfallibleShape
	}
	catalog := b.build(id)
	b.catalogs[id] = catalog
	return catalog, nil
}

func (b *Builder) build(id shape.NodeID) *Catalog {
	g := b.analyzer.Graph()
	node := g.Node(id)
	catalog := &Catalog{Node: id}

	// The shape's own constraints come first: they describe the value as
	// a whole, before any member-addressed failure.
	for _, kind := range node.Constraints.Kinds() {
		catalog.Variants = append(catalog.Variants, Variant{
			Name:       constraintVariantName(kind),
			Cause:      CauseConstraint,
			Constraint: kind,
		})
	}

	// Member variants in declaration order. A member contributes at most
	// one variant per cause: a Missing variant when it is required without
	// a default, and a nested variant when its target is itself fallible.
	for i := range node.Members {
		m := &node.Members[i]
		if m.Required && m.Default == nil && node.Kind == shape.KindStructure {
			catalog.Variants = append(catalog.Variants, Variant{
				Name:   "Missing" + capitalize(m.Name),
				Member: m.Name,
				Cause:  CauseMissing,
			})
		}
		if b.analyzer.IsFallible(m.Target) {
			catalog.Variants = append(catalog.Variants, Variant{
				Name:         capitalize(m.Name),
				Member:       m.Name,
				Cause:        CauseNested,
				NestedTarget: m.Target,
				Boxed:        g.SelfReachable(m.Target),
			})
		}
	}

	return catalog
}

func constraintVariantName(kind shape.ConstraintKind) string {
	switch kind {
	case shape.ConstraintRange:
		return "Range"
	case shape.ConstraintLength:
		return "Length"
	case shape.ConstraintPattern:
		return "Pattern"
	case shape.ConstraintUniqueItems:
		return "UniqueItems"
	case shape.ConstraintEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

package builder

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/ratchet/pkg/analysis"
	"github.com/platinummonkey/ratchet/pkg/literals"
	"github.com/platinummonkey/ratchet/pkg/naming"
	"github.com/platinummonkey/ratchet/pkg/shape"
	"github.com/platinummonkey/ratchet/pkg/violations"
)

// ErrNotStructural is returned when a builder spec is requested for a shape
// that has no members to accumulate
var ErrNotStructural = errors.New("shape is not structural")

// Config defines synthesis settings
type Config struct {
	// PublicSetters exposes setters accepting the fully validated target
	// type; governed by the external visibility policy. Raw setters are
	// generated regardless.
	PublicSetters bool
}

// DefaultConfig returns default synthesis settings
func DefaultConfig() *Config {
	return &Config{PublicSetters: true}
}

// Synthesizer produces builder specs over an analyzed graph. Specs are
// memoized: repeated requests for the same shape return the identical value.
type Synthesizer struct {
	config   *Config
	analyzer *analysis.Analyzer
	catalogs *violations.Builder
	namer    naming.Namer
	literals literals.Renderer
	specs    map[shape.NodeID]*Spec
}

// NewSynthesizer creates a synthesizer wired to its collaborators
func NewSynthesizer(config *Config, analyzer *analysis.Analyzer, catalogs *violations.Builder, namer naming.Namer, renderer literals.Renderer) *Synthesizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Synthesizer{
		config:   config,
		analyzer: analyzer,
		catalogs: catalogs,
		namer:    namer,
		literals: renderer,
		specs:    make(map[shape.NodeID]*Spec),
	}
}

// Spec returns the builder spec for a structural shape
func (s *Synthesizer) Spec(id shape.NodeID) (*Spec, error) {
	if cached, ok := s.specs[id]; ok {
		return cached, nil
	}
	g := s.analyzer.Graph()
	node := g.Node(id)
	if !node.Structural() {
		return nil, fmt.Errorf("shape %q: %w", node.Name, ErrNotStructural)
	}
	spec, err := s.synthesize(id, node)
	if err != nil {
		return nil, err
	}
	s.specs[id] = spec
	return spec, nil
}

func (s *Synthesizer) synthesize(id shape.NodeID, node *shape.ShapeNode) (*Spec, error) {
	g := s.analyzer.Graph()
	typeName := s.namer.ShapeName(node.Name)
	spec := &Spec{
		Node:        id,
		TypeName:    typeName,
		BuilderName: typeName + "Builder",
		Fallible:    s.analyzer.IsFallible(id),
	}
	if spec.Fallible {
		spec.ViolationName = typeName + "ConstraintViolation"
	}

	// The duality below exists for boundary-reachable shapes only:
	// deserializers populate fields in wire arrival order, so a slot may
	// hold input whose target invariants have not been checked yet.
	// Shapes never touched by deserializers take validated values only.
	boundary := s.analyzer.BoundaryReachable(id)

	for i := range node.Members {
		m := &node.Members[i]
		target := g.Node(m.Target)

		storage := StorageDirect
		if boundary && s.analyzer.ReachesConstrained(m.Target) {
			storage = StorageMaybeConstrained
		}
		boxed := g.SelfReachable(m.Target)
		slotType := s.targetType(m.Target)

		spec.Slots = append(spec.Slots, Slot{
			Member:  m.Name,
			Field:   s.namer.MemberName(m.Name),
			Target:  m.Target,
			Type:    slotType,
			Storage: storage,
			Boxed:   boxed,
		})

		step := Step{Member: m.Name, Unbox: boxed}
		if m.Default != nil {
			lit, err := s.literals.Render(target.Scalar, m.Default)
			if err != nil {
				return nil, fmt.Errorf("shape %q member %q: %w", node.Name, m.Name, err)
			}
			step.HasDefault = true
			step.DefaultLiteral = lit
		}
		if spec.Fallible && m.Required && m.Default == nil && node.Kind == shape.KindStructure {
			step.MissingVariant = s.missingVariant(id, m.Name)
		}
		if storage == StorageMaybeConstrained {
			step.ValidatesRaw = true
			step.NestedVariant = s.nestedVariant(id, m.Name)
			step.NestedBoxed = g.SelfReachable(m.Target)
		}
		spec.Steps = append(spec.Steps, step)

		if s.config.PublicSetters {
			spec.Setters = append(spec.Setters, Setter{
				Name:     s.namer.SetterName(m.Name),
				Member:   m.Name,
				Type:     slotType,
				Exported: true,
			})
		}
		spec.Setters = append(spec.Setters, Setter{
			Name:   s.namer.RawSetterName(m.Name),
			Member: m.Name,
			Type:   s.rawType(m.Target, storage),
			Raw:    true,
		})
	}

	return spec, nil
}

// missingVariant resolves the catalog variant name for a missing required
// member. The catalog is authoritative; falling out of sync with it would
// emit violations the violation type does not declare.
func (s *Synthesizer) missingVariant(id shape.NodeID, member string) string {
	catalog, err := s.catalogs.Catalog(id)
	if err != nil {
		return ""
	}
	for i := range catalog.Variants {
		v := &catalog.Variants[i]
		if v.Member == member && v.Cause == violations.CauseMissing {
			return v.Name
		}
	}
	return ""
}

func (s *Synthesizer) nestedVariant(id shape.NodeID, member string) string {
	catalog, err := s.catalogs.Catalog(id)
	if err != nil {
		return ""
	}
	for i := range catalog.Variants {
		v := &catalog.Variants[i]
		if v.Member == member && v.Cause == violations.CauseNested {
			return v.Name
		}
	}
	return ""
}

// targetType renders the validated Go representation of a target shape
func (s *Synthesizer) targetType(id shape.NodeID) string {
	g := s.analyzer.Graph()
	node := g.Node(id)
	if node.Kind == shape.KindScalar && node.Constraints.Empty() {
		return goScalarType(node.Scalar)
	}
	return s.namer.ShapeName(node.Name)
}

// rawType renders the unvalidated Go representation a deserializer stores
func (s *Synthesizer) rawType(id shape.NodeID, storage SlotStorage) string {
	if storage == StorageDirect {
		return s.targetType(id)
	}
	g := s.analyzer.Graph()
	node := g.Node(id)
	if node.Kind == shape.KindScalar {
		return goScalarType(node.Scalar)
	}
	return s.namer.ShapeName(node.Name) + "Builder"
}

func goScalarType(scalar shape.ScalarType) string {
	switch scalar {
	case shape.ScalarBoolean:
		return "bool"
	case shape.ScalarInteger:
		return "int32"
	case shape.ScalarLong:
		return "int64"
	case shape.ScalarFloat:
		return "float32"
	case shape.ScalarDouble:
		return "float64"
	case shape.ScalarString:
		return "string"
	case shape.ScalarBlob:
		return "[]byte"
	case shape.ScalarTimestamp:
		return "time.Time"
	default:
		return "interface{}"
	}
}

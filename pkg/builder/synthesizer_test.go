package builder

import (
	"errors"
	"testing"

	"github.com/platinummonkey/ratchet/pkg/analysis"
	"github.com/platinummonkey/ratchet/pkg/literals"
	"github.com/platinummonkey/ratchet/pkg/naming"
	"github.com/platinummonkey/ratchet/pkg/normalize"
	"github.com/platinummonkey/ratchet/pkg/shape"
	"github.com/platinummonkey/ratchet/pkg/violations"
)

func f64(v float64) *float64 { return &v }

// newSynthesizer normalizes the graph and wires a synthesizer over it
func newSynthesizer(t *testing.T, g *shape.Graph, config *Config) (*Synthesizer, *shape.Graph) {
	t.Helper()
	normalized, err := normalize.NewNormalizer(nil).Normalize(g)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	analyzer := analysis.NewAnalyzer(normalized)
	catalogs := violations.NewBuilder(analyzer)
	return NewSynthesizer(config, analyzer, catalogs, naming.NewGoNamer(), literals.NewGoRenderer()), normalized
}

// requestGraph wires the boundary structure S with a required constrained
// member, a defaulted member, and an optional plain member.
func requestGraph(t *testing.T) *shape.Graph {
	t.Helper()
	b := shape.NewGraphBuilder()
	intID, _ := b.Add(shape.ShapeNode{Name: "Int", Kind: shape.KindScalar, Scalar: shape.ScalarInteger})
	strID, _ := b.Add(shape.ShapeNode{Name: "Str", Kind: shape.KindScalar, Scalar: shape.ScalarString})
	sID, _ := b.Add(shape.ShapeNode{Name: "S", Kind: shape.KindStructure})
	b.Node(sID).Members = []shape.MemberEdge{
		{
			Name:        "a",
			Target:      intID,
			Required:    true,
			Constraints: shape.NewConstraintSet(shape.RangeConstraint{Min: f64(1), Max: f64(10)}),
		},
		{
			Name:    "mode",
			Target:  strID,
			Default: &shape.DefaultValue{Kind: shape.DefaultString, String: "fast"},
		},
		{Name: "note", Target: strID},
	}
	b.MarkRoot(sID)
	return b.Build()
}

func TestSynthesizer_Spec(t *testing.T) {
	s, g := newSynthesizer(t, requestGraph(t), nil)
	id, _ := g.Lookup("S")
	spec, err := s.Spec(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("identity", func(t *testing.T) {
		if spec.TypeName != "S" || spec.BuilderName != "SBuilder" {
			t.Errorf("unexpected names %q/%q", spec.TypeName, spec.BuilderName)
		}
		if !spec.Fallible {
			t.Fatal("expected fallible spec")
		}
		if spec.ViolationName != "SConstraintViolation" {
			t.Errorf("unexpected violation name %q", spec.ViolationName)
		}
	})

	t.Run("slot storage", func(t *testing.T) {
		a := spec.Slot("a")
		if a == nil {
			t.Fatal("expected slot for a")
		}
		if a.Storage != StorageMaybeConstrained {
			t.Error("constrained member of a boundary shape must use maybe-constrained storage")
		}
		if a.Type != "SA" {
			t.Errorf("expected validated type SA, got %q", a.Type)
		}
		note := spec.Slot("note")
		if note.Storage != StorageDirect {
			t.Error("unconstrained member must use direct storage")
		}
		if note.Type != "string" {
			t.Errorf("expected primitive type string, got %q", note.Type)
		}
	})

	t.Run("steps in declaration order", func(t *testing.T) {
		if len(spec.Steps) != 3 {
			t.Fatalf("expected 3 steps, got %d", len(spec.Steps))
		}
		if spec.Steps[0].Member != "a" || spec.Steps[1].Member != "mode" || spec.Steps[2].Member != "note" {
			t.Errorf("steps out of declaration order: %+v", spec.Steps)
		}
		a := spec.Step("a")
		if a.MissingVariant != "MissingA" {
			t.Errorf("expected MissingA, got %q", a.MissingVariant)
		}
		if !a.ValidatesRaw || a.NestedVariant != "A" {
			t.Errorf("expected raw validation through nested variant A, got %+v", a)
		}
		mode := spec.Step("mode")
		if !mode.HasDefault || mode.DefaultLiteral != `"fast"` {
			t.Errorf("expected rendered default literal, got %+v", mode)
		}
		if mode.MissingVariant != "" {
			t.Error("defaulted member must not produce a missing variant")
		}
	})

	t.Run("setters", func(t *testing.T) {
		var public, raw int
		for _, setter := range spec.Setters {
			if setter.Raw {
				raw++
				if setter.Exported {
					t.Errorf("raw setter %q must not be exported", setter.Name)
				}
			} else {
				public++
			}
		}
		if public != 3 || raw != 3 {
			t.Errorf("expected 3 public and 3 raw setters, got %d/%d", public, raw)
		}
	})
}

func TestSynthesizer_PrivateSetters(t *testing.T) {
	s, g := newSynthesizer(t, requestGraph(t), &Config{PublicSetters: false})
	id, _ := g.Lookup("S")
	spec, err := s.Spec(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, setter := range spec.Setters {
		if !setter.Raw {
			t.Errorf("expected only raw setters, found %q", setter.Name)
		}
	}
}

func TestSynthesizer_RawTypes(t *testing.T) {
	// T is a boundary structure holding a constrained scalar; the raw
	// representation of a structural maybe-constrained member is the
	// member target's own builder.
	b := shape.NewGraphBuilder()
	nameID, _ := b.Add(shape.ShapeNode{
		Name:        "Name",
		Kind:        shape.KindScalar,
		Scalar:      shape.ScalarString,
		Constraints: shape.NewConstraintSet(shape.PatternConstraint{Expr: "^[a-z]+$"}),
	})
	tID, _ := b.Add(shape.ShapeNode{Name: "T", Kind: shape.KindStructure})
	b.Node(tID).Members = []shape.MemberEdge{{Name: "name", Target: nameID}}
	sID, _ := b.Add(shape.ShapeNode{Name: "S", Kind: shape.KindStructure})
	b.Node(sID).Members = []shape.MemberEdge{{Name: "t", Target: tID}}
	b.MarkRoot(sID)

	s, g := newSynthesizer(t, b.Build(), nil)
	id, _ := g.Lookup("S")
	spec, err := s.Spec(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw *Setter
	for i := range spec.Setters {
		if spec.Setters[i].Raw && spec.Setters[i].Member == "t" {
			raw = &spec.Setters[i]
		}
	}
	if raw == nil {
		t.Fatal("expected raw setter for t")
	}
	if raw.Type != "TBuilder" {
		t.Errorf("expected raw type TBuilder, got %q", raw.Type)
	}

	slot := spec.Slot("t")
	if slot.Storage != StorageMaybeConstrained {
		t.Error("member reaching a constraint must use maybe-constrained storage")
	}
	if slot.Type != "T" {
		t.Errorf("expected validated type T, got %q", slot.Type)
	}
}

func TestSynthesizer_RecursiveShape(t *testing.T) {
	b := shape.NewGraphBuilder()
	nID, _ := b.Add(shape.ShapeNode{Name: "Node", Kind: shape.KindStructure})
	b.Node(nID).Members = []shape.MemberEdge{{Name: "next", Target: nID}}
	b.MarkRoot(nID)

	s, g := newSynthesizer(t, b.Build(), nil)
	id, _ := g.Lookup("Node")
	spec, err := s.Spec(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Fallible {
		t.Error("unconstrained recursive shape must be infallible")
	}
	slot := spec.Slot("next")
	if !slot.Boxed {
		t.Error("self-reachable member must be boxed")
	}
	if !spec.Step("next").Unbox {
		t.Error("boxed slot must unbox in its finisher step")
	}
}

func TestSynthesizer_NotStructural(t *testing.T) {
	b := shape.NewGraphBuilder()
	id, _ := b.Add(shape.ShapeNode{Name: "Int", Kind: shape.KindScalar, Scalar: shape.ScalarInteger})
	b.MarkRoot(id)

	s, _ := newSynthesizer(t, b.Build(), nil)
	if _, err := s.Spec(id); !errors.Is(err, ErrNotStructural) {
		t.Errorf("expected ErrNotStructural, got %v", err)
	}
}

func TestSynthesizer_Memoized(t *testing.T) {
	s, g := newSynthesizer(t, requestGraph(t), nil)
	id, _ := g.Lookup("S")
	first, err := s.Spec(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := s.Spec(id)
	if first != second {
		t.Error("expected memoized spec to be reference-identical")
	}
}

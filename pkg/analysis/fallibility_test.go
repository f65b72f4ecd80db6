package analysis

import (
	"testing"

	"github.com/platinummonkey/ratchet/pkg/shape"
)

func i64(v int64) *int64 { return &v }

func TestAnalyzer_ConstrainedShape(t *testing.T) {
	b := shape.NewGraphBuilder()
	id, _ := b.Add(shape.ShapeNode{
		Name:        "Name",
		Kind:        shape.KindScalar,
		Scalar:      shape.ScalarString,
		Constraints: shape.NewConstraintSet(shape.LengthConstraint{Max: i64(10)}),
	})
	b.MarkRoot(id)
	a := NewAnalyzer(b.Build())

	if !a.IsFallible(id) {
		t.Error("expected constrained shape to be fallible")
	}
	if !a.ReachesConstrained(id) {
		t.Error("expected constrained shape to reach itself")
	}
}

func TestAnalyzer_RequiredMember(t *testing.T) {
	t.Run("required without default", func(t *testing.T) {
		b := shape.NewGraphBuilder()
		intID, _ := b.Add(shape.ShapeNode{Name: "Int", Kind: shape.KindScalar, Scalar: shape.ScalarInteger})
		sID, _ := b.Add(shape.ShapeNode{Name: "S", Kind: shape.KindStructure})
		b.Node(sID).Members = []shape.MemberEdge{{Name: "a", Target: intID, Required: true}}
		b.MarkRoot(sID)
		a := NewAnalyzer(b.Build())
		if !a.IsFallible(sID) {
			t.Error("expected structure with required member to be fallible")
		}
	})

	t.Run("required with default is satisfiable", func(t *testing.T) {
		b := shape.NewGraphBuilder()
		intID, _ := b.Add(shape.ShapeNode{Name: "Int", Kind: shape.KindScalar, Scalar: shape.ScalarInteger})
		sID, _ := b.Add(shape.ShapeNode{Name: "S", Kind: shape.KindStructure})
		b.Node(sID).Members = []shape.MemberEdge{{
			Name:     "a",
			Target:   intID,
			Required: true,
			Default:  &shape.DefaultValue{Kind: shape.DefaultNumber, Number: 1},
		}}
		b.MarkRoot(sID)
		a := NewAnalyzer(b.Build())
		if a.IsFallible(sID) {
			t.Error("expected defaulted required member not to cause fallibility")
		}
	})

	t.Run("applies to structures, not structural collections", func(t *testing.T) {
		b := shape.NewGraphBuilder()
		intID, _ := b.Add(shape.ShapeNode{Name: "Int", Kind: shape.KindScalar, Scalar: shape.ScalarInteger})
		lID, _ := b.Add(shape.ShapeNode{Name: "L", Kind: shape.KindList})
		b.Node(lID).Members = []shape.MemberEdge{{Name: "member", Target: intID, Required: true}}
		b.MarkRoot(lID)
		a := NewAnalyzer(b.Build())
		if a.IsFallible(lID) {
			t.Error("list member presence is structural, not a fallibility source")
		}
	})
}

func TestAnalyzer_ConstraintReach(t *testing.T) {
	// S -> T -> Name(constrained). S and T are boundary-reachable, U holds
	// the same member shape but is detached from the boundary.
	build := func(t *testing.T) (*Analyzer, map[string]shape.NodeID) {
		t.Helper()
		b := shape.NewGraphBuilder()
		nameID, _ := b.Add(shape.ShapeNode{
			Name:        "Name",
			Kind:        shape.KindScalar,
			Scalar:      shape.ScalarString,
			Constraints: shape.NewConstraintSet(shape.LengthConstraint{Max: i64(10)}),
		})
		tID, _ := b.Add(shape.ShapeNode{Name: "T", Kind: shape.KindStructure})
		b.Node(tID).Members = []shape.MemberEdge{{Name: "name", Target: nameID}}
		sID, _ := b.Add(shape.ShapeNode{Name: "S", Kind: shape.KindStructure})
		b.Node(sID).Members = []shape.MemberEdge{{Name: "t", Target: tID}}
		uID, _ := b.Add(shape.ShapeNode{Name: "U", Kind: shape.KindStructure})
		b.Node(uID).Members = []shape.MemberEdge{{Name: "name", Target: nameID}}
		b.MarkRoot(sID)
		ids := map[string]shape.NodeID{"Name": nameID, "T": tID, "S": sID, "U": uID}
		return NewAnalyzer(b.Build()), ids
	}

	t.Run("propagates through members", func(t *testing.T) {
		a, ids := build(t)
		for _, name := range []string{"S", "T", "Name"} {
			if !a.ReachesConstrained(ids[name]) {
				t.Errorf("expected %s to reach a constrained shape", name)
			}
		}
	})

	t.Run("boundary shapes validate downstream constraints", func(t *testing.T) {
		a, ids := build(t)
		if !a.IsFallible(ids["S"]) || !a.IsFallible(ids["T"]) {
			t.Error("expected boundary-reachable shapes on the constraint path to be fallible")
		}
	})

	t.Run("non-boundary shapes stay infallible", func(t *testing.T) {
		a, ids := build(t)
		if a.IsFallible(ids["U"]) {
			t.Error("expected detached shape to stay infallible despite constrained member")
		}
	})
}

func TestAnalyzer_Cycles(t *testing.T) {
	t.Run("recursive unconstrained", func(t *testing.T) {
		b := shape.NewGraphBuilder()
		nID, _ := b.Add(shape.ShapeNode{Name: "Node", Kind: shape.KindStructure})
		b.Node(nID).Members = []shape.MemberEdge{{Name: "next", Target: nID}}
		b.MarkRoot(nID)
		a := NewAnalyzer(b.Build())
		if a.ReachesConstrained(nID) {
			t.Error("unconstrained cycle must not report constraint reach")
		}
		if a.IsFallible(nID) {
			t.Error("unconstrained recursive shape must be infallible")
		}
	})

	t.Run("recursive with constrained member", func(t *testing.T) {
		b := shape.NewGraphBuilder()
		nameID, _ := b.Add(shape.ShapeNode{
			Name:        "Name",
			Kind:        shape.KindScalar,
			Scalar:      shape.ScalarString,
			Constraints: shape.NewConstraintSet(shape.LengthConstraint{Min: i64(1)}),
		})
		nID, _ := b.Add(shape.ShapeNode{Name: "Node", Kind: shape.KindStructure})
		b.Node(nID).Members = []shape.MemberEdge{
			{Name: "name", Target: nameID},
			{Name: "next", Target: nID},
		}
		b.MarkRoot(nID)
		a := NewAnalyzer(b.Build())
		if !a.ReachesConstrained(nID) {
			t.Error("expected cycle member to reach its constrained member")
		}
		if !a.IsFallible(nID) {
			t.Error("expected boundary-reachable cycle with constraint to be fallible")
		}
	})
}

func TestAnalyzer_Memoized(t *testing.T) {
	b := shape.NewGraphBuilder()
	id, _ := b.Add(shape.ShapeNode{
		Name:        "Name",
		Kind:        shape.KindScalar,
		Scalar:      shape.ScalarString,
		Constraints: shape.NewConstraintSet(shape.LengthConstraint{Max: i64(5)}),
	})
	b.MarkRoot(id)
	a := NewAnalyzer(b.Build())

	first := a.IsFallible(id)
	second := a.IsFallible(id)
	if first != second {
		t.Error("expected repeated queries to agree")
	}
}

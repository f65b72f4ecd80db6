package generator

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/platinummonkey/ratchet/pkg/analysis"
	"github.com/platinummonkey/ratchet/pkg/builder"
	"github.com/platinummonkey/ratchet/pkg/literals"
	"github.com/platinummonkey/ratchet/pkg/naming"
	"github.com/platinummonkey/ratchet/pkg/normalize"
	"github.com/platinummonkey/ratchet/pkg/shape"
	"github.com/platinummonkey/ratchet/pkg/violations"
)

// Options configures a generation run
type Options struct {
	// Normalizer settings; nil uses defaults.
	Normalize *normalize.Config
	// Builder synthesis settings; nil uses defaults.
	Builder *builder.Config
	// Namer renders target-language identifiers; nil uses the Go namer.
	Namer naming.Namer
	// Literals renders default values; nil uses the Go renderer.
	Literals literals.Renderer
}

// Run represents one generation run. It carries every run-scoped cache; a
// run is discarded whole when generation finishes.
type Run struct {
	ID string

	graph       *shape.Graph // normalized
	analyzer    *analysis.Analyzer
	catalogs    *violations.Builder
	synthesizer *builder.Synthesizer
	namer       naming.Namer
}

// NewRun normalizes the input graph and prepares the pipeline. The input
// graph is never mutated.
func NewRun(g *shape.Graph, opts *Options) (*Run, error) {
	if opts == nil {
		opts = &Options{}
	}
	namer := opts.Namer
	if namer == nil {
		namer = naming.NewGoNamer()
	}
	renderer := opts.Literals
	if renderer == nil {
		renderer = literals.NewGoRenderer()
	}

	normalized, err := normalize.NewNormalizer(opts.Normalize).Normalize(g)
	if err != nil {
		return nil, fmt.Errorf("normalization failed: %w", err)
	}

	analyzer := analysis.NewAnalyzer(normalized)
	catalogs := violations.NewBuilder(analyzer)
	return &Run{
		ID:          uuid.New().String(),
		graph:       normalized,
		analyzer:    analyzer,
		catalogs:    catalogs,
		synthesizer: builder.NewSynthesizer(opts.Builder, analyzer, catalogs, namer, renderer),
		namer:       namer,
	}, nil
}

// Graph returns the normalized graph
func (r *Run) Graph() *shape.Graph {
	return r.graph
}

// Namer returns the identifier namer the run's specs were produced with.
// Emitters must use it too; a second naming scheme would drift.
func (r *Run) Namer() naming.Namer {
	return r.namer
}

// Analyzer returns the run's fallibility analyzer
func (r *Run) Analyzer() *analysis.Analyzer {
	return r.analyzer
}

// Catalog returns the memoized violation catalog for a fallible shape
func (r *Run) Catalog(id shape.NodeID) (*violations.Catalog, error) {
	return r.catalogs.Catalog(id)
}

// Spec returns the memoized builder spec for a structural shape
func (r *Run) Spec(id shape.NodeID) (*builder.Spec, error) {
	return r.synthesizer.Spec(id)
}

// StructuralShapes returns the boundary-reachable structural shapes in
// sorted name order; these are the shapes that receive builders.
func (r *Run) StructuralShapes() []shape.NodeID {
	reachable := r.graph.BoundaryReachable()
	var out []shape.NodeID
	for id := 0; id < r.graph.Len(); id++ {
		if reachable[id] && r.graph.Node(shape.NodeID(id)).Structural() {
			out = append(out, shape.NodeID(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.graph.Node(out[i]).Name < r.graph.Node(out[j]).Name
	})
	return out
}

// ConstrainedScalars returns the boundary-reachable scalar shapes carrying
// constraints, in sorted name order; these are emitted as validated newtype
// wrappers.
func (r *Run) ConstrainedScalars() []shape.NodeID {
	reachable := r.graph.BoundaryReachable()
	var out []shape.NodeID
	for id := 0; id < r.graph.Len(); id++ {
		node := r.graph.Node(shape.NodeID(id))
		if reachable[id] && node.Kind == shape.KindScalar && !node.Constraints.Empty() {
			out = append(out, shape.NodeID(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.graph.Node(out[i]).Name < r.graph.Node(out[j]).Name
	})
	return out
}

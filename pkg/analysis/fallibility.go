package analysis

import "github.com/platinummonkey/ratchet/pkg/shape"

// Analyzer computes per-shape fallibility over a normalized graph. Results
// are memoized for the lifetime of the analyzer; one analyzer serves one
// generation run.
type Analyzer struct {
	graph    *shape.Graph
	boundary []bool
	reaches  []bool // shape is, or can reach, a constrained shape
	fallible []bool
	computed []bool
}

// NewAnalyzer creates an analyzer for the given normalized graph
func NewAnalyzer(g *shape.Graph) *Analyzer {
	return &Analyzer{
		graph:    g,
		boundary: g.BoundaryReachable(),
		reaches:  reachesConstrained(g),
		fallible: make([]bool, g.Len()),
		computed: make([]bool, g.Len()),
	}
}

// Graph returns the normalized graph the analyzer operates on
func (a *Analyzer) Graph() *shape.Graph {
	return a.graph
}

// BoundaryReachable reports whether the shape is reachable from a boundary
// root and therefore carries externally supplied data
func (a *Analyzer) BoundaryReachable(id shape.NodeID) bool {
	return a.boundary[id]
}

// ReachesConstrained reports whether the shape is constrained or can reach
// a constrained shape through member edges
func (a *Analyzer) ReachesConstrained(id shape.NodeID) bool {
	return a.reaches[id]
}

// IsFallible reports whether constructing the shape can fail
func (a *Analyzer) IsFallible(id shape.NodeID) bool {
	if a.computed[id] {
		return a.fallible[id]
	}
	a.fallible[id] = a.classify(id)
	a.computed[id] = true
	return a.fallible[id]
}

func (a *Analyzer) classify(id shape.NodeID) bool {
	node := a.graph.Node(id)

	// A constrained shape validates its value on construction.
	if !node.Constraints.Empty() {
		return true
	}

	// A mandatory member with no default can be omitted by any caller,
	// boundary-reachable or not.
	for i := range node.Members {
		m := &node.Members[i]
		if m.Required && m.Default == nil && node.Kind == shape.KindStructure {
			return true
		}
	}

	// Externally supplied data must be validated wherever a member path
	// leads to a constrained shape.
	if a.boundary[id] {
		for i := range node.Members {
			if a.reaches[node.Members[i].Target] {
				return true
			}
		}
	}

	return false
}

// reachesConstrained computes, for every node, whether it is constrained or
// can reach a constrained node. Propagated backwards over reverse edges so
// cyclic graphs converge without special casing.
func reachesConstrained(g *shape.Graph) []bool {
	n := g.Len()
	reverse := make([][]shape.NodeID, n)
	out := make([]bool, n)
	queue := make([]shape.NodeID, 0, n)

	for id := 0; id < n; id++ {
		node := g.Node(shape.NodeID(id))
		for i := range node.Members {
			t := node.Members[i].Target
			reverse[t] = append(reverse[t], shape.NodeID(id))
		}
		if !node.Constraints.Empty() {
			out[id] = true
			queue = append(queue, shape.NodeID(id))
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, from := range reverse[id] {
			if !out[from] {
				out[from] = true
				queue = append(queue, from)
			}
		}
	}
	return out
}

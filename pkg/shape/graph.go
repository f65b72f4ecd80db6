package shape

import (
	"fmt"
	"sort"
)

// Graph represents an immutable schema graph. Nodes live in an arena slice
// and are addressed by NodeID; boundary roots are the externally supplied
// request/response entry shapes.
type Graph struct {
	nodes []ShapeNode
	index map[string]NodeID
	roots []NodeID
}

// GraphBuilder assembles a Graph. The zero value is not usable; call
// NewGraphBuilder.
type GraphBuilder struct {
	nodes []ShapeNode
	index map[string]NodeID
	roots []NodeID
}

// NewGraphBuilder creates an empty graph builder
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{index: make(map[string]NodeID)}
}

// Add appends a node to the arena and returns its id. Adding a duplicate
// name returns an error: shape names are unique within a graph.
func (b *GraphBuilder) Add(node ShapeNode) (NodeID, error) {
	if _, exists := b.index[node.Name]; exists {
		return InvalidNode, fmt.Errorf("duplicate shape name %q", node.Name)
	}
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node)
	b.index[node.Name] = id
	return id, nil
}

// Node returns a mutable pointer into the arena for wiring edges during
// construction. The pointer must not be retained after Build.
func (b *GraphBuilder) Node(id NodeID) *ShapeNode {
	return &b.nodes[id]
}

// Lookup returns the id of the named node, if present
func (b *GraphBuilder) Lookup(name string) (NodeID, bool) {
	id, ok := b.index[name]
	return id, ok
}

// MarkRoot designates a node as a boundary entry point
func (b *GraphBuilder) MarkRoot(id NodeID) {
	for _, r := range b.roots {
		if r == id {
			return
		}
	}
	b.roots = append(b.roots, id)
}

// Build finalizes the graph. The builder must not be reused afterwards.
func (b *GraphBuilder) Build() *Graph {
	g := &Graph{nodes: b.nodes, index: b.index, roots: b.roots}
	b.nodes = nil
	b.index = nil
	b.roots = nil
	return g
}

// NewGraphBuilderFrom seeds a builder with a deep copy of an existing graph,
// for pipeline stages that rewrite a graph into a new value.
func NewGraphBuilderFrom(g *Graph) *GraphBuilder {
	c := g.Clone()
	return &GraphBuilder{nodes: c.nodes, index: c.index, roots: c.roots}
}

// Len returns the number of nodes in the arena
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given id. The returned pointer refers into
// the arena and must be treated as read-only.
func (g *Graph) Node(id NodeID) *ShapeNode {
	return &g.nodes[id]
}

// Lookup returns the id of the named node, if present
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.index[name]
	return id, ok
}

// Roots returns the boundary entry nodes in declaration order
func (g *Graph) Roots() []NodeID {
	out := make([]NodeID, len(g.roots))
	copy(out, g.roots)
	return out
}

// Names returns all shape names in sorted order
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for i := range g.nodes {
		names = append(names, g.nodes[i].Name)
	}
	sort.Strings(names)
	return names
}

// BoundaryReachable returns the set of nodes reachable from the boundary
// roots, indexed by NodeID.
func (g *Graph) BoundaryReachable() []bool {
	seen := make([]bool, len(g.nodes))
	stack := make([]NodeID, 0, len(g.roots))
	for _, r := range g.roots {
		if !seen[r] {
			seen[r] = true
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &g.nodes[id]
		for i := range node.Members {
			t := node.Members[i].Target
			if !seen[t] {
				seen[t] = true
				stack = append(stack, t)
			}
		}
	}
	return seen
}

// SelfReachable reports whether the node can reach itself through one or
// more member edges. Used to decide heap indirection for recursive types.
func (g *Graph) SelfReachable(id NodeID) bool {
	seen := make([]bool, len(g.nodes))
	stack := []NodeID{}
	start := &g.nodes[id]
	for i := range start.Members {
		t := start.Members[i].Target
		if t == id {
			return true
		}
		if !seen[t] {
			seen[t] = true
			stack = append(stack, t)
		}
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &g.nodes[cur]
		for i := range node.Members {
			t := node.Members[i].Target
			if t == id {
				return true
			}
			if !seen[t] {
				seen[t] = true
				stack = append(stack, t)
			}
		}
	}
	return false
}

// Clone returns a deep copy of the graph with an independent arena
func (g *Graph) Clone() *Graph {
	nodes := make([]ShapeNode, len(g.nodes))
	for i := range g.nodes {
		nodes[i] = cloneNode(&g.nodes[i])
	}
	index := make(map[string]NodeID, len(g.index))
	for name, id := range g.index {
		index[name] = id
	}
	roots := make([]NodeID, len(g.roots))
	copy(roots, g.roots)
	return &Graph{nodes: nodes, index: index, roots: roots}
}

func cloneNode(n *ShapeNode) ShapeNode {
	out := *n
	if n.Synthetic != nil {
		p := *n.Synthetic
		out.Synthetic = &p
	}
	out.Members = make([]MemberEdge, len(n.Members))
	for i := range n.Members {
		out.Members[i] = n.Members[i]
		if d := n.Members[i].Default; d != nil {
			dc := *d
			out.Members[i].Default = &dc
		}
	}
	return out
}

// WithRoots returns a copy of the graph whose boundary roots are exactly
// the named shapes, for callers that override the document's roots.
func WithRoots(g *Graph, names []string) (*Graph, error) {
	c := g.Clone()
	c.roots = c.roots[:0]
	for _, name := range names {
		id, ok := c.index[name]
		if !ok {
			return nil, fmt.Errorf("unknown root shape %q", name)
		}
		c.roots = append(c.roots, id)
	}
	return c, nil
}

// Equal reports whether two graphs are structurally identical: same nodes in
// the same arena order, same edges, same traits, same roots.
func Equal(a, b *Graph) bool {
	if len(a.nodes) != len(b.nodes) || len(a.roots) != len(b.roots) {
		return false
	}
	for i := range a.roots {
		if a.roots[i] != b.roots[i] {
			return false
		}
	}
	for i := range a.nodes {
		if !nodeEqual(&a.nodes[i], &b.nodes[i]) {
			return false
		}
	}
	return true
}

func nodeEqual(a, b *ShapeNode) bool {
	if a.Name != b.Name || a.Kind != b.Kind || a.Scalar != b.Scalar {
		return false
	}
	if a.Doc != b.Doc || a.Deprecated != b.Deprecated {
		return false
	}
	if (a.Synthetic == nil) != (b.Synthetic == nil) {
		return false
	}
	if a.Synthetic != nil && *a.Synthetic != *b.Synthetic {
		return false
	}
	if !a.Constraints.Equal(b.Constraints) {
		return false
	}
	if len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		am, bm := &a.Members[i], &b.Members[i]
		if am.Name != bm.Name || am.Target != bm.Target || am.Required != bm.Required {
			return false
		}
		if !am.Default.Equal(bm.Default) {
			return false
		}
		if !am.Constraints.Equal(bm.Constraints) {
			return false
		}
	}
	return true
}

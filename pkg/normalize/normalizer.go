package normalize

import (
	"fmt"
	"sort"
	"unicode"

	"github.com/platinummonkey/ratchet/pkg/shape"
)

// Config defines normalization settings
type Config struct {
	// MaxNameAttempts bounds collision probing for synthetic shape names.
	// Probing tries the base name, then base1, base2, ... up to this many
	// attempts before aborting the run.
	MaxNameAttempts int
}

// DefaultConfig returns default normalization settings
func DefaultConfig() *Config {
	return &Config{MaxNameAttempts: 100}
}

// Normalizer lifts edge-level constraint overrides onto synthetic shapes
type Normalizer struct {
	config *Config
}

// NewNormalizer creates a new normalizer
func NewNormalizer(config *Config) *Normalizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Normalizer{config: config}
}

// liftCandidate identifies one overriding edge found during the walk
type liftCandidate struct {
	container shape.NodeID
	member    int // index into the container's Members
	qualified string
}

// synthesis is one planned graph change: a new shape plus the edge retarget
// pointing at it
type synthesis struct {
	candidate liftCandidate
	target    shape.NodeID // the edge's original target, copied into node
	node      shape.ShapeNode
}

// Normalize returns a new graph in which every boundary-reachable edge
// carries only presence metadata. The input graph is never mutated.
func (n *Normalizer) Normalize(g *shape.Graph) (*shape.Graph, error) {
	candidates := collectCandidates(g)

	// Run-scoped name registry: every existing name plus every name
	// generated during this walk.
	taken := make(map[string]bool, g.Len())
	for _, name := range g.Names() {
		taken[name] = true
	}

	var plan []synthesis
	for _, cand := range candidates {
		container := g.Node(cand.container)
		edge := &container.Members[cand.member]
		target := g.Node(edge.Target)

		for _, kind := range edge.Constraints.Kinds() {
			if !shape.CanHost(target.Kind, target.Scalar, kind) {
				return nil, fmt.Errorf("member %s: lifting %s onto %s shape %q: %w",
					cand.qualified, kind, target.Kind, target.Name, ErrCannotHostConstraint)
			}
		}

		name, err := n.probeName(taken, container.Name+capitalize(edge.Name))
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", cand.qualified, err)
		}
		taken[name] = true

		synth := shape.ShapeNode{
			Name:        name,
			Kind:        target.Kind,
			Scalar:      target.Scalar,
			Constraints: shape.Merge(edge.Constraints, target.Constraints),
			Doc:         target.Doc,
			Deprecated:  target.Deprecated,
			Synthetic:   &shape.Provenance{Container: container.Name, Member: edge.Name},
		}
		// Structural targets keep their member edges so the synthetic
		// alias participates in the graph like the original did.
		synth.Members = append(synth.Members, target.Members...)

		plan = append(plan, synthesis{candidate: cand, target: edge.Target, node: synth})
	}

	// Apply the collected rewrites in one step. Callers never observe a
	// half-rewritten graph. Nodes are added before any edge is touched so
	// the mirror pass below can resolve every lifted edge.
	b := shape.NewGraphBuilderFrom(g)
	type edgeKey struct {
		container shape.NodeID
		member    int
	}
	ids := make([]shape.NodeID, len(plan))
	liftedTo := make(map[edgeKey]shape.NodeID, len(plan))
	for i, s := range plan {
		id, err := b.Add(s.node)
		if err != nil {
			return nil, fmt.Errorf("applying synthetic shape %q: %w", s.node.Name, err)
		}
		ids[i] = id
		liftedTo[edgeKey{s.candidate.container, s.candidate.member}] = id
	}
	for i, s := range plan {
		edge := &b.Node(s.candidate.container).Members[s.candidate.member]
		edge.Target = ids[i]
		edge.Constraints = shape.ConstraintSet{}

		// The synthetic node copied the original target's member edges,
		// overrides included. Mirror the retargets planned for the
		// original so the copy's edges end up clean too.
		synth := b.Node(ids[i])
		for m := range synth.Members {
			if to, ok := liftedTo[edgeKey{s.target, m}]; ok {
				synth.Members[m].Target = to
				synth.Members[m].Constraints = shape.ConstraintSet{}
			}
		}
	}
	return b.Build(), nil
}

// collectCandidates gathers every boundary-reachable edge carrying an
// overridable constraint, sorted by fully-qualified member identity so the
// rewrite order is deterministic.
func collectCandidates(g *shape.Graph) []liftCandidate {
	reachable := g.BoundaryReachable()
	var out []liftCandidate
	for id := 0; id < g.Len(); id++ {
		if !reachable[id] {
			continue
		}
		node := g.Node(shape.NodeID(id))
		for i := range node.Members {
			if node.Members[i].Constraints.Empty() {
				continue
			}
			out = append(out, liftCandidate{
				container: shape.NodeID(id),
				member:    i,
				qualified: node.Name + "$" + node.Members[i].Name,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].qualified < out[j].qualified })
	return out
}

// probeName finds a collision-free name by appending increasing numeric
// suffixes to the base, bounded by MaxNameAttempts.
func (n *Normalizer) probeName(taken map[string]bool, base string) (string, error) {
	if !taken[base] {
		return base, nil
	}
	for i := 1; i < n.config.MaxNameAttempts; i++ {
		name := fmt.Sprintf("%s%d", base, i)
		if !taken[name] {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free name for %q after %d attempts: %w",
		base, n.config.MaxNameAttempts, ErrNamespaceExhausted)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

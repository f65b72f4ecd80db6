package shape

// Kind represents the structural kind of a shape
type Kind int

const (
	KindUnknown Kind = iota
	KindStructure
	KindList
	KindMap
	KindUnion
	KindScalar
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindStructure:
		return "structure"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// ScalarType represents the base type of a scalar shape
type ScalarType int

const (
	ScalarNone ScalarType = iota
	ScalarBoolean
	ScalarInteger
	ScalarLong
	ScalarFloat
	ScalarDouble
	ScalarString
	ScalarBlob
	ScalarTimestamp
)

// String returns the lowercase name of the scalar type
func (s ScalarType) String() string {
	switch s {
	case ScalarBoolean:
		return "boolean"
	case ScalarInteger:
		return "integer"
	case ScalarLong:
		return "long"
	case ScalarFloat:
		return "float"
	case ScalarDouble:
		return "double"
	case ScalarString:
		return "string"
	case ScalarBlob:
		return "blob"
	case ScalarTimestamp:
		return "timestamp"
	default:
		return "none"
	}
}

// Numeric reports whether the scalar type is a numeric type
func (s ScalarType) Numeric() bool {
	switch s {
	case ScalarInteger, ScalarLong, ScalarFloat, ScalarDouble:
		return true
	default:
		return false
	}
}

// NodeID identifies a shape node within a Graph arena
type NodeID int

// InvalidNode is the zero-value-adjacent sentinel for "no node"
const InvalidNode NodeID = -1

// Provenance marks a synthetic shape with the container and member edge
// it was lifted from
type Provenance struct {
	Container string
	Member    string
}

// ShapeNode represents a named shape definition
type ShapeNode struct {
	Name   string
	Kind   Kind
	Scalar ScalarType // set only when Kind == KindScalar

	// Constraints holds the value-constraint traits owned by this shape,
	// at most one per constraint kind.
	Constraints ConstraintSet

	// Members are the outgoing edges. Structures and unions carry named
	// members in declaration order; lists carry a single "member" edge;
	// maps carry "key" and "value" edges.
	Members []MemberEdge

	// Non-constraint traits.
	Doc        string
	Deprecated bool
	Synthetic  *Provenance // nil for shapes that came from the parser
}

// Member returns the member edge with the given name, or nil
func (n *ShapeNode) Member(name string) *MemberEdge {
	for i := range n.Members {
		if n.Members[i].Name == name {
			return &n.Members[i]
		}
	}
	return nil
}

// Structural reports whether the shape has member edges at all
func (n *ShapeNode) Structural() bool {
	switch n.Kind {
	case KindStructure, KindList, KindMap, KindUnion:
		return true
	default:
		return false
	}
}

// MemberEdge represents a named edge from a containing shape to its target
type MemberEdge struct {
	Name     string
	Target   NodeID
	Required bool
	Default  *DefaultValue

	// Constraints holds edge-level constraint overrides. Normalization
	// lifts these onto synthetic shapes; a normalized edge always has an
	// empty set here.
	Constraints ConstraintSet
}

// DefaultKind represents the literal kind of a default value
type DefaultKind int

const (
	DefaultBool DefaultKind = iota
	DefaultNumber
	DefaultString
)

// DefaultValue represents a member's default literal
type DefaultValue struct {
	Kind   DefaultKind
	Bool   bool
	Number float64
	String string
}

// Equal reports whether two default values are identical literals
func (d *DefaultValue) Equal(o *DefaultValue) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case DefaultBool:
		return d.Bool == o.Bool
	case DefaultNumber:
		return d.Number == o.Number
	case DefaultString:
		return d.String == o.String
	}
	return false
}

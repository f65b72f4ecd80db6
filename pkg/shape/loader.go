package shape

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Document is the wire form of a schema graph as produced by the external
// parser/loader. Load resolves it into an arena-backed Graph.
type Document struct {
	Roots  []string        `json:"roots"`
	Shapes []DocumentShape `json:"shapes"`
}

// DocumentShape is the wire form of a single shape definition
type DocumentShape struct {
	Name       string           `json:"name"`
	Kind       string           `json:"kind"`
	Scalar     string           `json:"scalar,omitempty"`
	Doc        string           `json:"doc,omitempty"`
	Deprecated bool             `json:"deprecated,omitempty"`
	Members    []DocumentMember `json:"members,omitempty"`

	DocumentConstraints
}

// DocumentMember is the wire form of a member edge
type DocumentMember struct {
	Name     string          `json:"name"`
	Target   string          `json:"target"`
	Required bool            `json:"required,omitempty"`
	Default  json.RawMessage `json:"default,omitempty"`

	DocumentConstraints
}

// DocumentConstraints is the wire form of a constraint set
type DocumentConstraints struct {
	Range       *DocumentRange  `json:"range,omitempty"`
	Length      *DocumentLength `json:"length,omitempty"`
	Pattern     string          `json:"pattern,omitempty"`
	UniqueItems bool            `json:"uniqueItems,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
}

// DocumentRange is the wire form of a range constraint
type DocumentRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// DocumentLength is the wire form of a length constraint
type DocumentLength struct {
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`
}

// Load parses a schema graph document and resolves it into a Graph
func Load(data []byte) (*Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}
	return Resolve(&doc)
}

// Resolve converts a parsed document into an arena-backed Graph
func Resolve(doc *Document) (*Graph, error) {
	b := NewGraphBuilder()

	// First pass: allocate every node so edges can resolve forward
	// references and cycles.
	for i := range doc.Shapes {
		ds := &doc.Shapes[i]
		kind, scalar, err := parseKind(ds.Kind, ds.Scalar)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", ds.Name, err)
		}
		node := ShapeNode{
			Name:        ds.Name,
			Kind:        kind,
			Scalar:      scalar,
			Doc:         ds.Doc,
			Deprecated:  ds.Deprecated,
			Constraints: ds.DocumentConstraints.toSet(),
		}
		if _, err := b.Add(node); err != nil {
			return nil, err
		}
	}

	// Second pass: wire member edges.
	for i := range doc.Shapes {
		ds := &doc.Shapes[i]
		id, _ := b.Lookup(ds.Name)
		node := b.Node(id)
		if err := checkMemberArity(node.Kind, len(ds.Members)); err != nil {
			return nil, fmt.Errorf("shape %q: %w", ds.Name, err)
		}
		for j := range ds.Members {
			dm := &ds.Members[j]
			target, ok := b.Lookup(dm.Target)
			if !ok {
				return nil, fmt.Errorf("shape %q member %q: unknown target %q", ds.Name, dm.Name, dm.Target)
			}
			def, err := parseDefault(dm.Default)
			if err != nil {
				return nil, fmt.Errorf("shape %q member %q: %w", ds.Name, dm.Name, err)
			}
			node.Members = append(node.Members, MemberEdge{
				Name:        dm.Name,
				Target:      target,
				Required:    dm.Required,
				Default:     def,
				Constraints: dm.DocumentConstraints.toSet(),
			})
		}
	}

	for _, root := range doc.Roots {
		id, ok := b.Lookup(root)
		if !ok {
			return nil, fmt.Errorf("unknown root shape %q", root)
		}
		b.MarkRoot(id)
	}

	return b.Build(), nil
}

func (dc *DocumentConstraints) toSet() ConstraintSet {
	var constraints []Constraint
	if dc.Range != nil {
		constraints = append(constraints, RangeConstraint{Min: dc.Range.Min, Max: dc.Range.Max})
	}
	if dc.Length != nil {
		constraints = append(constraints, LengthConstraint{Min: dc.Length.Min, Max: dc.Length.Max})
	}
	if dc.Pattern != "" {
		constraints = append(constraints, PatternConstraint{Expr: dc.Pattern})
	}
	if dc.UniqueItems {
		constraints = append(constraints, UniqueItemsConstraint{})
	}
	if len(dc.Enum) > 0 {
		constraints = append(constraints, EnumConstraint{Values: dc.Enum})
	}
	return NewConstraintSet(constraints...)
}

func parseKind(kind, scalar string) (Kind, ScalarType, error) {
	switch kind {
	case "structure":
		return KindStructure, ScalarNone, nil
	case "list":
		return KindList, ScalarNone, nil
	case "map":
		return KindMap, ScalarNone, nil
	case "union":
		return KindUnion, ScalarNone, nil
	case "scalar":
		st, err := parseScalar(scalar)
		if err != nil {
			return KindUnknown, ScalarNone, err
		}
		return KindScalar, st, nil
	default:
		return KindUnknown, ScalarNone, fmt.Errorf("unknown shape kind %q", kind)
	}
}

func parseScalar(scalar string) (ScalarType, error) {
	switch scalar {
	case "boolean":
		return ScalarBoolean, nil
	case "integer":
		return ScalarInteger, nil
	case "long":
		return ScalarLong, nil
	case "float":
		return ScalarFloat, nil
	case "double":
		return ScalarDouble, nil
	case "string":
		return ScalarString, nil
	case "blob":
		return ScalarBlob, nil
	case "timestamp":
		return ScalarTimestamp, nil
	default:
		return ScalarNone, fmt.Errorf("unknown scalar type %q", scalar)
	}
}

func checkMemberArity(kind Kind, members int) error {
	switch kind {
	case KindList:
		if members != 1 {
			return fmt.Errorf("list shapes require exactly one member edge, got %d", members)
		}
	case KindMap:
		if members != 2 {
			return fmt.Errorf("map shapes require exactly key and value edges, got %d", members)
		}
	case KindScalar:
		if members != 0 {
			return fmt.Errorf("scalar shapes cannot have member edges, got %d", members)
		}
	}
	return nil
}

func parseDefault(raw json.RawMessage) (*DefaultValue, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid default literal: %w", err)
	}
	switch t := v.(type) {
	case bool:
		return &DefaultValue{Kind: DefaultBool, Bool: t}, nil
	case float64:
		return &DefaultValue{Kind: DefaultNumber, Number: t}, nil
	case string:
		return &DefaultValue{Kind: DefaultString, String: t}, nil
	default:
		return nil, fmt.Errorf("unsupported default literal %s", string(raw))
	}
}

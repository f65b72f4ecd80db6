package protoimport

import (
	"context"
	"testing"

	"github.com/platinummonkey/ratchet/pkg/shape"
)

const sampleProto = `syntax = "proto3";

package users;

enum Role {
  ROLE_UNSPECIFIED = 0;
  ROLE_ADMIN = 1;
  ROLE_MEMBER = 2;
}

message Address {
  string city = 1;
}

message User {
  string name = 1;
  int32 age = 2;
  Role role = 3;
  Address address = 4;
  repeated string tags = 5;
  map<string, int64> scores = 6;
}

service UserService {
  rpc GetUser(User) returns (Address);
}
`

func importSample(t *testing.T) *shape.Graph {
	t.Helper()
	graph, err := NewImporter().ImportSource(context.Background(), "users.proto", sampleProto)
	if err != nil {
		t.Fatalf("ImportSource() failed: %v", err)
	}
	return graph
}

func mustLookup(t *testing.T, g *shape.Graph, name string) *shape.ShapeNode {
	t.Helper()
	id, ok := g.Lookup(name)
	if !ok {
		t.Fatalf("shape %s not found in %v", name, g.Names())
	}
	return g.Node(id)
}

func TestImportSource_Messages(t *testing.T) {
	graph := importSample(t)

	user := mustLookup(t, graph, "User")
	if user.Kind != shape.KindStructure {
		t.Errorf("expected User to be a structure, got %v", user.Kind)
	}
	if len(user.Members) != 6 {
		t.Fatalf("expected 6 members, got %d", len(user.Members))
	}
	if user.Members[0].Name != "name" || user.Members[1].Name != "age" {
		t.Errorf("members out of declaration order: %v", user.Members)
	}
	// proto3 fields are not required
	for _, m := range user.Members {
		if m.Required {
			t.Errorf("expected optional member %s", m.Name)
		}
	}

	address := mustLookup(t, graph, "Address")
	if address.Kind != shape.KindStructure || len(address.Members) != 1 {
		t.Errorf("unexpected Address shape %+v", address)
	}
}

func TestImportSource_Scalars(t *testing.T) {
	graph := importSample(t)

	tests := []struct {
		name   string
		scalar shape.ScalarType
	}{
		{"String", shape.ScalarString},
		{"Integer", shape.ScalarInteger},
		{"Long", shape.ScalarLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := mustLookup(t, graph, tt.name)
			if node.Kind != shape.KindScalar || node.Scalar != tt.scalar {
				t.Errorf("unexpected scalar shape %+v", node)
			}
			if node.Constraints.Len() != 0 {
				t.Errorf("expected shared scalar to be unconstrained")
			}
		})
	}
}

func TestImportSource_Enum(t *testing.T) {
	graph := importSample(t)

	role := mustLookup(t, graph, "Role")
	if role.Kind != shape.KindScalar || role.Scalar != shape.ScalarString {
		t.Fatalf("expected enum-constrained string scalar, got %+v", role)
	}
	c, ok := role.Constraints.Get(shape.ConstraintEnum)
	if !ok {
		t.Fatal("expected enum constraint")
	}
	values := c.(shape.EnumConstraint).Values
	if len(values) != 3 || values[1] != "ROLE_ADMIN" {
		t.Errorf("unexpected enum values %v", values)
	}
}

func TestImportSource_Collections(t *testing.T) {
	graph := importSample(t)

	list := mustLookup(t, graph, "UserTagsList")
	if list.Kind != shape.KindList {
		t.Fatalf("expected list shape, got %v", list.Kind)
	}
	if elem := graph.Node(list.Members[0].Target); elem.Name != "String" {
		t.Errorf("expected string element, got %s", elem.Name)
	}

	m := mustLookup(t, graph, "UserScoresMap")
	if m.Kind != shape.KindMap {
		t.Fatalf("expected map shape, got %v", m.Kind)
	}
	if key := graph.Node(m.Members[0].Target); key.Name != "String" {
		t.Errorf("expected string key, got %s", key.Name)
	}
	if value := graph.Node(m.Members[1].Target); value.Name != "Long" {
		t.Errorf("expected long value, got %s", value.Name)
	}

	// The list and map shapes back the message fields.
	user := mustLookup(t, graph, "User")
	if tags := graph.Node(user.Members[4].Target); tags.Name != "UserTagsList" {
		t.Errorf("tags member targets %s", tags.Name)
	}
	if scores := graph.Node(user.Members[5].Target); scores.Name != "UserScoresMap" {
		t.Errorf("scores member targets %s", scores.Name)
	}
}

func TestImportSource_RPCRoots(t *testing.T) {
	graph := importSample(t)

	roots := graph.Roots()
	names := make(map[string]bool)
	for _, id := range roots {
		names[graph.Node(id).Name] = true
	}
	if !names["User"] || !names["Address"] {
		t.Errorf("expected RPC input and output as roots, got %v", names)
	}
}

func TestImportSource_ParseError(t *testing.T) {
	_, err := NewImporter().ImportSource(context.Background(), "bad.proto", "message {")
	if err == nil {
		t.Error("expected parse error")
	}
}

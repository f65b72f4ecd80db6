package protoimport

import (
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/platinummonkey/ratchet/pkg/shape"
)

// Importer converts protobuf files into schema graphs
type Importer struct {
	log *logrus.Entry
}

// NewImporter creates a protobuf importer
func NewImporter() *Importer {
	return &Importer{log: logrus.WithField("component", "protoimport")}
}

// ImportSource compiles a single in-memory proto file and lowers it into a
// schema graph
func (im *Importer) ImportSource(ctx context.Context, filename, content string) (*shape.Graph, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{
				filename: content,
			}),
		}),
	}
	files, err := compiler.Compile(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("protocompile parse failed: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files compiled")
	}
	return im.lower(files[0])
}

// ImportFiles compiles proto files from disk and lowers them into one graph
func (im *Importer) ImportFiles(ctx context.Context, importPaths []string, filenames ...string) (*shape.Graph, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: importPaths,
		}),
	}
	files, err := compiler.Compile(ctx, filenames...)
	if err != nil {
		return nil, fmt.Errorf("protocompile parse failed: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files compiled")
	}
	lowering := newLowering()
	for _, fd := range files {
		if err := lowering.addFile(fd); err != nil {
			return nil, err
		}
	}
	return lowering.build()
}

func (im *Importer) lower(fd protoreflect.FileDescriptor) (*shape.Graph, error) {
	im.log.WithField("file", fd.Path()).Debug("lowering proto file")
	lowering := newLowering()
	if err := lowering.addFile(fd); err != nil {
		return nil, err
	}
	return lowering.build()
}

// lowering accumulates shapes while walking descriptors
type lowering struct {
	builder *shape.GraphBuilder
	scalars map[shape.ScalarType]shape.NodeID
	done    map[string]shape.NodeID // fully-qualified message name -> node
	roots   []shape.NodeID
}

func newLowering() *lowering {
	return &lowering{
		builder: shape.NewGraphBuilder(),
		scalars: make(map[shape.ScalarType]shape.NodeID),
		done:    make(map[string]shape.NodeID),
	}
}

func (l *lowering) build() (*shape.Graph, error) {
	for _, r := range l.roots {
		l.builder.MarkRoot(r)
	}
	return l.builder.Build(), nil
}

func (l *lowering) addFile(fd protoreflect.FileDescriptor) error {
	msgs := fd.Messages()
	for i := 0; i < msgs.Len(); i++ {
		if _, err := l.message(msgs.Get(i)); err != nil {
			return err
		}
	}
	svcs := fd.Services()
	for i := 0; i < svcs.Len(); i++ {
		methods := svcs.Get(i).Methods()
		for j := 0; j < methods.Len(); j++ {
			m := methods.Get(j)
			in, err := l.message(m.Input())
			if err != nil {
				return err
			}
			out, err := l.message(m.Output())
			if err != nil {
				return err
			}
			l.roots = append(l.roots, in, out)
		}
	}
	return nil
}

func (l *lowering) message(md protoreflect.MessageDescriptor) (shape.NodeID, error) {
	name := string(md.Name())
	if id, ok := l.done[string(md.FullName())]; ok {
		return id, nil
	}
	id, err := l.builder.Add(shape.ShapeNode{Name: name, Kind: shape.KindStructure})
	if err != nil {
		return shape.InvalidNode, fmt.Errorf("message %s: %w", md.FullName(), err)
	}
	l.done[string(md.FullName())] = id

	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		fld := fields.Get(i)
		target, err := l.fieldTarget(name, fld)
		if err != nil {
			return shape.InvalidNode, err
		}
		l.builder.Node(id).Members = append(l.builder.Node(id).Members, shape.MemberEdge{
			Name:     string(fld.Name()),
			Target:   target,
			Required: fld.Cardinality() == protoreflect.Required,
		})
	}
	return id, nil
}

func (l *lowering) fieldTarget(container string, fld protoreflect.FieldDescriptor) (shape.NodeID, error) {
	switch {
	case fld.IsMap():
		key, err := l.valueTarget(container, fld.MapKey())
		if err != nil {
			return shape.InvalidNode, err
		}
		value, err := l.valueTarget(container, fld.MapValue())
		if err != nil {
			return shape.InvalidNode, err
		}
		return l.builder.Add(shape.ShapeNode{
			Name: container + exportName(string(fld.Name())) + "Map",
			Kind: shape.KindMap,
			Members: []shape.MemberEdge{
				{Name: "key", Target: key, Required: true},
				{Name: "value", Target: value, Required: true},
			},
		})
	case fld.IsList():
		element, err := l.valueTarget(container, fld)
		if err != nil {
			return shape.InvalidNode, err
		}
		return l.builder.Add(shape.ShapeNode{
			Name: container + exportName(string(fld.Name())) + "List",
			Kind: shape.KindList,
			Members: []shape.MemberEdge{
				{Name: "member", Target: element, Required: true},
			},
		})
	default:
		return l.valueTarget(container, fld)
	}
}

func (l *lowering) valueTarget(container string, fld protoreflect.FieldDescriptor) (shape.NodeID, error) {
	switch fld.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return l.message(fld.Message())
	case protoreflect.EnumKind:
		return l.enum(fld.Enum())
	default:
		return l.scalar(protoScalar(fld.Kind()))
	}
}

// enum lowers a proto enum to an enum-constrained string scalar
func (l *lowering) enum(ed protoreflect.EnumDescriptor) (shape.NodeID, error) {
	full := string(ed.FullName())
	if id, ok := l.done[full]; ok {
		return id, nil
	}
	values := ed.Values()
	names := make([]string, values.Len())
	for i := 0; i < values.Len(); i++ {
		names[i] = string(values.Get(i).Name())
	}
	id, err := l.builder.Add(shape.ShapeNode{
		Name:        string(ed.Name()),
		Kind:        shape.KindScalar,
		Scalar:      shape.ScalarString,
		Constraints: shape.NewConstraintSet(shape.EnumConstraint{Values: names}),
	})
	if err != nil {
		return shape.InvalidNode, fmt.Errorf("enum %s: %w", full, err)
	}
	l.done[full] = id
	return id, nil
}

// scalar returns the shared unconstrained scalar node for a base type
func (l *lowering) scalar(st shape.ScalarType) (shape.NodeID, error) {
	if id, ok := l.scalars[st]; ok {
		return id, nil
	}
	id, err := l.builder.Add(shape.ShapeNode{
		Name:   exportName(st.String()),
		Kind:   shape.KindScalar,
		Scalar: st,
	})
	if err != nil {
		return shape.InvalidNode, err
	}
	l.scalars[st] = id
	return id, nil
}

func protoScalar(kind protoreflect.Kind) shape.ScalarType {
	switch kind {
	case protoreflect.BoolKind:
		return shape.ScalarBoolean
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Uint32Kind,
		protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind:
		return shape.ScalarInteger
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Uint64Kind,
		protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind:
		return shape.ScalarLong
	case protoreflect.FloatKind:
		return shape.ScalarFloat
	case protoreflect.DoubleKind:
		return shape.ScalarDouble
	case protoreflect.BytesKind:
		return shape.ScalarBlob
	default:
		return shape.ScalarString
	}
}

func exportName(name string) string {
	if name == "" {
		return name
	}
	out := []byte(name)
	if out[0] >= 'a' && out[0] <= 'z' {
		out[0] -= 'a' - 'A'
	}
	// snake_case field names become PascalCase shape name parts
	var b []byte
	upper := false
	for _, c := range out {
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
			upper = false
		}
		b = append(b, c)
	}
	return string(b)
}

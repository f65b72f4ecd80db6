package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/ratchet/pkg/builder"
	"github.com/platinummonkey/ratchet/pkg/generator"
	"github.com/platinummonkey/ratchet/pkg/shape"
)

// GeneratedFile represents one emitted source file
type GeneratedFile struct {
	Path    string
	Content []byte
}

// Config defines rendering settings
type Config struct {
	// Package is the Go package name of the emitted files.
	Package string
	// MaxWorkers bounds parallel shape rendering.
	MaxWorkers int
}

// DefaultConfig returns default rendering settings
func DefaultConfig() *Config {
	return &Config{Package: "model", MaxWorkers: 4}
}

// Renderer emits Go source for a generation run
type Renderer struct {
	config *Config
}

// NewRenderer creates a renderer
func NewRenderer(config *Config) *Renderer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Renderer{config: config}
}

// rendered is one shape's output, routed to a file
type rendered struct {
	location string
	order    string // shape name; locations assemble in sorted shape order
	content  []byte
}

// RenderAll renders every boundary-reachable shape of the run and returns
// the assembled files
func (r *Renderer) RenderAll(ctx context.Context, run *generator.Run) ([]GeneratedFile, error) {
	scalars := run.ConstrainedScalars()
	structural := run.StructuralShapes()
	if len(scalars)+len(structural) == 0 {
		return nil, nil
	}

	// The run's memoized caches are not synchronized; warm them before
	// fanning out so workers only read.
	for _, id := range scalars {
		if _, err := run.Catalog(id); err != nil {
			return nil, fmt.Errorf("scalar %q: %w", run.Graph().Node(id).Name, err)
		}
	}
	for _, id := range structural {
		if _, err := run.Spec(id); err != nil {
			return nil, fmt.Errorf("shape %q: %w", run.Graph().Node(id).Name, err)
		}
	}

	results := make([]*rendered, len(scalars)+len(structural))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(r.config.MaxWorkers)

	for i, id := range scalars {
		i, id := i, id
		g.Go(func() error {
			content, err := r.renderScalar(run, id)
			if err != nil {
				return err
			}
			results[i] = &rendered{
				location: r.config.Package + "/newtypes.go",
				order:    run.Graph().Node(id).Name,
				content:  content,
			}
			return nil
		})
	}
	for i, id := range structural {
		i, id := i, id
		g.Go(func() error {
			content, err := r.renderStructural(run, id)
			if err != nil {
				return err
			}
			results[len(scalars)+i] = &rendered{
				location: r.config.Package + "/builders.go",
				order:    run.Graph().Node(id).Name,
				content:  content,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stable assembly: register producers grouped per file, ordered by
	// shape name, then flush.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].location != results[j].location {
			return results[i].location < results[j].location
		}
		return results[i].order < results[j].order
	})

	// Per-file import blocks are computed from the types the shapes at that
	// location actually emitted.
	needsTime := make(map[string]bool)
	for _, res := range results {
		if bytes.Contains(res.content, []byte("time.Time")) {
			needsTime[res.location] = true
		}
	}

	writables := generator.NewWritables()
	seen := make(map[string]bool)
	for _, res := range results {
		if !seen[res.location] {
			seen[res.location] = true
			writables.Register(res.location, r.headerProducer())
			if needsTime[res.location] {
				writables.Register(res.location, importsProducer("time"))
			}
		}
		content := res.content
		writables.Register(res.location, func() ([]byte, error) { return content, nil })
	}
	supportPath := r.config.Package + "/support.go"
	writables.Register(supportPath, r.headerProducer())
	writables.Register(supportPath, supportProducer)

	var files []GeneratedFile
	err := writables.Flush(func(location string, content []byte) error {
		files = append(files, GeneratedFile{Path: location, Content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *Renderer) headerProducer() generator.Producer {
	pkg := r.config.Package
	return func() ([]byte, error) {
		var b strings.Builder
		b.WriteString("// Code generated by ratchet. DO NOT EDIT.\n\n")
		fmt.Fprintf(&b, "package %s\n\n", pkg)
		return []byte(b.String()), nil
	}
}

// importsProducer emits an import block for the given packages
func importsProducer(pkgs ...string) generator.Producer {
	return func() ([]byte, error) {
		var b strings.Builder
		b.WriteString("import (\n")
		for _, p := range pkgs {
			fmt.Fprintf(&b, "\t%q\n", p)
		}
		b.WriteString(")\n\n")
		return []byte(b.String()), nil
	}
}

// supportProducer emits the runtime helpers the per-shape output leans on
func supportProducer() ([]byte, error) {
	return []byte(`import (
	"fmt"
	"regexp"
)

// maybeConstrained carries either raw deserializer input or an already
// validated value. The finisher performs the single validation pass.
type maybeConstrained[T, R any] struct {
	value     T
	raw       R
	validated bool
}

func mustPattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(expr)
}

func enumAllows(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func checkUnique[E comparable](items []E) error {
	seen := make(map[E]int, len(items))
	for i, item := range items {
		if first, dup := seen[item]; dup {
			return fmt.Errorf("items %d and %d are duplicates", first, i)
		}
		seen[item] = i
	}
	return nil
}

func errRange(shape string, v any) error {
	return fmt.Errorf("%s: value %v out of range", shape, v)
}

func errLength(shape string, n int) error {
	return fmt.Errorf("%s: length %d out of bounds", shape, n)
}

func errPattern(shape string, v any) error {
	return fmt.Errorf("%s: value %q does not match pattern", shape, v)
}

func errEnum(shape string, v any) error {
	return fmt.Errorf("%s: value %q is not an allowed value", shape, v)
}
`), nil
}

// renderScalar emits a validated newtype wrapper for a constrained scalar
func (r *Renderer) renderScalar(run *generator.Run, id shape.NodeID) ([]byte, error) {
	node := run.Graph().Node(id)
	catalog, err := run.Catalog(id)
	if err != nil {
		return nil, fmt.Errorf("scalar %q: %w", node.Name, err)
	}

	var b strings.Builder
	name := run.Namer().ShapeName(node.Name)
	base := goScalarType(node.Scalar)

	if pc, ok := node.Constraints.Get(shape.ConstraintPattern); ok {
		fmt.Fprintf(&b, "var %sPattern = mustPattern(%q)\n\n", unexportName(name), pc.(shape.PatternConstraint).Expr)
	}

	if node.Doc != "" {
		writeDoc(&b, node.Doc)
	}
	fmt.Fprintf(&b, "type %s %s\n\n", name, base)

	fmt.Fprintf(&b, "// New%s validates v against the shape's constraints.\n", name)
	fmt.Fprintf(&b, "func New%s(v %s) (%s, error) {\n", name, base, name)
	fmt.Fprintf(&b, "\tvar zero %s\n", name)
	for _, c := range node.Constraints.All() {
		writeScalarCheck(&b, name, c)
	}
	fmt.Fprintf(&b, "\treturn %s(v), nil\n}\n\n", name)

	// The violation mapping table consumed by deserializer generators.
	fmt.Fprintf(&b, "// %sViolations declares the violation variants New%s can produce.\n", name, name)
	fmt.Fprintf(&b, "var %sViolations = []string{", name)
	for i := range catalog.Variants {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", catalog.Variants[i].Name)
	}
	b.WriteString("}\n\n")

	return []byte(b.String()), nil
}

// renderStructural emits the model type and, for structures and unions, the
// accumulator, setters, finisher and violation type
func (r *Renderer) renderStructural(run *generator.Run, id shape.NodeID) ([]byte, error) {
	node := run.Graph().Node(id)
	spec, err := run.Spec(id)
	if err != nil {
		return nil, fmt.Errorf("shape %q: %w", node.Name, err)
	}

	switch node.Kind {
	case shape.KindList, shape.KindMap:
		return r.renderCollection(node, spec)
	default:
		return r.renderBuilder(run, node, spec)
	}
}

// renderCollection emits a list or map as a named collection type with a
// validating constructor when the shape carries constraints
func (r *Renderer) renderCollection(node *shape.ShapeNode, spec *builder.Spec) ([]byte, error) {
	var b strings.Builder

	if node.Doc != "" {
		writeDoc(&b, node.Doc)
	}
	var underlying string
	if node.Kind == shape.KindList {
		underlying = "[]" + spec.Slots[0].Type
	} else {
		underlying = "map[" + spec.Slots[0].Type + "]" + spec.Slots[1].Type
	}
	fmt.Fprintf(&b, "type %s %s\n\n", spec.TypeName, underlying)

	if node.Constraints.Empty() {
		return []byte(b.String()), nil
	}

	fmt.Fprintf(&b, "// New%s validates v against the shape's constraints.\n", spec.TypeName)
	fmt.Fprintf(&b, "func New%s(v %s) (%s, error) {\n", spec.TypeName, underlying, spec.TypeName)
	fmt.Fprintf(&b, "\tvar zero %s\n", spec.TypeName)
	for _, c := range node.Constraints.All() {
		switch t := c.(type) {
		case shape.LengthConstraint:
			if t.Min != nil {
				fmt.Fprintf(&b, "\tif int64(len(v)) < %d {\n\t\treturn zero, errLength(%q, len(v))\n\t}\n", *t.Min, spec.TypeName)
			}
			if t.Max != nil {
				fmt.Fprintf(&b, "\tif int64(len(v)) > %d {\n\t\treturn zero, errLength(%q, len(v))\n\t}\n", *t.Max, spec.TypeName)
			}
		case shape.UniqueItemsConstraint:
			b.WriteString("\tif err := checkUnique(v); err != nil {\n\t\treturn zero, err\n\t}\n")
		}
	}
	fmt.Fprintf(&b, "\treturn %s(v), nil\n}\n\n", spec.TypeName)

	return []byte(b.String()), nil
}

// renderBuilder emits the full construction surface of a structure or union
func (r *Renderer) renderBuilder(run *generator.Run, node *shape.ShapeNode, spec *builder.Spec) ([]byte, error) {
	var b strings.Builder

	// Model type.
	if node.Doc != "" {
		writeDoc(&b, node.Doc)
	}
	fmt.Fprintf(&b, "type %s struct {\n", spec.TypeName)
	for i := range spec.Slots {
		slot := &spec.Slots[i]
		t := slot.Type
		if slot.Boxed {
			t = "*" + t
		}
		fmt.Fprintf(&b, "\t%s %s\n", slot.Field, t)
	}
	b.WriteString("}\n\n")

	// Violation type next, so the finisher below reads top-down.
	if spec.Fallible {
		fmt.Fprintf(&b, "// %s reports the first construction failure of a %s.\n", spec.ViolationName, spec.TypeName)
		fmt.Fprintf(&b, "type %s struct {\n", spec.ViolationName)
		b.WriteString("\tVariant string\n\tPath    string\n\tNested  error\n}\n\n")
		fmt.Fprintf(&b, "func (v *%s) Error() string {\n", spec.ViolationName)
		b.WriteString("\tif v.Nested != nil {\n\t\treturn v.Path + \": \" + v.Nested.Error()\n\t}\n")
		b.WriteString("\treturn v.Path + \": \" + v.Variant\n}\n\n")
	}

	// Accumulator.
	fmt.Fprintf(&b, "// %s accumulates members of a %s before validation.\n", spec.BuilderName, spec.TypeName)
	fmt.Fprintf(&b, "type %s struct {\n", spec.BuilderName)
	for i := range spec.Slots {
		slot := &spec.Slots[i]
		fmt.Fprintf(&b, "\t%s %s\n", unexportName(slot.Field), slotFieldType(spec, slot))
	}
	b.WriteString("}\n\n")

	// Setters.
	for i := range spec.Setters {
		setter := &spec.Setters[i]
		slot := spec.Slot(setter.Member)
		fmt.Fprintf(&b, "func (b *%s) %s(v %s) *%s {\n", spec.BuilderName, setter.Name, setter.Type, spec.BuilderName)
		switch {
		case slot.Storage == builder.StorageMaybeConstrained && setter.Raw:
			fmt.Fprintf(&b, "\tb.%s = &%s{raw: v}\n", unexportName(slot.Field), maybeType(spec, slot))
		case slot.Storage == builder.StorageMaybeConstrained:
			fmt.Fprintf(&b, "\tb.%s = &%s{value: v, validated: true}\n", unexportName(slot.Field), maybeType(spec, slot))
		default:
			fmt.Fprintf(&b, "\tb.%s = &v\n", unexportName(slot.Field))
		}
		b.WriteString("\treturn b\n}\n\n")
	}

	// Finisher.
	if spec.Fallible {
		fmt.Fprintf(&b, "// Build validates members in declaration order and stops at the first violation.\n")
		fmt.Fprintf(&b, "func (b *%s) Build() (*%s, *%s) {\n", spec.BuilderName, spec.TypeName, spec.ViolationName)
	} else {
		fmt.Fprintf(&b, "// Build assembles the value; construction cannot fail.\n")
		fmt.Fprintf(&b, "func (b *%s) Build() *%s {\n", spec.BuilderName, spec.TypeName)
	}
	fmt.Fprintf(&b, "\tvar out %s\n", spec.TypeName)
	for i := range spec.Steps {
		writeStep(&b, run, spec, spec.Slot(spec.Steps[i].Member), &spec.Steps[i])
	}
	if spec.Fallible {
		b.WriteString("\treturn &out, nil\n}\n\n")
	} else {
		b.WriteString("\treturn &out\n}\n\n")
	}

	return []byte(b.String()), nil
}

// writeStep emits the finisher's handling of one member
func writeStep(b *strings.Builder, run *generator.Run, spec *builder.Spec, slot *builder.Slot, step *builder.Step) {
	field := unexportName(slot.Field)
	fmt.Fprintf(b, "\tif b.%s == nil {\n", field)
	switch {
	case step.HasDefault:
		fmt.Fprintf(b, "\t\tout.%s = %s\n", slot.Field, step.DefaultLiteral)
	case step.MissingVariant != "":
		fmt.Fprintf(b, "\t\treturn nil, &%s{Variant: %q, Path: %q}\n", spec.ViolationName, step.MissingVariant, step.Member)
	}
	if !step.ValidatesRaw {
		b.WriteString("\t} else {\n")
		if slot.Boxed {
			fmt.Fprintf(b, "\t\tout.%s = b.%s\n", slot.Field, field)
		} else {
			fmt.Fprintf(b, "\t\tout.%s = *b.%s\n", slot.Field, field)
		}
		b.WriteString("\t}\n")
		return
	}

	fmt.Fprintf(b, "\t} else if b.%s.validated {\n", field)
	if slot.Boxed {
		fmt.Fprintf(b, "\t\tout.%s = &b.%s.value\n", slot.Field, field)
	} else {
		fmt.Fprintf(b, "\t\tout.%s = b.%s.value\n", slot.Field, field)
	}
	b.WriteString("\t} else {\n")
	target := run.Graph().Node(slot.Target)
	if target.Kind == shape.KindScalar {
		fmt.Fprintf(b, "\t\tv, err := New%s(b.%s.raw)\n", run.Namer().ShapeName(target.Name), field)
		b.WriteString("\t\tif err != nil {\n")
		fmt.Fprintf(b, "\t\t\treturn nil, &%s{Variant: %q, Path: %q, Nested: err}\n", spec.ViolationName, step.NestedVariant, step.Member)
		b.WriteString("\t\t}\n")
		fmt.Fprintf(b, "\t\tout.%s = v\n", slot.Field)
	} else {
		fmt.Fprintf(b, "\t\tv, violation := b.%s.raw.Build()\n", field)
		b.WriteString("\t\tif violation != nil {\n")
		fmt.Fprintf(b, "\t\t\treturn nil, &%s{Variant: %q, Path: %q, Nested: violation}\n", spec.ViolationName, step.NestedVariant, step.Member)
		b.WriteString("\t\t}\n")
		if slot.Boxed {
			fmt.Fprintf(b, "\t\tout.%s = v\n", slot.Field)
		} else {
			fmt.Fprintf(b, "\t\tout.%s = *v\n", slot.Field)
		}
	}
	b.WriteString("\t}\n")
}

func writeScalarCheck(b *strings.Builder, name string, c shape.Constraint) {
	switch t := c.(type) {
	case shape.RangeConstraint:
		if t.Min != nil {
			fmt.Fprintf(b, "\tif float64(v) < %v {\n\t\treturn zero, errRange(%q, v)\n\t}\n", *t.Min, name)
		}
		if t.Max != nil {
			fmt.Fprintf(b, "\tif float64(v) > %v {\n\t\treturn zero, errRange(%q, v)\n\t}\n", *t.Max, name)
		}
	case shape.LengthConstraint:
		if t.Min != nil {
			fmt.Fprintf(b, "\tif int64(len(v)) < %d {\n\t\treturn zero, errLength(%q, len(v))\n\t}\n", *t.Min, name)
		}
		if t.Max != nil {
			fmt.Fprintf(b, "\tif int64(len(v)) > %d {\n\t\treturn zero, errLength(%q, len(v))\n\t}\n", *t.Max, name)
		}
	case shape.PatternConstraint:
		fmt.Fprintf(b, "\tif !%sPattern.MatchString(string(v)) {\n\t\treturn zero, errPattern(%q, v)\n\t}\n", unexportName(name), name)
	case shape.EnumConstraint:
		fmt.Fprintf(b, "\tif !enumAllows(string(v), %#v) {\n\t\treturn zero, errEnum(%q, v)\n\t}\n", t.Values, name)
	}
}

// maybeType renders the maybeConstrained instantiation for a slot
func maybeType(spec *builder.Spec, slot *builder.Slot) string {
	return "maybeConstrained[" + slot.Type + ", " + rawTypeOf(spec, slot.Member) + "]"
}

// rawTypeOf returns the raw setter's parameter type for a member
func rawTypeOf(spec *builder.Spec, member string) string {
	for i := range spec.Setters {
		s := &spec.Setters[i]
		if s.Raw && s.Member == member {
			return s.Type
		}
	}
	return "interface{}"
}

func slotFieldType(spec *builder.Spec, slot *builder.Slot) string {
	if slot.Storage == builder.StorageMaybeConstrained {
		return "*" + maybeType(spec, slot)
	}
	// Unset slots are nil pointers; boxed slots get the same single level
	// of indirection, which also keeps recursive accumulators finite.
	return "*" + slot.Type
}

func writeDoc(b *strings.Builder, doc string) {
	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		fmt.Fprintf(b, "// %s\n", line)
	}
}

func unexportName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func goScalarType(scalar shape.ScalarType) string {
	switch scalar {
	case shape.ScalarBoolean:
		return "bool"
	case shape.ScalarInteger:
		return "int32"
	case shape.ScalarLong:
		return "int64"
	case shape.ScalarFloat:
		return "float32"
	case shape.ScalarDouble:
		return "float64"
	case shape.ScalarString:
		return "string"
	case shape.ScalarBlob:
		return "[]byte"
	case shape.ScalarTimestamp:
		return "time.Time"
	default:
		return "interface{}"
	}
}

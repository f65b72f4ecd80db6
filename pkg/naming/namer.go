package naming

import (
	"strings"
	"unicode"
)

// Namer maps schema identities to target-language identifiers
type Namer interface {
	// ShapeName returns the exported type identifier for a shape name.
	ShapeName(name string) string
	// MemberName returns the exported field identifier for a member name.
	MemberName(name string) string
	// RawSetterName returns the restricted-visibility setter identifier
	// used by deserializers to store unvalidated input.
	RawSetterName(member string) string
	// SetterName returns the public setter identifier for a member.
	SetterName(member string) string
}

// GoNamer renders Go identifiers: PascalCase for exported names, camelCase
// for restricted ones, with reserved words escaped by a trailing underscore.
type GoNamer struct{}

// NewGoNamer creates a Go identifier namer
func NewGoNamer() *GoNamer {
	return &GoNamer{}
}

// ShapeName returns the exported type identifier for a shape name
func (n *GoNamer) ShapeName(name string) string {
	return escapeReserved(pascalCase(name))
}

// MemberName returns the exported field identifier for a member name
func (n *GoNamer) MemberName(name string) string {
	return escapeReserved(pascalCase(name))
}

// SetterName returns the public setter identifier for a member
func (n *GoNamer) SetterName(member string) string {
	return "Set" + pascalCase(member)
}

// RawSetterName returns the unexported raw setter identifier for a member
func (n *GoNamer) RawSetterName(member string) string {
	return escapeReserved("setRaw" + pascalCase(member))
}

// goReserved holds Go keywords and predeclared identifiers that cannot be
// used verbatim
var goReserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
	"error": true, "string": true, "int": true, "bool": true, "byte": true,
	"rune": true, "nil": true, "true": true, "false": true,
}

func escapeReserved(name string) string {
	if goReserved[name] {
		return name + "_"
	}
	return name
}

// pascalCase converts snake_case, kebab-case or camelCase input into
// PascalCase
func pascalCase(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.':
			upper = true
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

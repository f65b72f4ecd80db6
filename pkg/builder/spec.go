package builder

import "github.com/platinummonkey/ratchet/pkg/shape"

// SlotStorage represents how a Set slot stores its value
type SlotStorage int

const (
	// StorageDirect stores the final target representation
	StorageDirect SlotStorage = iota
	// StorageMaybeConstrained stores a tagged raw-or-validated value;
	// the finisher performs the single validation pass
	StorageMaybeConstrained
)

// String returns the lowercase name of the storage mode
func (s SlotStorage) String() string {
	switch s {
	case StorageDirect:
		return "direct"
	case StorageMaybeConstrained:
		return "maybeConstrained"
	default:
		return "unknown"
	}
}

// Slot represents one accumulator slot
type Slot struct {
	Member  string
	Field   string // target-language field identifier
	Target  shape.NodeID
	Type    string // target-language type of the validated representation
	Storage SlotStorage
	// Boxed slots sit behind one level of heap indirection because the
	// member's target can reach itself; the accumulator stays finitely
	// sized.
	Boxed bool
}

// Step represents the finisher's handling of one member, in declaration
// order
type Step struct {
	Member string

	// Unset handling.
	HasDefault     bool
	DefaultLiteral string // rendered target-language literal
	MissingVariant string // violation variant produced when required without default; empty otherwise

	// Set handling.
	ValidatesRaw  bool   // raw input is finished through the target's own finisher
	NestedVariant string // variant wrapping the target's violation on failure
	NestedBoxed   bool   // wrapped violation goes behind heap indirection
	Unbox         bool   // slot is boxed; unbox before delegating, rebox the result
}

// Setter represents one generated accessor on the accumulator
type Setter struct {
	Name   string
	Member string
	Type   string // parameter type
	// Raw setters accept the raw-unvalidated representation and are
	// restricted to deserializer use; they exist regardless of the
	// visibility policy.
	Raw      bool
	Exported bool
}

// Spec represents the synthesized construction API for one structural shape
type Spec struct {
	Node        shape.NodeID
	TypeName    string
	BuilderName string

	// Fallible shapes finish into a success-or-violation outcome;
	// infallible shapes always finish into a value.
	Fallible      bool
	ViolationName string // empty for infallible shapes

	Slots   []Slot
	Steps   []Step
	Setters []Setter
}

// Slot returns the slot for the given member name, or nil
func (s *Spec) Slot(member string) *Slot {
	for i := range s.Slots {
		if s.Slots[i].Member == member {
			return &s.Slots[i]
		}
	}
	return nil
}

// Step returns the finisher step for the given member name, or nil
func (s *Spec) Step(member string) *Step {
	for i := range s.Steps {
		if s.Steps[i].Member == member {
			return &s.Steps[i]
		}
	}
	return nil
}

package generator

import (
	"bytes"
	"fmt"
)

// Producer renders one piece of generated content on demand
type Producer func() ([]byte, error)

// Writables is the ordered (location, producer) registry of the two-phase
// output pipeline: stages register producers while generating, Flush invokes
// them grouped by location in stable registration order.
type Writables struct {
	order      []string
	byLocation map[string][]Producer
}

// NewWritables creates an empty registry
func NewWritables() *Writables {
	return &Writables{byLocation: make(map[string][]Producer)}
}

// Register appends a producer for the given output location
func (w *Writables) Register(location string, producer Producer) {
	if _, seen := w.byLocation[location]; !seen {
		w.order = append(w.order, location)
	}
	w.byLocation[location] = append(w.byLocation[location], producer)
}

// Locations returns the registered locations in first-registration order
func (w *Writables) Locations() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Flush invokes every producer, concatenating producer output per location
// in registration order, and hands each completed location to emit. The
// first producer or emit error aborts the flush.
func (w *Writables) Flush(emit func(location string, content []byte) error) error {
	for _, location := range w.order {
		var buf bytes.Buffer
		for i, producer := range w.byLocation[location] {
			content, err := producer()
			if err != nil {
				return fmt.Errorf("producing %s (part %d): %w", location, i, err)
			}
			buf.Write(content)
		}
		if err := emit(location, buf.Bytes()); err != nil {
			return fmt.Errorf("emitting %s: %w", location, err)
		}
	}
	return nil
}

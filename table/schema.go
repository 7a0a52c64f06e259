package table

import "github.com/driftforge/warehouse/mask"

// Schema tracks which ElementTypes a Storage has ever seen. It does not
// own component bits (those are process-wide, see elementtype.go); it
// exists so callers can ask "has this component ever been registered
// here" and so archetype construction can build a mask from a set of
// ElementTypes without repeating that bit-shift logic at every call site.
type Schema interface {
	Register(elements ...ElementType)
	RowIndexFor(e ElementType) uint32
	Contains(e ElementType) bool
	Mask(elements ...ElementType) mask.Mask
}

type schema struct {
	seen mask.Mask
}

// NewSchema returns an empty Schema.
func NewSchema() Schema {
	return &schema{}
}

func (s *schema) Register(elements ...ElementType) {
	for _, e := range elements {
		s.seen.Mark(e.ID())
	}
}

func (s *schema) RowIndexFor(e ElementType) uint32 {
	return e.ID()
}

func (s *schema) Contains(e ElementType) bool {
	return s.seen.Contains(e.ID())
}

// Mask computes the archetype mask for a set of element types, without
// mutating the schema's registration record.
func (s *schema) Mask(elements ...ElementType) mask.Mask {
	var m mask.Mask
	for _, e := range elements {
		m.Mark(e.ID())
	}
	return m
}

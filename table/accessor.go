package table

// Accessor[T] is a pre-resolved, O(1) view onto one component column
// across any Table: it carries only the component's bit, so a single
// Accessor[T] value works against every archetype that happens to carry
// T, without a map lookup per call.
type Accessor[T any] struct {
	element ElementType
}

// FactoryNewAccessor builds an Accessor bound to the given ElementType.
func FactoryNewAccessor[T any](element ElementType) Accessor[T] {
	return Accessor[T]{element: element}
}

// Check reports whether t carries this accessor's component.
func (a Accessor[T]) Check(t Table) bool {
	return t.Contains(a.element)
}

// Get returns a pointer to the component at row index of t. The result
// is nil if t does not carry the component or index is out of range;
// callers on the checked path should call Check first if they need to
// distinguish "absent" from "zero value".
func (a Accessor[T]) Get(index int, t Table) *T {
	ok, ptr := t.columnPointer(a.element.ID(), index)
	if !ok {
		return nil
	}
	return (*T)(ptr)
}

// GetUnchecked skips the bounds/presence check Get performs. Calling it
// against a Table that lacks the component, or with an out-of-range
// index, is undefined behaviour - use only in a hot loop already guarded
// by a query that proved the component is present.
func (a Accessor[T]) GetUnchecked(index int, t Table) *T {
	ti := t.(*tableImpl)
	return (*T)(ti.columns[ti.columnByBit[a.element.ID()]].pointer(index))
}

// ElementType returns the component type this accessor was built for.
func (a Accessor[T]) ElementType() ElementType {
	return a.element
}

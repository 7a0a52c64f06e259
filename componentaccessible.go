package warehouse

import "github.com/driftforge/warehouse/table"

// AccessibleComponent extends a base Component with table-based accessibility.
// It provides methods to retrieve components using different access patterns.
type AccessibleComponent[T any] struct {
	Component
	table.Accessor[T] // concrete.
}

// GetFromCursor retrieves a component value for the entity at the cursor position.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return c.Get(cursor.row, cursor.currentTable)
}

// GetFromCursorSafe safely retrieves a component value, checking if the component exists.
// Returns a boolean indicating success and the component pointer if found.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	ok := c.Accessor.Check(cursor.currentTable)
	if ok {
		return true, c.GetFromCursor(cursor)
	}
	return false, nil
}

// CheckCursor determines if the component exists in the archetype at the cursor position.
func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	return c.Accessor.Check(cursor.currentTable)
}

// GetFromEntity retrieves a component value for the specified entity.
// Returns nil if the entity is not live or the archetype lacks the component.
func (c AccessibleComponent[T]) GetFromEntity(entity Entity) *T {
	if !entity.Valid() {
		return nil
	}
	if !c.Accessor.Check(entity.Table()) {
		return nil
	}
	return c.Get(entity.Index(), entity.Table())
}

// GetFromEntityUnchecked skips the validity/presence check GetFromEntity
// performs - fastest path for a hot loop already guarded by a query.
func (c AccessibleComponent[T]) GetFromEntityUnchecked(entity Entity) *T {
	return c.GetUnchecked(entity.Index(), entity.Table())
}

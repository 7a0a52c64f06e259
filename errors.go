package warehouse

import (
	"fmt"

	"github.com/driftforge/warehouse/mask"
	"github.com/driftforge/warehouse/table"
)

// LockedStorageError is returned by any structural-mutation call made
// while a Storage has at least one outstanding cursor/lock.
type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "storage is currently locked"
}

// EntityRelationError is returned by SetParent when the child already
// has a parent assigned.
type EntityRelationError struct {
	child, parent Entity
}

func (e EntityRelationError) Error() string {
	return fmt.Sprintf("child (%v) already has parent %v", e.child, e.parent)
}

// ComponentExistsError reports that a component was already present on
// an entity. Kept for callers who want a typed error instead of the
// no-op AddComponent falls back to.
type ComponentExistsError struct {
	Component Component
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component already exists on entity: %T", e.Component)
}

// ComponentNotFoundError reports that a component was absent from an
// entity's archetype.
type ComponentNotFoundError struct {
	Component Component
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity: %T", e.Component)
}

// ArchetypeCapacityError is returned when a mask-based spawn references
// a component mask that has no archetype yet - NewEntitiesWithMask
// cannot invent the archetype's component list from bits alone.
type ArchetypeCapacityError struct {
	Mask mask.Mask
}

func (e ArchetypeCapacityError) Error() string {
	return fmt.Sprintf("no archetype registered for mask %d; create one via NewEntities first", e.Mask)
}

// InvalidHandleError is returned when an entity id is out of range or
// was never issued by the directory backing this process.
type InvalidHandleError struct {
	ID table.EntryID
}

func (e InvalidHandleError) Error() string {
	return fmt.Sprintf("entity handle %d is stale or was never issued", e.ID)
}

// SchedulerError wraps the first error a Scheduler.Run encountered.
type SchedulerError struct {
	Err error
}

func (e SchedulerError) Error() string {
	return fmt.Sprintf("scheduler: %v", e.Err)
}

func (e SchedulerError) Unwrap() error {
	return e.Err
}

package warehouse

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/driftforge/warehouse/table"
)

// Verify entity implements Entity interface
var _ Entity = &entity{}

// Entity represents a game object with components and hierarchical relationships.
//
// An Entity value is a generational handle: ID/Generation are snapshotted
// at spawn time, while Index/Recycled/Table re-read the directory live so
// they always reflect the handle's current row - or, once the handle has
// been recycled, make that detectable via Valid.
type Entity interface {
	ID() table.EntryID
	Generation() uint32
	Index() int
	Recycled() int
	Table() table.Table

	SetParent(parent Entity, callback EntityDestroyCallback) error
	Parent() Entity

	SetDestroyCallback(EntityDestroyCallback) error

	AddComponent(Component) error
	AddComponentWithValue(Component, any) error
	RemoveComponent(Component) error

	EnqueueAddComponent(Component) error
	EnqueueAddComponentWithValue(Component, any) error
	EnqueueRemoveComponent(Component) error

	Components() []Component
	ComponentsAsString() string

	Valid() bool
	Storage() Storage
	SetStorage(Storage)
}

// EntityDestroyCallback is called when an entity is destroyed
type EntityDestroyCallback func(Entity)

// entity implements the Entity interface
type entity struct {
	id            table.EntryID
	generation    uint32
	sto           Storage
	relationships relationships
	components    []Component
}

// relationships tracks parent-child relationships and destroy callbacks
type relationships struct {
	parent           Entity
	parentGeneration uint32
	onDestroy        EntityDestroyCallback
}

// entry returns a live view onto this entity's directory slot, and false
// if the slot is out of range (should not happen for a handle this
// package itself issued).
func (e *entity) entry() (table.Entry, bool) {
	en, err := globalEntryIndex.Entry(int(e.id))
	if err != nil {
		return nil, false
	}
	return en, true
}

// ID returns the entity's directory slot, stable for its lifetime.
func (e *entity) ID() table.EntryID {
	return e.id
}

// Generation returns the generation this handle was issued under.
func (e *entity) Generation() uint32 {
	return e.generation
}

// Index returns the entity's current row in its archetype table.
func (e *entity) Index() int {
	en, ok := e.entry()
	if !ok {
		return -1
	}
	return en.Index()
}

// Recycled returns the directory slot's current generation (a live read,
// distinct from the generation snapshotted on this handle).
func (e *entity) Recycled() int {
	en, ok := e.entry()
	if !ok {
		return int(e.generation)
	}
	return en.Recycled()
}

// Table returns the table this entity currently belongs to.
func (e *entity) Table() table.Table {
	en, ok := e.entry()
	if !ok {
		return nil
	}
	return en.Table()
}

// Storage returns the storage this entity belongs to
func (e *entity) Storage() Storage {
	return e.sto
}

// SetParent establishes a parent-child relationship with another entity
func (e *entity) SetParent(parent Entity, callback EntityDestroyCallback) error {
	if e.relationships.parent != nil {
		return EntityRelationError{child: e, parent: e.relationships.parent}
	}
	e.relationships.parent = parent
	e.relationships.parentGeneration = uint32(parent.Recycled())
	return parent.SetDestroyCallback(callback)
}

// Parent returns the parent entity if it exists and hasn't been recycled
func (e *entity) Parent() Entity {
	if e.relationships.parent == nil {
		return nil
	}
	if uint32(e.relationships.parent.Recycled()) != e.relationships.parentGeneration {
		return nil
	}
	return e.relationships.parent
}

// SetDestroyCallback sets the callback to be invoked when this entity is destroyed
func (e *entity) SetDestroyCallback(callback EntityDestroyCallback) error {
	e.relationships.onDestroy = callback
	return nil
}

func (e *entity) hasComponent(c Component) bool {
	for _, comp := range e.components {
		if comp.ID() == c.ID() {
			return true
		}
	}
	return false
}

// AddComponent adds a component to the entity, moving it to a new archetype if needed
func (e *entity) AddComponent(c Component) error {
	if e.sto.Locked() {
		return LockedStorageError{}
	}
	if e.hasComponent(c) {
		return nil
	}

	originTable := e.Table()
	newComps := append(append([]Component(nil), e.components...), c)
	destArchetype, err := e.sto.archetypeViaAddEdge(originTable, c, newComps)
	if err != nil {
		return err
	}
	if err := originTable.TransferEntries(destArchetype.Table(), e.Index()); err != nil {
		return err
	}
	e.components = newComps
	return nil
}

// AddComponentWithValue adds a component with an initial value
func (e *entity) AddComponentWithValue(c Component, value any) error {
	if e.sto.Locked() {
		return LockedStorageError{}
	}
	if e.hasComponent(c) {
		return nil
	}

	originTable := e.Table()
	newComps := append(append([]Component(nil), e.components...), c)
	destArchetype, err := e.sto.archetypeViaAddEdge(originTable, c, newComps)
	if err != nil {
		return err
	}
	if err := originTable.TransferEntries(destArchetype.Table(), e.Index()); err != nil {
		return err
	}
	e.components = newComps

	valueType := reflect.TypeOf(value)
	for _, row := range destArchetype.Table().Rows() {
		if row.Type().Elem() == valueType {
			row.Value().Index(e.Index()).Set(reflect.ValueOf(value))
			return nil
		}
	}
	return fmt.Errorf("invalid value type %v for component %v", valueType, c.Type())
}

// RemoveComponent removes a component from the entity, moving it to a new archetype
func (e *entity) RemoveComponent(c Component) error {
	if e.sto.Locked() {
		return LockedStorageError{}
	}
	if !e.hasComponent(c) {
		return nil
	}

	originTable := e.Table()
	newComps := make([]Component, 0, len(e.components))
	for _, comp := range e.components {
		if comp.ID() != c.ID() {
			newComps = append(newComps, comp)
		}
	}
	destArchetype, err := e.sto.archetypeViaRemoveEdge(originTable, c, newComps)
	if err != nil {
		return fmt.Errorf("failed to get/create archetype: %w", err)
	}
	if err := originTable.TransferEntries(destArchetype.Table(), e.Index()); err != nil {
		return fmt.Errorf("failed to transfer entity: %w", err)
	}
	e.components = newComps
	return nil
}

// EnqueueAddComponent queues a component addition or executes immediately if storage isn't locked
func (e *entity) EnqueueAddComponent(c Component) error {
	if !e.sto.Locked() {
		return e.AddComponent(c)
	}
	e.sto.Enqueue(AddComponentOperation{
		entity:    e,
		recycled:  e.Recycled(),
		component: c,
		storage:   e.sto,
	})
	return nil
}

// EnqueueAddComponentWithValue queues a component addition with value or executes immediately
func (e *entity) EnqueueAddComponentWithValue(c Component, val any) error {
	if !e.sto.Locked() {
		return e.AddComponentWithValue(c, val)
	}
	e.sto.Enqueue(AddComponentOperation{
		entity:    e,
		recycled:  e.Recycled(),
		component: c,
		value:     val,
		storage:   e.sto,
	})
	return nil
}

// EnqueueRemoveComponent queues a component removal or executes immediately if storage isn't locked
func (e *entity) EnqueueRemoveComponent(c Component) error {
	if !e.sto.Locked() {
		return e.RemoveComponent(c)
	}
	e.sto.Enqueue(RemoveComponentOperation{
		entity:    e,
		recycled:  e.Recycled(),
		component: c,
		storage:   e.sto,
	})
	return nil
}

// Components returns all components attached to this entity
func (e *entity) Components() []Component {
	return e.components
}

// ComponentsAsString returns a sorted, formatted string of component names
func (e *entity) ComponentsAsString() string {
	if len(e.components) == 0 {
		return "[]"
	}

	var components []string
	for _, c := range e.components {
		typeName := reflect.TypeOf(c).String()
		typeName = strings.TrimPrefix(typeName, "*")
		parts := strings.Split(typeName, ".")
		name := parts[len(parts)-1]
		name = strings.TrimSuffix(name, "]")

		components = append(components, name)
	}

	sort.Strings(components)

	return "[" + strings.Join(components, ", ") + "]"
}

// Valid reports whether this handle's id/generation still refer to a
// live entity - false once the slot has been destroyed and possibly
// reused under a later generation.
func (e *entity) Valid() bool {
	return globalEntryIndex.Validate(e.id, e.generation)
}

// SetStorage sets the storage for this entity
func (e *entity) SetStorage(sto Storage) {
	e.sto = sto
}

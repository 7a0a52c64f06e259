package warehouse

import "github.com/driftforge/warehouse/table"

type archetypeID uint32

// Archetype is one entity shape: a set of components and the table
// storing every entity currently carrying exactly that set.
type Archetype interface {
	ID() uint32
	Table() table.Table
	Components() []Component
}

type archetypeImpl struct {
	id         archetypeID
	table      table.Table
	components []Component
}

var _ Archetype = archetypeImpl{}

func newArchetype(schema table.Schema, entryIndex table.EntryIndex, id archetypeID, components ...Component) (archetypeImpl, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, comp := range components {
		elementTypes[i] = comp
	}
	tbl, err := table.NewTableBuilder().
		WithID(uint32(id)).
		WithSchema(schema).
		WithElementTypes(elementTypes...).
		WithEntryIndex(entryIndex).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return archetypeImpl{}, err
	}
	return archetypeImpl{
		id:         id,
		table:      tbl,
		components: append([]Component(nil), components...),
	}, nil
}

func (a archetypeImpl) ID() uint32 { return uint32(a.id) }

func (a archetypeImpl) Table() table.Table { return a.table }

func (a archetypeImpl) Components() []Component { return a.components }

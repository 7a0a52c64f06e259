package table

import (
	"fmt"
	"sort"
)

// TableBuilder assembles a Table via a fluent chain, mirroring the
// construction steps spec.md §4.4 names for find_or_create: an empty
// archetype with one column per component, given a stable bit→column
// mapping.
type TableBuilder interface {
	WithID(id uint32) TableBuilder
	WithSchema(s Schema) TableBuilder
	WithEntryIndex(ei EntryIndex) TableBuilder
	WithElementTypes(elements ...ElementType) TableBuilder
	WithEvents(events TableEvents) TableBuilder
	Build() (Table, error)
}

type tableBuilder struct {
	id         uint32
	schema     Schema
	entryIndex EntryIndex
	elements   []ElementType
	events     TableEvents
}

// NewTableBuilder returns an empty TableBuilder.
func NewTableBuilder() TableBuilder {
	return &tableBuilder{}
}

func (b *tableBuilder) WithID(id uint32) TableBuilder {
	b.id = id
	return b
}

func (b *tableBuilder) WithSchema(s Schema) TableBuilder {
	b.schema = s
	return b
}

func (b *tableBuilder) WithEntryIndex(ei EntryIndex) TableBuilder {
	b.entryIndex = ei
	return b
}

func (b *tableBuilder) WithElementTypes(elements ...ElementType) TableBuilder {
	b.elements = elements
	return b
}

func (b *tableBuilder) WithEvents(events TableEvents) TableBuilder {
	b.events = events
	return b
}

func (b *tableBuilder) Build() (Table, error) {
	if b.entryIndex == nil {
		return nil, fmt.Errorf("table: builder requires WithEntryIndex")
	}
	ei, ok := b.entryIndex.(*entryIndex)
	if !ok {
		return nil, fmt.Errorf("table: builder requires the concrete EntryIndex returned by NewEntryIndex")
	}
	if b.schema != nil {
		b.schema.Register(b.elements...)
	}

	elements := append([]ElementType(nil), b.elements...)
	sort.Slice(elements, func(i, j int) bool { return elements[i].ID() < elements[j].ID() })

	t := &tableImpl{
		id:         b.id,
		entryIndex: ei,
		events:     b.events,
		elements:   elements,
	}
	for i := range t.columnByBit {
		t.columnByBit[i] = -1
	}
	t.columns = make([]column, len(elements))
	for i, et := range elements {
		if et.ID() >= MaxElementTypes {
			return nil, fmt.Errorf("table: component bit %d exceeds MaxElementTypes", et.ID())
		}
		t.columns[i] = newColumn(et, 1)
		t.columnByBit[et.ID()] = i
		t.archMask.Mark(et.ID())
	}
	return t, nil
}

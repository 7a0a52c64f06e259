package table

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/driftforge/warehouse/mask"
)

// Row is a typed view over one archetype column, used by generic,
// reflect-driven writes (see AddComponentWithValue at the warehouse
// layer) that need to find "the column whose element type matches this
// value" without the caller knowing the column's position ahead of time.
type Row struct {
	elementType ElementType
	value       reflect.Value
}

// Type returns the column's backing array type; Type().Elem() is the
// component's own type.
func (r Row) Type() reflect.Type { return r.value.Type() }

// ElementType returns the column's registered component type.
func (r Row) ElementType() ElementType { return r.elementType }

// Value returns the column's backing array as an addressable reflect.Value.
func (r Row) Value() reflect.Value { return r.value }

// Table is one archetype's column-major store: a dense vector of entry
// ids plus one column per component bit in its mask, addressed by edges
// to neighbouring archetypes for add/remove transitions.
type Table interface {
	ID() uint32
	Mask() mask.Mask
	Length() int
	ElementTypes() []ElementType
	Contains(e ElementType) bool

	NewEntries(n int) ([]Entry, error)
	DeleteEntries(ids ...int) ([]EntryID, error)
	TransferEntries(target Table, row int) error
	Entry(row int) (Entry, error)
	Rows() []Row

	AddEdge(bit uint32) (Table, bool)
	SetAddEdge(bit uint32, t Table)
	RemoveEdge(bit uint32) (Table, bool)
	SetRemoveEdge(bit uint32, t Table)

	// columnPointer and columnLen are sealed (unexported) so Accessor,
	// which lives in this package, can reach columns in O(1) without
	// exposing raw pointers outside the table package.
	columnPointer(bit uint32, index int) (ptrOK bool, ptr unsafe.Pointer)
	columnLen() int
}

type tableImpl struct {
	id         uint32
	entryIndex *entryIndex
	events     TableEvents

	archMask    mask.Mask
	columns     []column
	columnByBit [MaxElementTypes]int
	elements    []ElementType
	entries     []EntryID

	addEdges    [MaxElementTypes]Table
	removeEdges [MaxElementTypes]Table
}

func (t *tableImpl) ID() uint32             { return t.id }
func (t *tableImpl) Mask() mask.Mask        { return t.archMask }
func (t *tableImpl) Length() int            { return len(t.entries) }
func (t *tableImpl) ElementTypes() []ElementType {
	return t.elements
}

func (t *tableImpl) Contains(e ElementType) bool {
	bit := e.ID()
	if bit >= MaxElementTypes {
		return false
	}
	return t.columnByBit[bit] >= 0
}

func (t *tableImpl) columnIndex(bit uint32) int {
	if bit >= MaxElementTypes {
		return -1
	}
	return t.columnByBit[bit]
}

func (t *tableImpl) growColumnsTo(n int) {
	for i := range t.columns {
		t.columns[i].growTo(n)
	}
}

func (t *tableImpl) NewEntries(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	start := len(t.entries)
	t.growColumnsTo(start + n)

	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		row := start + i
		for ci := range t.columns {
			t.columns[ci].zero(row)
		}
		id, _ := t.entryIndex.Allocate(t, row)
		t.entries = append(t.entries, id)
		ent, err := t.entryIndex.Entry(int(id))
		if err != nil {
			return nil, err
		}
		entries[i] = ent
	}
	if t.events.OnInsert != nil {
		for _, e := range entries {
			t.events.OnInsert(t, e.ID())
		}
	}
	return entries, nil
}

// removeRow swap-removes the row at index from every column and the
// entries vector, relocating whichever row it swapped in. If free is
// true the vacated id is also retired (generation bumped, pushed to
// the free-list) - callers performing a migration instead of a despawn
// pass free=false, having already relocated id to its new home.
func (t *tableImpl) removeRow(row int, id EntryID, free bool) {
	last := len(t.entries) - 1
	if row != last {
		for i := range t.columns {
			t.columns[i].copyWithin(row, last)
		}
		movedID := t.entries[last]
		t.entries[row] = movedID
		t.entryIndex.Relocate(movedID, t, row)
	}
	t.entries = t.entries[:last]
	if free {
		t.entryIndex.Free(id)
	}
}

func (t *tableImpl) rowOf(id EntryID) (int, bool) {
	if int(id) >= len(t.entryIndex.locations) {
		return 0, false
	}
	loc := t.entryIndex.locations[id]
	if !loc.alive || loc.table != Table(t) {
		return 0, false
	}
	return loc.row, true
}

func (t *tableImpl) DeleteEntries(ids ...int) ([]EntryID, error) {
	freed := make([]EntryID, 0, len(ids))
	for _, raw := range ids {
		id := EntryID(raw)
		row, ok := t.rowOf(id)
		if !ok {
			continue
		}
		t.removeRow(row, id, true)
		freed = append(freed, id)
	}
	if t.events.OnRemove != nil {
		for _, id := range freed {
			t.events.OnRemove(t, id)
		}
	}
	return freed, nil
}

func (t *tableImpl) TransferEntries(target Table, row int) error {
	dst, ok := target.(*tableImpl)
	if !ok {
		return fmt.Errorf("table: TransferEntries target is not a table built by this package")
	}
	if row < 0 || row >= len(t.entries) {
		return ErrRowOutOfRange
	}
	id := t.entries[row]

	dst.growColumnsTo(len(dst.entries) + 1)
	newRow := len(dst.entries)
	dst.entries = append(dst.entries, id)
	for ci := range dst.columns {
		dc := &dst.columns[ci]
		bit := dc.elementType.ID()
		if srcIdx := t.columnIndex(bit); srcIdx >= 0 {
			dc.copyFrom(&t.columns[srcIdx], newRow, row)
		} else {
			dc.zero(newRow)
		}
	}
	t.entryIndex.Relocate(id, dst, newRow)
	t.removeRow(row, id, false)

	if t.events.OnMigrate != nil {
		t.events.OnMigrate(t, dst, id)
	}
	return nil
}

func (t *tableImpl) Entry(row int) (Entry, error) {
	if row < 0 || row >= len(t.entries) {
		return nil, ErrRowOutOfRange
	}
	return t.entryIndex.Entry(int(t.entries[row]))
}

func (t *tableImpl) Rows() []Row {
	rows := make([]Row, len(t.columns))
	for i, c := range t.columns {
		rows[i] = Row{elementType: c.elementType, value: c.buffer}
	}
	return rows
}

func (t *tableImpl) AddEdge(bit uint32) (Table, bool) {
	if bit >= MaxElementTypes || t.addEdges[bit] == nil {
		return nil, false
	}
	return t.addEdges[bit], true
}

func (t *tableImpl) SetAddEdge(bit uint32, to Table) {
	if bit >= MaxElementTypes {
		return
	}
	t.addEdges[bit] = to
}

func (t *tableImpl) RemoveEdge(bit uint32) (Table, bool) {
	if bit >= MaxElementTypes || t.removeEdges[bit] == nil {
		return nil, false
	}
	return t.removeEdges[bit], true
}

func (t *tableImpl) SetRemoveEdge(bit uint32, to Table) {
	if bit >= MaxElementTypes {
		return
	}
	t.removeEdges[bit] = to
}

func (t *tableImpl) columnPointer(bit uint32, index int) (bool, unsafe.Pointer) {
	ci := t.columnIndex(bit)
	if ci < 0 || index < 0 || index >= len(t.entries) {
		return false, nil
	}
	return true, t.columns[ci].pointer(index)
}

func (t *tableImpl) columnLen() int {
	return len(t.entries)
}

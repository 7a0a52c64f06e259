package table

// EntryID is a raw, non-generational row identifier: a slot in an
// EntryIndex. Combined with the generation recorded for that slot at
// the time it was handed out, it forms the generational entity handle
// described by the engine's data model. EntryIndex hands out EntryIDs
// starting at 0; slots are only ever reused once freed.
type EntryID uint32

// Entry is a live view onto one slot of an EntryIndex: its current row,
// table, and generation. All four accessors re-read the index on every
// call, so an Entry always reflects the slot's *current* occupant - it
// is the caller's job (via EntryIndex.Validate) to confirm a held
// EntryID/generation pair still refers to the entity that created it
// before trusting what Entry returns.
type Entry interface {
	ID() EntryID
	Index() int
	Recycled() int
	Table() Table
}

type location struct {
	table      Table
	row        int
	generation uint32
	alive      bool
}

// EntryIndex is the generational entity directory: it maps an EntryID to
// its current archetype table and row, tracks a free-list of retired
// slots for reuse, and bumps a slot's generation on every retirement so
// stale handles can be detected in O(1).
type EntryIndex interface {
	// Allocate reserves a slot for a brand new row at (t, row) and
	// returns its id and the generation that now owns it.
	Allocate(t Table, row int) (EntryID, uint32)
	// Free retires id: marks it not-alive, bumps its generation, and
	// pushes it onto the free-list for reuse.
	Free(id EntryID)
	// Relocate updates the slot's table/row after a migration or a
	// swap-remove elsewhere moved the occupant. It does not touch
	// alive/generation.
	Relocate(id EntryID, t Table, row int)
	// Validate reports whether id is alive and still on generation gen.
	Validate(id EntryID, gen uint32) bool
	// Generation returns the slot's current generation, live.
	Generation(id EntryID) uint32
	// Entry returns a live view onto id's slot. Error if id is out of range.
	Entry(id int) (Entry, error)
	// Len returns the directory's logical length (>= next id ever issued).
	Len() int
}

const minEntryIndexCapacity = 64

type entryIndex struct {
	locations []location
	freeList  []EntryID
	nextID    uint32
}

// NewEntryIndex returns an empty EntryIndex.
func NewEntryIndex() EntryIndex {
	return &entryIndex{}
}

func (ei *entryIndex) Allocate(t Table, row int) (EntryID, uint32) {
	if len(ei.freeList) > 0 {
		id := ei.freeList[len(ei.freeList)-1]
		ei.freeList = ei.freeList[:len(ei.freeList)-1]
		loc := &ei.locations[id]
		loc.table = t
		loc.row = row
		loc.alive = true
		return id, loc.generation
	}

	id := EntryID(ei.nextID)
	ei.nextID++
	ei.grow(int(id) + 1)
	loc := &ei.locations[id]
	loc.table = t
	loc.row = row
	loc.alive = true
	loc.generation = 0
	return id, loc.generation
}

func (ei *entryIndex) grow(minLen int) {
	if minLen <= len(ei.locations) {
		return
	}
	newCap := max(minLen, minEntryIndexCapacity)
	if newCap < 2*len(ei.locations) {
		newCap = 2 * len(ei.locations)
	}
	if newCap < minLen {
		newCap = minLen
	}
	grown := make([]location, minLen, newCap)
	copy(grown, ei.locations)
	ei.locations = grown
}

func (ei *entryIndex) Free(id EntryID) {
	if int(id) >= len(ei.locations) {
		return
	}
	loc := &ei.locations[id]
	loc.alive = false
	loc.generation++
	loc.table = nil
	loc.row = 0
	ei.freeList = append(ei.freeList, id)
}

func (ei *entryIndex) Relocate(id EntryID, t Table, row int) {
	if int(id) >= len(ei.locations) {
		return
	}
	loc := &ei.locations[id]
	loc.table = t
	loc.row = row
}

func (ei *entryIndex) Validate(id EntryID, gen uint32) bool {
	if int(id) >= len(ei.locations) {
		return false
	}
	loc := &ei.locations[id]
	return loc.alive && loc.generation == gen
}

func (ei *entryIndex) Generation(id EntryID) uint32 {
	if int(id) >= len(ei.locations) {
		return 0
	}
	return ei.locations[id].generation
}

func (ei *entryIndex) Len() int {
	return len(ei.locations)
}

func (ei *entryIndex) Entry(id int) (Entry, error) {
	if id < 0 || id >= len(ei.locations) {
		return nil, ErrInvalidEntry
	}
	return entryView{id: EntryID(id), index: ei}, nil
}

// entryView is the live Entry implementation returned by EntryIndex.Entry.
type entryView struct {
	id    EntryID
	index *entryIndex
}

func (e entryView) ID() EntryID { return e.id }

func (e entryView) Index() int {
	if int(e.id) >= len(e.index.locations) {
		return -1
	}
	return e.index.locations[e.id].row
}

func (e entryView) Recycled() int {
	if int(e.id) >= len(e.index.locations) {
		return 0
	}
	return int(e.index.locations[e.id].generation)
}

func (e entryView) Table() Table {
	if int(e.id) >= len(e.index.locations) {
		return nil
	}
	return e.index.locations[e.id].table
}

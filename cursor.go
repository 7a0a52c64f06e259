package warehouse

import (
	"iter"

	"github.com/driftforge/warehouse/table"
)

// Ensure Cursor implements iCursor interface
var _ iCursor = &Cursor{}

// iCursor defines the interface for iterating over entities in storage
type iCursor interface {
	Entities() iter.Seq2[int, table.Table]
	Next() bool
}

// Cursor provides iteration over filtered entities in storage
type Cursor struct {
	query   QueryNode
	storage Storage

	lockBit uint32
	locked  bool

	matched []Archetype
	archIdx int
	row     int

	currentTable table.Table
	initialized  bool
}

// newCursor creates a new cursor for the given query and storage
func newCursor(query QueryNode, storage Storage) *Cursor {
	return &Cursor{
		query:   query,
		storage: storage,
		row:     -1,
	}
}

// Initialize locks the storage against structural mutation and snapshots
// the archetypes currently matching the cursor's query.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}
	c.lockBit = c.storage.AddLock()
	c.locked = true
	c.matched = c.storage.Matching(c.query)
	c.archIdx = 0
	c.row = -1
	c.initialized = true
}

// Next advances to the next entity and returns whether one exists
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.Initialize()
	}
	for c.archIdx < len(c.matched) {
		tbl := c.matched[c.archIdx].Table()
		if c.row+1 < tbl.Length() {
			c.row++
			c.currentTable = tbl
			return true
		}
		c.archIdx++
		c.row = -1
	}
	c.Reset()
	return false
}

// Entities returns an iterator sequence over entities matching the query
func (c *Cursor) Entities() iter.Seq2[int, table.Table] {
	return func(yield func(int, table.Table) bool) {
		c.Initialize()

		for c.archIdx < len(c.matched) {
			tbl := c.matched[c.archIdx].Table()
			c.currentTable = tbl

			for c.row+1 < tbl.Length() {
				c.row++
				if !yield(c.row, tbl) {
					c.Reset()
					return
				}
			}

			c.row = -1
			c.archIdx++
		}

		c.Reset()
	}
}

// Reset clears cursor state and releases the storage lock
func (c *Cursor) Reset() {
	c.archIdx = 0
	c.row = -1
	c.matched = nil
	c.currentTable = nil
	c.initialized = false
	if c.locked {
		c.storage.RemoveLock(c.lockBit)
		c.locked = false
	}
}

// CurrentEntity returns the entity at the current cursor position
func (c *Cursor) CurrentEntity() (Entity, error) {
	entry, err := c.currentTable.Entry(c.row)
	if err != nil {
		return nil, err
	}
	return c.storage.Entity(int(entry.ID()))
}

// EntityAtOffset returns an entity at the specified offset from current position
func (c *Cursor) EntityAtOffset(offset int) (Entity, error) {
	entry, err := c.currentTable.Entry(c.row + offset)
	if err != nil {
		return nil, err
	}
	return c.storage.Entity(int(entry.ID()))
}

// EntityIndex returns the current entity's row within the current archetype
func (c *Cursor) EntityIndex() int {
	return c.row
}

// RemainingInArchetype returns the number of entities left in the current archetype
func (c *Cursor) RemainingInArchetype() int {
	if c.currentTable == nil {
		return 0
	}
	return c.currentTable.Length() - c.row - 1
}

// TotalMatched returns the total number of entities matching the query
func (c *Cursor) TotalMatched() int {
	c.Initialize()
	total := 0
	for _, arch := range c.matched {
		total += arch.Table().Length()
	}
	c.Reset()
	return total
}

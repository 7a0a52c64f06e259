package table

// factory implements the factory pattern for table package constructors,
// mirroring the warehouse.Factory used one layer up.
type factory struct{}

// Factory is the global factory instance for creating table primitives.
var Factory factory

// NewSchema creates an empty Schema.
func (f factory) NewSchema() Schema {
	return NewSchema()
}

// NewEntryIndex creates an empty EntryIndex.
func (f factory) NewEntryIndex() EntryIndex {
	return NewEntryIndex()
}

package table

import "errors"

// ErrInvalidEntry is returned when an EntryID/row index falls outside
// the directory or table it is looked up against.
var ErrInvalidEntry = errors.New("table: invalid entry index")

// ErrRowOutOfRange is returned when a row index does not address a
// live row of a table.
var ErrRowOutOfRange = errors.New("table: row out of range")

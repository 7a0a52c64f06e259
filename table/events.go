package table

// TableEvents holds optional instrumentation callbacks fired as rows are
// inserted, removed, or migrated between tables. Any field may be nil.
type TableEvents struct {
	OnInsert  func(t Table, id EntryID)
	OnRemove  func(t Table, id EntryID)
	OnMigrate func(from, to Table, id EntryID)
}

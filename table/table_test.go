package table

import (
	"testing"
)

type position struct {
	X, Y float64
}

type rotation struct {
	Angle float64
}

func newTestTable(t *testing.T, elements ...ElementType) (Table, EntryIndex) {
	t.Helper()
	ei := NewEntryIndex()
	tbl, err := NewTableBuilder().
		WithID(0).
		WithSchema(NewSchema()).
		WithEntryIndex(ei).
		WithElementTypes(elements...).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return tbl, ei
}

func posElement() ElementType { return FactoryNewElementType[position]() }
func rotElement() ElementType { return FactoryNewElementType[rotation]() }

func TestTableNewEntriesAndAccess(t *testing.T) {
	posET, rotET := posElement(), rotElement()
	tbl, _ := newTestTable(t, posET, rotET)

	entries, err := tbl.NewEntries(2)
	if err != nil {
		t.Fatalf("NewEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("NewEntries() returned %d entries, want 2", len(entries))
	}
	if tbl.Length() != 2 {
		t.Fatalf("Length() = %d, want 2", tbl.Length())
	}

	posAcc := FactoryNewAccessor[position](posET)
	rotAcc := FactoryNewAccessor[rotation](rotET)

	*posAcc.Get(0, tbl) = position{X: 1, Y: 2}
	*rotAcc.Get(0, tbl) = rotation{Angle: 3}
	*posAcc.Get(1, tbl) = position{X: 4, Y: 5}
	*rotAcc.Get(1, tbl) = rotation{Angle: 6}

	if p := posAcc.Get(0, tbl); p.X != 1 || p.Y != 2 {
		t.Errorf("row 0 position = %+v, want {1 2}", p)
	}
	if p := posAcc.Get(1, tbl); p.X != 4 || p.Y != 5 {
		t.Errorf("row 1 position = %+v, want {4 5}", p)
	}
}

func TestTableDeleteEntriesSwapRemove(t *testing.T) {
	posET := posElement()
	tbl, ei := newTestTable(t, posET)
	posAcc := FactoryNewAccessor[position](posET)

	entries, err := tbl.NewEntries(3)
	if err != nil {
		t.Fatalf("NewEntries() error = %v", err)
	}
	*posAcc.Get(0, tbl) = position{X: 0}
	*posAcc.Get(1, tbl) = position{X: 1}
	*posAcc.Get(2, tbl) = position{X: 2}

	firstID := entries[0].ID()
	if _, err := tbl.DeleteEntries(int(firstID)); err != nil {
		t.Fatalf("DeleteEntries() error = %v", err)
	}
	if tbl.Length() != 2 {
		t.Fatalf("Length() after delete = %d, want 2", tbl.Length())
	}

	// The last row should have been swapped into row 0.
	if p := posAcc.Get(0, tbl); p.X != 2 {
		t.Errorf("row 0 position after swap-remove = %+v, want X=2", p)
	}

	if ei.Validate(firstID, 0) {
		t.Errorf("deleted entry %d still validates under its original generation", firstID)
	}
}

func TestTableTransferEntries(t *testing.T) {
	posET, rotET := posElement(), rotElement()
	ei := NewEntryIndex()
	schema := NewSchema()

	src, err := NewTableBuilder().WithID(0).WithSchema(schema).WithEntryIndex(ei).
		WithElementTypes(posET).Build()
	if err != nil {
		t.Fatalf("Build(src) error = %v", err)
	}
	dst, err := NewTableBuilder().WithID(1).WithSchema(schema).WithEntryIndex(ei).
		WithElementTypes(posET, rotET).Build()
	if err != nil {
		t.Fatalf("Build(dst) error = %v", err)
	}

	posAcc := FactoryNewAccessor[position](posET)
	rotAcc := FactoryNewAccessor[rotation](rotET)

	if _, err := src.NewEntries(1); err != nil {
		t.Fatalf("NewEntries() error = %v", err)
	}
	*posAcc.Get(0, src) = position{X: 7, Y: 8}

	if err := src.TransferEntries(dst, 0); err != nil {
		t.Fatalf("TransferEntries() error = %v", err)
	}
	if src.Length() != 0 {
		t.Errorf("src.Length() after transfer = %d, want 0", src.Length())
	}
	if dst.Length() != 1 {
		t.Fatalf("dst.Length() after transfer = %d, want 1", dst.Length())
	}
	if p := posAcc.Get(0, dst); p.X != 7 || p.Y != 8 {
		t.Errorf("position carried over transfer = %+v, want {7 8}", p)
	}
	// rotation column is new on dst; it should be zero-valued, not garbage.
	if r := rotAcc.Get(0, dst); r.Angle != 0 {
		t.Errorf("new column after transfer = %+v, want zero value", r)
	}
}

func TestEntryIndexGenerationalValidation(t *testing.T) {
	ei := NewEntryIndex()
	schema := NewSchema()
	posET := posElement()
	tbl, err := NewTableBuilder().WithID(0).WithSchema(schema).WithEntryIndex(ei).
		WithElementTypes(posET).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	entries, err := tbl.NewEntries(1)
	if err != nil {
		t.Fatalf("NewEntries() error = %v", err)
	}
	id := entries[0].ID()
	gen := ei.Generation(id)

	if !ei.Validate(id, gen) {
		t.Fatalf("freshly allocated entry does not validate")
	}

	if _, err := tbl.DeleteEntries(int(id)); err != nil {
		t.Fatalf("DeleteEntries() error = %v", err)
	}
	if ei.Validate(id, gen) {
		t.Errorf("entry validates after being freed")
	}

	// Reallocating should reuse the slot under a bumped generation.
	reentries, err := tbl.NewEntries(1)
	if err != nil {
		t.Fatalf("NewEntries() error = %v", err)
	}
	newID := reentries[0].ID()
	if newID != id {
		t.Fatalf("freed slot was not reused: got id %d, want %d", newID, id)
	}
	if ei.Generation(newID) == gen {
		t.Errorf("generation was not bumped on reuse")
	}
}

func TestSchemaRegisterAndMask(t *testing.T) {
	s := NewSchema()
	posET, rotET := posElement(), rotElement()

	if s.Contains(posET) {
		t.Fatalf("schema contains unregistered element")
	}
	s.Register(posET)
	if !s.Contains(posET) {
		t.Errorf("schema missing registered element")
	}
	if s.Contains(rotET) {
		t.Errorf("schema contains element it never registered")
	}

	m := s.Mask(posET, rotET)
	if !m.Contains(posET.ID()) || !m.Contains(rotET.ID()) {
		t.Errorf("Mask() missing a bit for one of its inputs")
	}
}

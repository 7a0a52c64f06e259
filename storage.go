package warehouse

import (
	"fmt"

	"github.com/driftforge/warehouse/bark"
	"github.com/driftforge/warehouse/mask"
	"github.com/driftforge/warehouse/table"
)

// Ensure storage implements Storage interface
var _ Storage = &storage{}

// globalEntryIndex and globalEntities are process-wide: entity ids are
// handed out from one directory no matter which Storage spawned them, so
// TransferEntities can move an Entity from one Storage to another without
// its id changing. globalEntities stores pointers so growing the slice
// never invalidates an Entity a caller is already holding.
var (
	globalEntryIndex = table.NewEntryIndex()
	globalEntities   = make([]*entity, 0)
)

// Storage defines the interface for entity storage and manipulation
type Storage interface {
	Entity(id int) (Entity, error)
	NewEntities(n int, components ...Component) ([]Entity, error)
	NewEntitiesWithMask(m mask.Mask, n int) ([]Entity, error)
	NewEntitiesWithInit(n int, init func(t table.Table, row int), components ...Component) ([]Entity, error)
	NewOrExistingArchetype(components ...Component) (Archetype, error)
	EnqueueNewEntities(int, ...Component) error
	DestroyEntities(...Entity) error
	EnqueueDestroyEntities(...Entity) error
	RowIndexFor(Component) uint32
	Locked() bool
	AddLock() uint32
	RemoveLock(bit uint32)
	Register(...Component)

	TransferEntities(target Storage, entities ...Entity) error
	Enqueue(EntityOperation)
	Archetypes() []Archetype

	Matching(QueryNode) []Archetype
	CountMatching(QueryNode) int
	FirstMatching(QueryNode) (Entity, bool)
	EntitiesMatching(QueryNode) []Entity

	Events() *EventRegistry
	SetResources(any)
	Resources() any

	Stats() Stats

	tableFor(...Component) (table.Table, error)
	archetypeViaAddEdge(originTbl table.Table, c Component, newComponents []Component) (Archetype, error)
	archetypeViaRemoveEdge(originTbl table.Table, c Component, newComponents []Component) (Archetype, error)
}

// storage implements the Storage interface
type storage struct {
	locks          mask.Mask256
	schema         table.Schema
	archetypes     archetypeSet
	operationQueue EntityOperationsQueue
	events         *EventRegistry
	resources      any
	qcache         queryCache
}

// archetypeSet tracks archetypes by id and by the mask they were built
// from, plus a version bumped on every new archetype so Storage.Matching
// can tell a cached result is stale without rescanning.
type archetypeSet struct {
	bySlice   []Archetype
	idsByMask map[mask.Mask]int
	version   int
}

// queryCache memoizes Storage.Matching results by QueryNode identity,
// mirroring spec's "cache entry equals full linear scan" invariant: a
// cached entry is only ever returned while its version still matches the
// archetype set it was computed against.
type queryCache struct {
	entries map[QueryNode]cachedMatch
}

type cachedMatch struct {
	version    int
	archetypes []Archetype
}

// newStorage creates a new Storage implementation with the given schema
func newStorage(schema table.Schema) Storage {
	return &storage{
		schema: schema,
		archetypes: archetypeSet{
			idsByMask: make(map[mask.Mask]int),
		},
		operationQueue: &entityOperationsQueue{},
		events:         newEventRegistry(),
		qcache:         queryCache{entries: make(map[QueryNode]cachedMatch)},
	}
}

// Entity retrieves an entity by its directory id.
func (sto *storage) Entity(id int) (Entity, error) {
	if id < 0 || id >= len(globalEntities) || globalEntities[id] == nil {
		return nil, InvalidHandleError{ID: table.EntryID(id)}
	}
	return globalEntities[id], nil
}

// NewOrExistingArchetype gets an existing archetype matching the component signature or creates a new one
func (sto *storage) NewOrExistingArchetype(components ...Component) (Archetype, error) {
	var m mask.Mask
	for _, component := range components {
		sto.schema.Register(component)
		m.Mark(sto.schema.RowIndexFor(component))
	}
	if idx, ok := sto.archetypes.idsByMask[m]; ok {
		return sto.archetypes.bySlice[idx], nil
	}

	created, err := newArchetype(sto.schema, globalEntryIndex, archetypeID(len(sto.archetypes.bySlice)), components...)
	if err != nil {
		return nil, err
	}
	sto.archetypes.bySlice = append(sto.archetypes.bySlice, created)
	sto.archetypes.idsByMask[m] = len(sto.archetypes.bySlice) - 1
	sto.archetypes.version++

	// Fold the new archetype into every cache entry that was current until
	// now, so those entries stay equal to a full rescan without one.
	for q, cached := range sto.qcache.entries {
		if cached.version != sto.archetypes.version-1 {
			continue
		}
		if q.Evaluate(created, sto) {
			n := len(cached.archetypes)
			cached.archetypes = append(cached.archetypes[:n:n], created)
		}
		cached.version = sto.archetypes.version
		sto.qcache.entries[q] = cached
	}

	// A newly born archetype is a one-bit neighbour of every archetype it
	// differs from by exactly one component; wire the reciprocal add/remove
	// edges now so AddComponent/RemoveComponent never have to recompute
	// this transition again.
	for _, other := range sto.archetypes.bySlice[:len(sto.archetypes.bySlice)-1] {
		om := other.Table().Mask()
		bit, ok := singleBitDiff(m, om)
		if !ok {
			continue
		}
		if m.Contains(bit) {
			other.Table().SetAddEdge(bit, created.Table())
			created.Table().SetRemoveEdge(bit, other.Table())
		} else {
			created.Table().SetAddEdge(bit, other.Table())
			other.Table().SetRemoveEdge(bit, created.Table())
		}
	}
	return created, nil
}

// singleBitDiff reports the bit index where a and b differ, if they
// differ in exactly one bit (i.e. one mask is the other plus a single
// component). ok is false when the masks are equal or differ by more
// than one bit.
func singleBitDiff(a, b mask.Mask) (uint32, bool) {
	diff := a ^ b
	if diff.Count() != 1 {
		return 0, false
	}
	for bit := uint32(0); bit < mask.MaxBits; bit++ {
		if diff.Contains(bit) {
			return bit, true
		}
	}
	return 0, false
}

// tableFor gets or creates a table for the given component set.
func (sto *storage) tableFor(components ...Component) (table.Table, error) {
	arch, err := sto.NewOrExistingArchetype(components...)
	if err != nil {
		return nil, err
	}
	return arch.Table(), nil
}

// archetypeByMask looks up the archetype already registered for m.
func (sto *storage) archetypeByMask(m mask.Mask) (Archetype, bool) {
	idx, ok := sto.archetypes.idsByMask[m]
	if !ok {
		return nil, false
	}
	return sto.archetypes.bySlice[idx], true
}

// archetypeViaAddEdge resolves the archetype reached by adding c to an
// entity currently in originTbl, consulting originTbl's add-edge cache
// before falling back to a full mask lookup. On a miss it populates the
// edge (both directions) so the next add of c from this origin is O(1).
func (sto *storage) archetypeViaAddEdge(originTbl table.Table, c Component, newComponents []Component) (Archetype, error) {
	bit := sto.schema.RowIndexFor(c)
	if edgeTbl, ok := originTbl.AddEdge(bit); ok {
		if dest, ok := sto.archetypeByMask(edgeTbl.Mask()); ok {
			return dest, nil
		}
	}
	dest, err := sto.NewOrExistingArchetype(newComponents...)
	if err != nil {
		return nil, err
	}
	originTbl.SetAddEdge(bit, dest.Table())
	dest.Table().SetRemoveEdge(bit, originTbl)
	return dest, nil
}

// archetypeViaRemoveEdge is archetypeViaAddEdge's mirror for removing c.
func (sto *storage) archetypeViaRemoveEdge(originTbl table.Table, c Component, newComponents []Component) (Archetype, error) {
	bit := sto.schema.RowIndexFor(c)
	if edgeTbl, ok := originTbl.RemoveEdge(bit); ok {
		if dest, ok := sto.archetypeByMask(edgeTbl.Mask()); ok {
			return dest, nil
		}
	}
	dest, err := sto.NewOrExistingArchetype(newComponents...)
	if err != nil {
		return nil, err
	}
	originTbl.SetRemoveEdge(bit, dest.Table())
	dest.Table().SetAddEdge(bit, originTbl)
	return dest, nil
}

// spawnInArchetype allocates n fresh rows in arch's table, mints an
// Entity handle for each, and runs init (if non-nil) against the row
// before handing the handles back.
func (sto *storage) spawnInArchetype(arch Archetype, n int, init func(table.Table, int)) ([]Entity, error) {
	entries, err := arch.Table().NewEntries(n)
	if err != nil {
		return nil, err
	}

	currentLen := len(globalEntities)
	neededLen := currentLen
	for _, en := range entries {
		neededLen = max(neededLen, int(en.ID())+1)
	}
	if cap(globalEntities) < neededLen {
		newCap := max(neededLen, 2*cap(globalEntities))
		grown := make([]*entity, currentLen, newCap)
		copy(grown, globalEntities)
		globalEntities = grown
	}
	globalEntities = globalEntities[:neededLen]

	entities := make([]Entity, n)
	for i, en := range entries {
		idx := int(en.ID())
		e := &entity{
			id:         en.ID(),
			generation: uint32(en.Recycled()),
			sto:        sto,
			components: append([]Component(nil), arch.Components()...),
		}
		globalEntities[idx] = e
		entities[i] = e
		if init != nil {
			init(arch.Table(), en.Index())
		}
	}
	return entities, nil
}

// NewEntities creates n new entities with the specified components
func (sto *storage) NewEntities(n int, components ...Component) ([]Entity, error) {
	if sto.Locked() {
		return nil, LockedStorageError{}
	}
	if len(components) == 0 {
		return nil, nil
	}
	arch, err := sto.NewOrExistingArchetype(components...)
	if err != nil {
		return nil, err
	}
	return sto.spawnInArchetype(arch, n, nil)
}

// NewEntitiesWithMask spawns n entities into the archetype already
// registered for mask m, without the caller having to restate its
// component list. The archetype must already exist (created by an
// earlier NewEntities/NewOrExistingArchetype call); new columns are
// zero-filled, matching table.Table.NewEntries' own zero-fill.
func (sto *storage) NewEntitiesWithMask(m mask.Mask, n int) ([]Entity, error) {
	if sto.Locked() {
		return nil, LockedStorageError{}
	}
	if m.IsEmpty() {
		return nil, nil
	}
	idx, ok := sto.archetypes.idsByMask[m]
	if !ok {
		return nil, ArchetypeCapacityError{Mask: m}
	}
	return sto.spawnInArchetype(sto.archetypes.bySlice[idx], n, nil)
}

// NewEntitiesWithInit spawns n entities of the given component set,
// invoking init against each freshly allocated row before returning.
func (sto *storage) NewEntitiesWithInit(n int, init func(table.Table, int), components ...Component) ([]Entity, error) {
	if sto.Locked() {
		return nil, LockedStorageError{}
	}
	if len(components) == 0 {
		return nil, nil
	}
	arch, err := sto.NewOrExistingArchetype(components...)
	if err != nil {
		return nil, err
	}
	return sto.spawnInArchetype(arch, n, init)
}

// RowIndexFor returns the bit index for a component in the schema
func (sto *storage) RowIndexFor(c Component) uint32 {
	return sto.schema.RowIndexFor(c)
}

// Locked checks if the storage is currently locked
func (sto *storage) Locked() bool {
	return !sto.locks.IsEmpty()
}

// AddLock reserves the next free lock bit (one per outstanding
// cursor/lock) and returns it; the caller must pass it back to RemoveLock.
func (sto *storage) AddLock() uint32 {
	bit, ok := sto.locks.FirstFree()
	if !ok {
		panic(bark.AddTrace(fmt.Errorf("warehouse: exceeded maximum of 256 concurrent cursors/locks")))
	}
	sto.locks.Mark(bit)
	return bit
}

// RemoveLock releases a specific bit lock and processes queued operations if fully unlocked
func (sto *storage) RemoveLock(bit uint32) {
	sto.locks.Unmark(bit)
	if sto.locks.IsEmpty() {
		if err := sto.operationQueue.ProcessAll(sto); err != nil {
			panic(bark.AddTrace(fmt.Errorf("error processing queued operations: %w", err)))
		}
	}
}

// EnqueueNewEntities either creates entities immediately or queues creation if storage is locked
func (sto *storage) EnqueueNewEntities(count int, components ...Component) error {
	if !sto.Locked() {
		_, err := sto.NewEntities(count, components...)
		if err != nil {
			return fmt.Errorf("failed to create entities directly: %w", err)
		}
		return nil
	}
	sto.operationQueue.Enqueue(NewEntityOperation{
		count:      count,
		components: components,
	})
	return nil
}

// DestroyEntities removes entities from storage, then invokes any destroy
// callback registered via SetDestroyCallback/SetParent for each of them.
func (sto *storage) DestroyEntities(entities ...Entity) error {
	if sto.Locked() {
		return LockedStorageError{}
	}
	tableGroups := make(map[table.Table][]int)
	for _, en := range entities {
		if en == nil || !en.Valid() {
			continue
		}
		tableGroups[en.Table()] = append(tableGroups[en.Table()], int(en.ID()))
	}
	for tbl, ids := range tableGroups {
		if _, err := tbl.DeleteEntries(ids...); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
	}
	for _, en := range entities {
		if en == nil {
			continue
		}
		if e, ok := en.(*entity); ok && e.relationships.onDestroy != nil {
			e.relationships.onDestroy(en)
		}
		idx := int(en.ID())
		if idx >= 0 && idx < len(globalEntities) {
			globalEntities[idx] = nil
		}
	}
	return nil
}

// EnqueueDestroyEntities either destroys entities immediately or queues destruction if storage is locked
func (sto *storage) EnqueueDestroyEntities(entities ...Entity) error {
	if !sto.Locked() {
		return sto.DestroyEntities(entities...)
	}
	for _, en := range entities {
		sto.operationQueue.Enqueue(DestroyEntityOperation{
			entity:   en,
			recycled: en.Recycled(),
		})
	}
	return nil
}

// TransferEntities moves entities from this storage to the target storage
func (sto *storage) TransferEntities(target Storage, entities ...Entity) error {
	if sto.Locked() {
		return LockedStorageError{}
	}
	for _, en := range entities {
		comps := en.Components()
		target.Register(comps...)
		targetTbl, err := target.tableFor(comps...)
		if err != nil {
			return err
		}
		if err := en.Table().TransferEntries(targetTbl, en.Index()); err != nil {
			return err
		}
		en.SetStorage(target)
	}
	return nil
}

// Register adds components to the storage schema
func (sto *storage) Register(comps ...Component) {
	ets := make([]table.ElementType, len(comps))
	for i, c := range comps {
		ets[i] = c
	}
	sto.schema.Register(ets...)
}

// Enqueue adds an operation to the queue
func (sto *storage) Enqueue(op EntityOperation) {
	sto.operationQueue.Enqueue(op)
}

// Archetypes returns all archetypes in this storage
func (sto *storage) Archetypes() []Archetype {
	return sto.archetypes.bySlice
}

// Matching returns every archetype currently satisfying q, served from
// the query cache while the entry for this exact QueryNode is current
// (NewOrExistingArchetype extends current entries as archetypes are born).
func (sto *storage) Matching(q QueryNode) []Archetype {
	if cached, ok := sto.qcache.entries[q]; ok && cached.version == sto.archetypes.version {
		return cached.archetypes
	}
	matched := make([]Archetype, 0, len(sto.archetypes.bySlice))
	for _, arch := range sto.archetypes.bySlice {
		if q.Evaluate(arch, sto) {
			matched = append(matched, arch)
		}
	}
	sto.qcache.entries[q] = cachedMatch{version: sto.archetypes.version, archetypes: matched}
	return matched
}

// CountMatching returns the number of entities across every archetype matching q.
func (sto *storage) CountMatching(q QueryNode) int {
	total := 0
	for _, a := range sto.Matching(q) {
		total += a.Table().Length()
	}
	return total
}

// FirstMatching returns the first entity across every archetype matching
// q, in archetype-creation order, and false if none match.
func (sto *storage) FirstMatching(q QueryNode) (Entity, bool) {
	for _, a := range sto.Matching(q) {
		tbl := a.Table()
		if tbl.Length() == 0 {
			continue
		}
		entry, err := tbl.Entry(0)
		if err != nil {
			continue
		}
		en, err := sto.Entity(int(entry.ID()))
		if err != nil {
			continue
		}
		return en, true
	}
	return nil, false
}

// EntitiesMatching returns every entity across every archetype matching q.
func (sto *storage) EntitiesMatching(q QueryNode) []Entity {
	var result []Entity
	for _, a := range sto.Matching(q) {
		tbl := a.Table()
		for row := 0; row < tbl.Length(); row++ {
			entry, err := tbl.Entry(row)
			if err != nil {
				continue
			}
			en, err := sto.Entity(int(entry.ID()))
			if err != nil {
				continue
			}
			result = append(result, en)
		}
	}
	return result
}

// Events returns the storage's named event queues.
func (sto *storage) Events() *EventRegistry {
	return sto.events
}

// SetResources stores a single user-defined resources value on the storage.
func (sto *storage) SetResources(r any) {
	sto.resources = r
}

// Resources returns the storage's resources value, or nil if none was set.
func (sto *storage) Resources() any {
	return sto.resources
}

// Stats reports a point-in-time snapshot of the storage's size.
func (sto *storage) Stats() Stats {
	stats := Stats{ArchetypeCount: len(sto.archetypes.bySlice)}
	for _, a := range sto.archetypes.bySlice {
		stats.EntityCount += a.Table().Length()
		stats.ColumnCount += len(a.Table().ElementTypes())
	}
	return stats
}

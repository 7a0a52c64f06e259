package table

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/driftforge/warehouse/bark"
	"github.com/driftforge/warehouse/mask"
)

// MaxElementTypes is the largest number of distinct component types a
// process may register, one per mask bit.
const MaxElementTypes = mask.MaxBits

// ElementType identifies a registered component type: its process-wide
// bit index and the reflect.Type/size used to size its column.
type ElementType interface {
	ID() uint32
	Type() reflect.Type
	Size() uintptr
}

type elementType struct {
	id   uint32
	typ  reflect.Type
	size uintptr
}

func (e elementType) ID() uint32         { return e.id }
func (e elementType) Type() reflect.Type { return e.typ }
func (e elementType) Size() uintptr      { return e.size }

var (
	registryMu     sync.Mutex
	registryByType = map[reflect.Type]elementType{}
	nextElementID  uint32
)

// FactoryNewElementType registers T (if not already registered) and
// returns its ElementType. Registration is process-wide: calling this
// twice for the same T returns the same bit both times, which is what
// lets independent Storage instances in one process agree on bits.
//
// Panics (via bark.AddTrace) if more than MaxElementTypes distinct types
// are ever registered.
func FactoryNewElementType[T any]() ElementType {
	var zero T
	typ := reflect.TypeOf(zero)

	registryMu.Lock()
	defer registryMu.Unlock()

	if et, ok := registryByType[typ]; ok {
		return et
	}
	if nextElementID >= MaxElementTypes {
		panic(bark.AddTrace(fmt.Errorf("table: component type limit of %d exceeded registering %v", MaxElementTypes, typ)))
	}
	et := elementType{id: nextElementID, typ: typ, size: typ.Size()}
	registryByType[typ] = et
	nextElementID++
	return et
}

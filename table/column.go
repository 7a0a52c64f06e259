package table

import (
	"reflect"
	"unsafe"
)

// column is one archetype column: a growable, natural-aligned array of
// one component type. Growth mirrors mlange-42/arche's reflect-array
// storage (reflect.New(reflect.ArrayOf(cap, T)).Elem(), reflect.Copy on
// resize) rather than hand-rolled []byte slicing, so alignment and GC
// scanning of pointer-containing components stay correct for free.
type column struct {
	elementType ElementType
	buffer      reflect.Value
	base        unsafe.Pointer
	itemSize    uintptr
	cap         int
}

func newColumn(et ElementType, capacity int) column {
	if capacity < 1 {
		capacity = 1
	}
	buf := reflect.New(reflect.ArrayOf(capacity, et.Type())).Elem()
	return column{
		elementType: et,
		buffer:      buf,
		base:        buf.Addr().UnsafePointer(),
		itemSize:    et.Type().Size(),
		cap:         capacity,
	}
}

func (c *column) growTo(minCap int) {
	if minCap <= c.cap {
		return
	}
	newCap := c.cap * 2
	if newCap < minCap {
		newCap = minCap
	}
	old := c.buffer
	c.buffer = reflect.New(reflect.ArrayOf(newCap, c.elementType.Type())).Elem()
	c.base = c.buffer.Addr().UnsafePointer()
	reflect.Copy(c.buffer, old)
	c.cap = newCap
}

func (c *column) at(index int) unsafe.Pointer {
	if c.itemSize == 0 {
		return c.base
	}
	return unsafe.Add(c.base, uintptr(index)*c.itemSize)
}

// copyWithin copies the element at src to dst inside the same column.
func (c *column) copyWithin(dst, src int) {
	if c.itemSize == 0 || dst == src {
		return
	}
	dstBytes := unsafe.Slice((*byte)(c.at(dst)), c.itemSize)
	srcBytes := unsafe.Slice((*byte)(c.at(src)), c.itemSize)
	copy(dstBytes, srcBytes)
}

// copyFrom copies the element at srcIndex of src into dstIndex of c.
// Both columns must carry the same component type.
func (c *column) copyFrom(src *column, dstIndex, srcIndex int) {
	if c.itemSize == 0 {
		return
	}
	dstBytes := unsafe.Slice((*byte)(c.at(dstIndex)), c.itemSize)
	srcBytes := unsafe.Slice((*byte)(src.at(srcIndex)), c.itemSize)
	copy(dstBytes, srcBytes)
}

func (c *column) zero(index int) {
	if c.itemSize == 0 {
		return
	}
	dst := unsafe.Slice((*byte)(c.at(index)), c.itemSize)
	for i := range dst {
		dst[i] = 0
	}
}

// setValue writes a reflect-boxed component value into row index.
func (c *column) setValue(index int, v any) {
	if c.itemSize == 0 {
		return
	}
	reflect.NewAt(c.elementType.Type(), c.at(index)).Elem().Set(reflect.ValueOf(v))
}

// pointer exposes the raw element pointer at index, for typed Accessors.
func (c *column) pointer(index int) unsafe.Pointer {
	return c.at(index)
}

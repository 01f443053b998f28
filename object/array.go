/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

package object

// Array is the sub-variant of Object described in spec §3: it adds an
// element count, and its Memory holds (super-object area, if any,
// followed by) the element storage.
type Array struct {
	Object
	Length        int32
	ComponentDesc string // single-char primitive descriptor, or "L"/"[" for reference
	ComponentSize uint32
	SuperAreaSize uint32 // bytes of inherited (java/lang/Object) field area preceding elements
}

// ElementOffset returns the byte offset of element i within Memory.
func (a *Array) ElementOffset(i int32) uint32 {
	return a.SuperAreaSize + uint32(i)*a.ComponentSize
}

// GetElement decodes element i.
func (a *Array) GetElement(i int32) (interface{}, error) {
	if i < 0 || i >= a.Length {
		return nil, &IndexOutOfBoundsError{Index: i, Length: a.Length}
	}
	off := a.ElementOffset(i)
	return decodeSlot(a.Memory[off:off+a.ComponentSize], a.ComponentDesc), nil
}

// SetElement encodes v into element i.
func (a *Array) SetElement(i int32, v interface{}) error {
	if i < 0 || i >= a.Length {
		return &IndexOutOfBoundsError{Index: i, Length: a.Length}
	}
	off := a.ElementOffset(i)
	encodeSlot(a.Memory[off:off+a.ComponentSize], a.ComponentDesc, v)
	return nil
}

// IsReferenceComponent reports whether elements of this array are object
// references (as opposed to a primitive kind), which matters to the GC's
// mark phase (spec §4.5) and to the interpreter's store-type check on
// aastore.
func (a *Array) IsReferenceComponent() bool {
	return a.ComponentDesc == "L" || a.ComponentDesc == "["
}

// IndexOutOfBoundsError is raised by the array opcodes' bounds check
// (spec §4.3 "array load/store with bounds check").
type IndexOutOfBoundsError struct {
	Index  int32
	Length int32
}

func (e *IndexOutOfBoundsError) Error() string {
	return "Index " + itoa(int64(e.Index)) + " out of bounds for length " + itoa(int64(e.Length))
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

// Package object implements the object and array memory model of spec
// §3/§4.4: one contiguous block per instance, header plus a field area
// laid out by offset, with the super-type's field area first. Field
// access goes through a FieldDescriptor supplied by the classloader
// (object deliberately does not import classloader, to avoid a cycle --
// the type/field model is passed in by reference instead).
package object

import (
	"fmt"
	"sync/atomic"

	"jacobin/types"
)

// FieldDescriptor is the minimal view of a linked field that the object
// layer needs: where it lives and how wide it is. src/classloader.Field
// satisfies this by construction (same field names); it's duplicated
// here, rather than imported, to keep object free of a classloader
// dependency.
type FieldDescriptor struct {
	Name       string
	Descriptor string // e.g. "I", "Ljava/lang/String;", "[B"
	Offset     uint32
	TypeSize   uint32
	IsStatic   bool
}

// Mark is the GC header bit. A single bool width is enough per spec
// §3 ("1-bit `used` flag"); kept as int32 so sync/atomic can flip it
// without the caller needing its own lock, since the collector's mark
// phase and the mutator can observe it concurrently between cycles.
type Mark struct {
	used int32
	Hash uint32 // low 32 bits of the object's identity, used as default hashCode()
}

func (m *Mark) SetUsed(v bool) {
	if v {
		atomic.StoreInt32(&m.used, 1)
	} else {
		atomic.StoreInt32(&m.used, 0)
	}
}

func (m *Mark) Used() bool { return atomic.LoadInt32(&m.used) != 0 }

// Object is the header of spec §3: owning type (by name, to dodge the
// classloader import cycle), the GC mark bit, and the contiguous,
// zero-initialized field area sized exactly to the type's ObjectSize.
type Object struct {
	KlassName string
	Mark      Mark
	Memory    []byte // the instance field area; len(Memory) == MemSize
	MemSize   uint32

	// Finalized is set once this object's finalize() has run, so a later
	// collection cycle (which re-registers the object just long enough to
	// make the call, spec §4.7) never hands it to the finalizer a second
	// time -- spec §8 scenario 4's "finalizers have fired exactly once".
	Finalized bool

	// FieldTable mirrors the teacher's map-based convenience accessor
	// for the native (Go) method bodies in src/gfunction, which work by
	// field name rather than by offset. It is NOT the canonical storage
	// -- Memory is. SetFieldValue mirrors each write into it; a write made
	// directly to FieldTable is not copied back into Memory. It exists so
	// gfunction code can read `obj.FieldTable["value"].Fvalue` the way
	// the teacher's javaLangString.go etc. do.
	FieldTable map[string]*Field
}

// Field is the teacher's lightweight (type, value) pair used by the
// native method bridge. Maintained alongside the canonical Memory bytes.
type Field struct {
	Ftype  string
	Fvalue interface{}
}

// MakeEmptyObject returns a zero-value Object with an initialized
// FieldTable, matching the teacher's object_test.go usage pattern.
func MakeEmptyObject() *Object {
	return &Object{FieldTable: make(map[string]*Field)}
}

// NewStringObject creates an object shaped like java/lang/String, used by
// the byte-array helpers and the gfunction native String methods.
func NewStringObject() *Object {
	obj := MakeEmptyObject()
	obj.KlassName = "java/lang/String"
	return obj
}

// GetFieldValue decodes the bytes at descriptor's offset out of the
// object's Memory into a Go value appropriate to the field's type.
func (o *Object) GetFieldValue(fd *FieldDescriptor) (interface{}, error) {
	if fd.Offset+fd.TypeSize > o.MemSize {
		return nil, fmt.Errorf("GetFieldValue: field %s offset %d+%d exceeds object size %d",
			fd.Name, fd.Offset, fd.TypeSize, o.MemSize)
	}
	return decodeSlot(o.Memory[fd.Offset:fd.Offset+fd.TypeSize], fd.Descriptor), nil
}

// SetFieldValue encodes v into the object's Memory at descriptor's
// offset, and mirrors it into FieldTable for native-method convenience.
func (o *Object) SetFieldValue(fd *FieldDescriptor, v interface{}) error {
	if fd.Offset+fd.TypeSize > o.MemSize {
		return fmt.Errorf("SetFieldValue: field %s offset %d+%d exceeds object size %d",
			fd.Name, fd.Offset, fd.TypeSize, o.MemSize)
	}
	encodeSlot(o.Memory[fd.Offset:fd.Offset+fd.TypeSize], fd.Descriptor, v)
	if o.FieldTable != nil {
		o.FieldTable[fd.Name] = &Field{Ftype: fd.Descriptor, Fvalue: v}
	}
	return nil
}

func decodeSlot(b []byte, desc string) interface{} {
	switch desc[0] {
	case types.Bool[0]:
		return b[0] != 0
	case types.Byte[0]:
		return types.JavaByte(int8(b[0]))
	case types.Char[0]:
		return uint16(b[0])<<8 | uint16(b[1])
	case types.Short[0]:
		return int16(uint16(b[0])<<8 | uint16(b[1]))
	case types.Int[0]:
		return int32(beUint32(b))
	case types.Float[0]:
		return beUint32(b) // caller that wants float bits converts
	case types.Long[0]:
		return int64(beUint64(b))
	case types.Double[0]:
		return beUint64(b)
	default: // reference or array: stored as an 8-byte handle (nil => 0)
		return beUint64(b)
	}
}

func encodeSlot(b []byte, desc string, v interface{}) {
	switch desc[0] {
	case types.Bool[0]:
		if bv, _ := v.(bool); bv {
			b[0] = 1
		} else {
			b[0] = 0
		}
	case types.Byte[0]:
		b[0] = byte(toInt64(v))
	case types.Char[0], types.Short[0]:
		putBeUint16(b, uint16(toInt64(v)))
	case types.Int[0]:
		putBeUint32(b, uint32(toInt64(v)))
	case types.Long[0]:
		putBeUint64(b, uint64(toInt64(v)))
	case types.Float[0]:
		putBeUint32(b, uint32(toInt64(v)))
	case types.Double[0]:
		putBeUint64(b, uint64(toInt64(v)))
	default:
		putBeUint64(b, uint64(toInt64(v)))
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case uint32:
		return int64(n)
	case types.JavaByte:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func beUint64(b []byte) uint64 {
	return uint64(beUint32(b[0:4]))<<32 | uint64(beUint32(b[4:8]))
}
func putBeUint16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putBeUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
func putBeUint64(b []byte, v uint64) {
	putBeUint32(b[0:4], uint32(v>>32))
	putBeUint32(b[4:8], uint32(v))
}

// ToString renders an object's fields for tracing/debugging, matching
// the teacher's object_test.go expectation that ToString() is non-empty
// once fields have been populated.
func (o *Object) ToString() string {
	s := fmt.Sprintf("Class: %s", o.KlassName)
	for name, f := range o.FieldTable {
		s += fmt.Sprintf(", %s(%s)=%v", name, f.Ftype, f.Fvalue)
	}
	return s
}

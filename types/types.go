/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package types holds the primitive type descriptors and the handful of
// cross-package constants that describe how many bytes a slot of a given
// kind occupies once it's part of an object's field area or an array's
// element area.
package types

// JavaByte is a signed 8-bit value, kept distinct from Go's byte (uint8)
// so that sign-extension on load matches the bytecode's bipush/baload
// semantics.
type JavaByte int8

// StringIndex is an index into the interned string pool.
type StringIndex uint32

const InvalidStringIndex StringIndex = 0xFFFFFFFF

// ObjectPoolStringIndex is the well-known string-pool slot for
// "java/lang/Object", the slot stringPool.Reset seeds with that name.
const ObjectPoolStringIndex StringIndex = 1

// StringPoolStringIndex is the well-known slot for "java/lang/String".
const StringPoolStringIndex StringIndex = 2

// Descriptor is one of the nine primitive-type singletons, keyed by the
// single-character descriptor used in field/method signatures. It is a
// plain string alias, not a defined type, so it interchanges freely with
// object.Field's Ftype tag without conversion at every comparison site.
type Descriptor = string

const (
	Void   Descriptor = "V"
	Bool   Descriptor = "Z"
	Byte   Descriptor = "B"
	Char   Descriptor = "C"
	Short  Descriptor = "S"
	Int    Descriptor = "I"
	Float  Descriptor = "F"
	Long   Descriptor = "J"
	Double Descriptor = "D"
)

// Reference-kind descriptor prefixes, used by the gfunction native methods
// to tag and check array-valued fields.
const (
	RefArray = "[L"
	Array    = "["
	ByteArray = "[B"
	IntArray  = "[I"
)

// StringClassName is the fully qualified name of java/lang/String, used by
// gfunction's <clinit> stub to look the class up in the method area
// without repeating the literal everywhere.
const StringClassName = "java/lang/String"

// JavaBoolTrue/JavaBoolFalse are the canonical int64 slot encodings of a
// Java boolean, matching the JVM's convention of representing booleans as
// 0/1 ints in the operand stack and in reference-type Field storage.
const (
	JavaBoolTrue  int64 = 1
	JavaBoolFalse int64 = 0
)

// TypeSize returns the number of bytes a field or array element of this
// primitive kind occupies in the object/array memory area. Reference
// slots (including arrays) are pointer-sized; this runtime targets a
// 64-bit host so reference type_size is 8.
func TypeSize(d Descriptor) uint32 {
	switch d {
	case Bool, Byte:
		return 1
	case Char, Short:
		return 2
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	case Void:
		return 0
	default:
		return 8 // reference
	}
}

// ReferenceTypeSize is the width of a reference (object-pointer) slot.
const ReferenceTypeSize = 8

// InitState is the class initialization state machine of spec §4.2.
type InitState int32

const (
	Unloaded InitState = iota
	Loaded
	Initializing
	Initialized
	Failed
)

// ClInit state, kept under the teacher's naming for the presence (or not)
// of a <clinit> method and whether it has run yet.
type ClInitState int32

const (
	NoClinit ClInitState = iota
	ClInitNotRun
	ClInitInProgress
	ClInitRun
)

// FrameType distinguishes a bytecode-driven activation record from one
// backed by a native (Go) method body.
type FrameType int

const (
	JavaFrame FrameType = iota
	NativeFrame
)

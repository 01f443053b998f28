/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package frames implements the activation record of spec §3/§4.3: one
// Frame per invocation, owning its locals array and operand stack but not
// the method's bytecode.
package frames

// Kind tags what a Slot currently holds. Every local-variable and operand
// stack cell is one Slot; long and double values occupy a single Slot
// here rather than the two 32-bit halves the class-file format's
// local-variable-table indexing implies -- a deliberate simplification
// over the wire format (the index after a wide value is left as an empty
// Slot, see Frame.SetLocalWide), since nothing in
// this runtime ever addresses the "high half" of a wide value
// independently of the low half.
type Kind int8

const (
	KindInt Kind = iota
	KindFloat
	KindLong
	KindDouble
	KindRef
	KindReturnAddress
)

// Slot is one local-variable or operand-stack cell.
type Slot struct {
	Kind Kind
	I32  int32
	F32  float32
	I64  int64
	F64  float64
	Ref  uint64 // GC heap handle; 0 means null
	RA   int    // return address (jsr/ret), as a bytecode offset
}

func IntSlot(v int32) Slot    { return Slot{Kind: KindInt, I32: v} }
func FloatSlot(v float32) Slot { return Slot{Kind: KindFloat, F32: v} }
func LongSlot(v int64) Slot   { return Slot{Kind: KindLong, I64: v} }
func DoubleSlot(v float64) Slot { return Slot{Kind: KindDouble, F64: v} }
func RefSlot(handle uint64) Slot { return Slot{Kind: KindRef, Ref: handle} }

// IsWide reports whether this slot's kind occupies two JVM local-variable
// indices in the class-file format (long, double).
func (s Slot) IsWide() bool { return s.Kind == KindLong || s.Kind == KindDouble }

// IsReference reports whether this slot is a (possibly null) object or
// array reference, the category the GC root walk and instanceof/checkcast
// opcodes care about.
func (s Slot) IsReference() bool { return s.Kind == KindRef }

/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

// Allocator logic ported from original_source/src/jvm/memory/ObjectAllocator.cpp:
// one contiguous block per object, offsets computed by a super-chain
// walk, memory zero-initialized by construction (Go's make() zeroes).
package object

// AllocateObject allocates a new instance of klassName with an instance
// field area of objectSize bytes (spec §4.4: "Field area size for an
// instance equals object_size"). The allocator never moves objects and
// performs no initialization beyond zeroing, matching spec §8's
// round-trip invariant that every byte of a fresh object's memory is
// zero immediately after allocation.
func AllocateObject(klassName string, objectSize uint32) *Object {
	return &Object{
		KlassName:  klassName,
		Memory:     make([]byte, objectSize),
		MemSize:    objectSize,
		FieldTable: make(map[string]*Field),
	}
}

// AllocateArray allocates a new array of klassName (the array's own
// type, e.g. "[I") with the given component descriptor/size and length.
// superAreaSize is the object_size of java/lang/Object (or whatever
// immediate reference super-type arrays derive from), which precedes the
// element storage for arrays whose component type is a reference, per
// spec §3 "Array": "for arrays whose component type is a reference, the
// super-object area (if any) precedes the element area." Ported from
// ObjectAllocator::allocate_array.
func AllocateArray(klassName, componentDesc string, componentSize uint32, length int32, superAreaSize uint32) *Array {
	elementAreaSize := componentSize * uint32(length)
	total := elementAreaSize
	if isReferenceDescriptor(componentDesc) {
		total += superAreaSize
	}

	a := &Array{
		Object: Object{
			KlassName:  klassName,
			Memory:     make([]byte, total),
			MemSize:    total,
			FieldTable: make(map[string]*Field),
		},
		Length:        length,
		ComponentDesc: componentDesc,
		ComponentSize: componentSize,
	}
	if isReferenceDescriptor(componentDesc) {
		a.SuperAreaSize = superAreaSize
	}
	return a
}

func isReferenceDescriptor(desc string) bool {
	return desc == "L" || desc == "["
}

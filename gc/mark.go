/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gc

import "jacobin/object"

// isReferenceDescriptor reports whether a field/element descriptor
// denotes a reference type (object or array) rather than a primitive.
func isReferenceDescriptor(desc string) bool {
	return len(desc) > 0 && (desc[0] == 'L' || desc[0] == '[')
}

// markUsed implements the mark phase of spec §4.5's mark-sweep cycle,
// ported from original_source's GarbageCollector::mark_used: flip the
// object's used bit, then recurse into every reference-typed field (and,
// for arrays, every reference-typed element). Already-marked objects
// short-circuit, both to terminate on cycles and to avoid re-walking
// shared substructure.
func markUsed(handle uint64) {
	obj := Resolve(handle)
	if obj == nil || obj.Mark.Used() {
		return
	}
	obj.Mark.SetUsed(true)

	for _, f := range obj.FieldTable {
		if !isReferenceDescriptor(f.Ftype) {
			continue
		}
		if h, ok := f.Fvalue.(uint64); ok && h != 0 {
			markUsed(h)
		}
	}

	if arr := ResolveArray(handle); arr != nil {
		markArrayUsed(arr)
	}
}

// markArrayUsed walks an array's element area, marking each referenced
// element when the component type is itself a reference. Mirrors
// original_source's GarbageCollector::mark_array_used.
func markArrayUsed(arr *object.Array) {
	if !arr.IsReferenceComponent() {
		return
	}
	for i := int32(0); i < arr.Length; i++ {
		v, err := arr.GetElement(i)
		if err != nil {
			continue
		}
		if h, ok := v.(uint64); ok && h != 0 {
			markUsed(h)
		}
	}
}

// markUnused resets every currently-registered object's used bit to
// false ahead of a mark phase, mirroring
// original_source's GarbageCollector::mark_unused being applied across
// the whole object list before marking starts from the roots.
func markUnused(objs map[uint64]*object.Object) {
	for _, o := range objs {
		o.Mark.SetUsed(false)
	}
}
